package contact_test

import (
	"errors"
	"testing"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
)

func TestNewRowMapperRejectsUnresolvedPlaceholder(t *testing.T) {
	t.Parallel()

	_, err := domain.NewRowMapper(domain.Mapping{
		"First Name": "firstName",
		"Color":      domain.PlaceholderCustom,
	}, nil)
	if !errors.Is(err, domain.ErrUnresolvedMapping) {
		t.Fatalf("expected ErrUnresolvedMapping, got %v", err)
	}
}

func TestMapRowSingleContact(t *testing.T) {
	t.Parallel()

	mapper, err := domain.NewRowMapper(domain.Mapping{
		"First Name":   "firstName",
		"Phone 1":      "phone",
		"Phone 1 Type": "contact.phone_type",
	}, []string{"imported"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	contacts := mapper.MapRow(map[string]string{
		"First Name":   "Ann",
		"Phone 1":      "555-1000",
		"Phone 1 Type": "Mobile",
	})
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}

	got := contacts[0]
	if got.Phone != "555-1000" {
		t.Fatalf("unexpected phone: %s", got.Phone)
	}
	if got.Fields["firstName"] != "Ann" {
		t.Fatalf("unexpected firstName: %#v", got.Fields["firstName"])
	}
	if len(got.Tags) != 1 || got.Tags[0] != "imported" {
		t.Fatalf("unexpected tags: %#v", got.Tags)
	}
	if len(got.CustomFields) != 1 {
		t.Fatalf("expected 1 custom field, got %d", len(got.CustomFields))
	}
	if got.CustomFields[0].Key != "phone_type" || got.CustomFields[0].FieldValue != "Mobile" {
		t.Fatalf("unexpected custom field: %#v", got.CustomFields[0])
	}
}

func TestMapRowOneContactPerPhoneGroup(t *testing.T) {
	t.Parallel()

	mapper, err := domain.NewRowMapper(domain.Mapping{
		"First Name":   "firstName",
		"Phone 1":      "phone",
		"Phone 1 Type": "contact.phone_type",
		"Phone 2":      "phone",
		"Phone 2 Type": "contact.phone_type",
		"Phone 3":      "phone",
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	contacts := mapper.MapRow(map[string]string{
		"First Name":   "Bob",
		"Phone 1":      "555-0001",
		"Phone 1 Type": "Mobile",
		"Phone 2":      "555-0002",
		"Phone 2 Type": "Landline",
		"Phone 3":      "",
	})

	// Two pairs carry a phone value; the empty third group yields nothing.
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
	if contacts[0].Phone != "555-0001" || contacts[1].Phone != "555-0002" {
		t.Fatalf("unexpected group order: %s, %s", contacts[0].Phone, contacts[1].Phone)
	}
	if contacts[0].CustomFields[len(contacts[0].CustomFields)-1].FieldValue != "Mobile" {
		t.Fatalf("expected Mobile on first group: %#v", contacts[0].CustomFields)
	}
	if contacts[1].CustomFields[len(contacts[1].CustomFields)-1].FieldValue != "Landline" {
		t.Fatalf("expected Landline on second group: %#v", contacts[1].CustomFields)
	}
}

func TestMapRowNoPhoneYieldsNoContacts(t *testing.T) {
	t.Parallel()

	mapper, err := domain.NewRowMapper(domain.Mapping{
		"First Name": "firstName",
		"Phone 1":    "phone",
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	contacts := mapper.MapRow(map[string]string{
		"First Name": "Eve",
		"Phone 1":    "",
	})
	if len(contacts) != 0 {
		t.Fatalf("expected no contacts, got %d", len(contacts))
	}
}

func TestMapRowBooleanCoercion(t *testing.T) {
	t.Parallel()

	mapper, err := domain.NewRowMapper(domain.Mapping{
		"First Name": "firstName",
		"Last Name":  "lastName",
		"DND":        "dnd",
		"Phone 1":    "phone",
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	contacts := mapper.MapRow(map[string]string{
		"First Name": "True",
		"Last Name":  "False",
		"DND":        "TRUE",
		"Phone 1":    "555-2000",
	})
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}

	got := contacts[0]
	if got.Fields["dnd"] != true {
		t.Fatalf("expected dnd coerced to true, got %#v", got.Fields["dnd"])
	}
	// Name attributes are never coerced.
	if got.Fields["firstName"] != "True" || got.Fields["lastName"] != "False" {
		t.Fatalf("name fields were coerced: %#v", got.Fields)
	}
}

func TestMapRowUnmappedColumnPassesThroughAsCustomField(t *testing.T) {
	t.Parallel()

	mapper, err := domain.NewRowMapper(domain.Mapping{
		"Phone 1": "phone",
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	contacts := mapper.MapRow(map[string]string{
		"Phone 1":       "555-3000",
		"Property City": "Austin",
	})
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}
	if len(contacts[0].CustomFields) != 1 {
		t.Fatalf("expected 1 custom field, got %#v", contacts[0].CustomFields)
	}
	if contacts[0].CustomFields[0].Key != "Property City" {
		t.Fatalf("unexpected key: %s", contacts[0].CustomFields[0].Key)
	}
}

func TestMapRowGroupsOrderedNumerically(t *testing.T) {
	t.Parallel()

	mapper, err := domain.NewRowMapper(domain.Mapping{
		"Phone 2":  "phone",
		"Phone 10": "phone",
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	contacts := mapper.MapRow(map[string]string{
		"Phone 10": "555-0010",
		"Phone 2":  "555-0002",
	})
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
	if contacts[0].Phone != "555-0002" || contacts[1].Phone != "555-0010" {
		t.Fatalf("groups out of order: %s, %s", contacts[0].Phone, contacts[1].Phone)
	}
}
