package contact

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// PlaceholderCustom marks a mapping entry whose target field must be
	// provisioned upstream before the upload is accepted.
	PlaceholderCustom = "custom"

	// PhoneTypeFieldName is the shared upstream field every phone-type
	// column collapses onto.
	PhoneTypeFieldName = "Phone Type"

	// customFieldKeyPrefix is the namespace the CRM prepends to generated
	// custom field keys.
	customFieldKeyPrefix = "contact."
)

// Mapping maps a source CSV column name to a target field specifier: a
// well-known contact attribute, a resolved custom field key, or the
// PlaceholderCustom token. Columns absent from the mapping pass through
// under their own name.
type Mapping map[string]string

// TagRef references a tag selected for an upload. Tags whose id carries
// the "custom" prefix do not exist upstream yet and must be created.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (t TagRef) IsCustom() bool {
	return strings.HasPrefix(t.ID, "custom")
}

// IsPhoneTypeColumn reports whether a column name matches both "phone"
// and "type", case-insensitively.
func IsPhoneTypeColumn(column string) bool {
	lower := strings.ToLower(column)
	return strings.Contains(lower, "phone") && strings.Contains(lower, "type")
}

// CustomFieldNames returns the distinct upstream field names required by
// the mapping's placeholder entries, sorted for deterministic creation
// order. All phone-type columns contribute a single PhoneTypeFieldName
// entry.
func (m Mapping) CustomFieldNames() []string {
	seen := make(map[string]struct{})
	for column, target := range m {
		if target != PlaceholderCustom {
			continue
		}
		name := column
		if IsPhoneTypeColumn(column) {
			name = PhoneTypeFieldName
		}
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns a copy of the mapping with every placeholder replaced
// by the created field's key, looked up by field name. Every phone-type
// column resolves to the same key.
func (m Mapping) Resolve(fieldKeys map[string]string) (Mapping, error) {
	resolved := make(Mapping, len(m))
	for column, target := range m {
		if target != PlaceholderCustom {
			resolved[column] = target
			continue
		}
		name := column
		if IsPhoneTypeColumn(column) {
			name = PhoneTypeFieldName
		}
		key, ok := fieldKeys[name]
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: column %q", ErrUnresolvedMapping, column)
		}
		resolved[column] = key
	}
	return resolved, nil
}
