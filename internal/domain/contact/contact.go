package contact

// defaultContactFields are the well-known contact attributes the CRM
// accepts at the top level of an upsert payload. Everything else travels
// as a custom field.
var defaultContactFields = map[string]struct{}{
	"firstName":   {},
	"lastName":    {},
	"name":        {},
	"email":       {},
	"phone":       {},
	"address1":    {},
	"city":        {},
	"state":       {},
	"country":     {},
	"postalCode":  {},
	"companyName": {},
	"website":     {},
	"timezone":    {},
	"dnd":         {},
	"source":      {},
	"gender":      {},
	"dateOfBirth": {},
}

// IsDefaultField reports whether key is a well-known contact attribute.
func IsDefaultField(key string) bool {
	_, ok := defaultContactFields[key]
	return ok
}

// CustomFieldValue is one (key, value) entry of a contact's custom
// fields, in mapping order.
type CustomFieldValue struct {
	Key        string `json:"key"`
	FieldValue any    `json:"field_value"`
}

// NormalizedContact is one contact produced from a CSV row: the row's
// well-known fields, exactly one phone value, the upload's shared tags,
// and the row's custom field entries.
type NormalizedContact struct {
	Fields       map[string]any
	Phone        string
	Tags         []string
	CustomFields []CustomFieldValue
}

// Payload flattens the contact into the upsert request body.
func (c NormalizedContact) Payload(locationID string) map[string]any {
	payload := make(map[string]any, len(c.Fields)+4)
	for key, value := range c.Fields {
		payload[key] = value
	}
	payload["phone"] = c.Phone
	payload["tags"] = c.Tags
	payload["customFields"] = c.CustomFields
	payload["locationId"] = locationID
	return payload
}
