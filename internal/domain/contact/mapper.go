package contact

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var columnIndexPattern = regexp.MustCompile(`\d+`)

// RowMapper turns raw CSV rows into normalized contacts using a fully
// resolved mapping. It is pure: no I/O, safe for concurrent use.
type RowMapper struct {
	mapping      Mapping
	tags         []string
	phoneTypeKey string
}

// NewRowMapper builds a mapper for one upload. The mapping must be
// resolved: any remaining placeholder is an error. The phone-type field
// key is derived from the mapping itself: whatever key the phone-type
// columns resolved to during provisioning.
func NewRowMapper(mapping Mapping, tags []string) (*RowMapper, error) {
	phoneTypeKey := ""
	for _, column := range sortedKeys(mapping) {
		target := mapping[column]
		if target == PlaceholderCustom {
			return nil, fmt.Errorf("%w: column %q", ErrUnresolvedMapping, column)
		}
		if phoneTypeKey == "" && IsPhoneTypeColumn(column) && target != "phone" && !IsDefaultField(target) {
			phoneTypeKey = target
		}
	}

	return &RowMapper{
		mapping:      mapping,
		tags:         tags,
		phoneTypeKey: phoneTypeKey,
	}, nil
}

// MapRow produces one contact per phone group with a non-empty phone
// value. Phone groups correlate numerically-suffixed columns ("Phone 1",
// "Phone 1 Type") that target the phone attribute or the phone-type
// field. Rows without any resolvable phone value yield no contacts.
func (m *RowMapper) MapRow(row map[string]string) []NormalizedContact {
	common := make(map[string]any)
	var custom []CustomFieldValue
	groups := make(map[string]map[string]string)

	for _, column := range sortedKeys(row) {
		value := row[column]
		target := m.mapping[column]
		if target == "" {
			target = column
		}

		if target == "phone" || (m.phoneTypeKey != "" && target == m.phoneTypeKey) {
			index := columnIndexPattern.FindString(column)
			if index == "" {
				continue
			}
			group := groups[index]
			if group == nil {
				group = make(map[string]string)
				groups[index] = group
			}
			group[target] = value
			continue
		}

		parsed := coerceValue(target, value)
		if IsDefaultField(target) {
			common[target] = parsed
		} else {
			custom = append(custom, CustomFieldValue{
				Key:        strings.TrimPrefix(target, customFieldKeyPrefix),
				FieldValue: parsed,
			})
		}
	}

	var contacts []NormalizedContact
	for _, index := range sortedGroupIndexes(groups) {
		group := groups[index]
		phone := group["phone"]
		if phone == "" {
			continue
		}

		fields := make(map[string]any, len(common))
		for key, value := range common {
			fields[key] = value
		}
		customFields := make([]CustomFieldValue, len(custom), len(custom)+1)
		copy(customFields, custom)
		if phoneType := group[m.phoneTypeKey]; m.phoneTypeKey != "" && phoneType != "" {
			customFields = append(customFields, CustomFieldValue{
				Key:        strings.TrimPrefix(m.phoneTypeKey, customFieldKeyPrefix),
				FieldValue: phoneType,
			})
		}

		contacts = append(contacts, NormalizedContact{
			Fields:       fields,
			Phone:        phone,
			Tags:         m.tags,
			CustomFields: customFields,
		})
	}
	return contacts
}

// coerceValue turns boolean-like strings into booleans for everything
// except the name attributes, which pass through verbatim.
func coerceValue(target, value string) any {
	if target == "firstName" || target == "lastName" {
		return value
	}
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sortedGroupIndexes orders phone-group indexes numerically so "2"
// precedes "10".
func sortedGroupIndexes(groups map[string]map[string]string) []string {
	indexes := sortedKeys(groups)
	sort.Slice(indexes, func(i, j int) bool {
		a, errA := strconv.Atoi(indexes[i])
		b, errB := strconv.Atoi(indexes[j])
		if errA != nil || errB != nil {
			return indexes[i] < indexes[j]
		}
		return a < b
	})
	return indexes
}
