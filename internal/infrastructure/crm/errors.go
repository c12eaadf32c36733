package crm

import "fmt"

// APIError carries the upstream CRM status code and message so callers
// can map failures onto their own taxonomy.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api: status %d: %s", e.StatusCode, e.Message)
}
