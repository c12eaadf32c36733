package tenant

import "errors"

var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrLocationNotFound = errors.New("location not found")
)
