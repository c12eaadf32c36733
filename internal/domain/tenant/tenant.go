package tenant

import "time"

// Company is the agency-level CRM account an app install belongs to.
type Company struct {
	ID           string
	CompanyID    string
	AccessToken  string
	RefreshToken string
	TokenExpiry  *time.Time
}

// Location is one CRM sub-account owning contacts, tokens, custom
// fields, and tags.
type Location struct {
	ID           string
	LocationID   string
	Name         string
	CompanyID    string
	AccessToken  string
	RefreshToken string
	TokenExpiry  *time.Time
}

// OAuthToken is the upstream token endpoint's response for both the
// authorization-code and refresh-token grants.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	CompanyID    string
	PlanID       string
}

// InstalledLocation is one entry of the installed-locations listing.
type InstalledLocation struct {
	ID   string
	Name string
}
