package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	"golang.org/x/sync/errgroup"
)

type TokenScope string

const (
	ScopeAgency   TokenScope = "Agency"
	ScopeLocation TokenScope = "Location"
)

// InstallEvent is the marketplace webhook body sent when the app is
// installed on a company or one of its locations.
type InstallEvent struct {
	InstallType string `json:"installType"`
	CompanyID   string `json:"companyId"`
	LocationID  string `json:"locationId"`
}

type oauthProvider interface {
	ExchangeCode(ctx context.Context, code string) (tenant.OAuthToken, error)
	Refresh(ctx context.Context, refreshToken string) (tenant.OAuthToken, error)
	InstalledLocations(ctx context.Context, accessToken, companyID, planID string) ([]tenant.InstalledLocation, error)
}

type tenantStore interface {
	UpsertCompany(ctx context.Context, company tenant.Company) (tenant.Company, error)
	GetCompany(ctx context.Context, companyID string) (tenant.Company, error)
	UpsertLocation(ctx context.Context, location tenant.Location) error
	GetLocation(ctx context.Context, locationID string) (tenant.Location, error)
	UpdateCompanyTokens(ctx context.Context, companyID, accessToken, refreshToken string, expiry time.Time) error
	UpdateLocationTokens(ctx context.Context, locationID, accessToken, refreshToken string, expiry time.Time) error
}

// Service owns the app-install lifecycle: the authorization-code
// exchange, installed-location discovery, webhook installs, and token
// refreshes for both scopes.
type Service struct {
	oauth   oauthProvider
	tenants tenantStore
	log     *slog.Logger
}

func NewService(oauth oauthProvider, tenants tenantStore, logger *slog.Logger) *Service {
	return &Service{oauth: oauth, tenants: tenants, log: logger}
}

// CompleteInstall finishes the OAuth install: it exchanges the
// authorization code for agency tokens, stores the company, and records
// every location the app is installed on. Already-known locations keep
// their stored tokens.
func (s *Service) CompleteInstall(ctx context.Context, code string) error {
	token, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	expiry := tokenExpiry(token.ExpiresIn)
	company, err := s.tenants.UpsertCompany(ctx, tenant.Company{
		CompanyID:    token.CompanyID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  &expiry,
	})
	if err != nil {
		return fmt.Errorf("store company: %w", err)
	}

	locations, err := s.oauth.InstalledLocations(ctx, token.AccessToken, token.CompanyID, token.PlanID)
	if err != nil {
		return fmt.Errorf("list installed locations: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, loc := range locations {
		loc := loc
		g.Go(func() error {
			return s.tenants.UpsertLocation(gctx, tenant.Location{
				LocationID: loc.ID,
				Name:       loc.Name,
				CompanyID:  company.ID,
			})
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("store installed locations: %w", err)
	}

	s.log.Info("install completed", "company_id", token.CompanyID, "locations", len(locations))
	return nil
}

// HandleInstallEvent records a location-scoped install delivered by the
// marketplace webhook. Company-scoped events are covered by the OAuth
// callback and are ignored here.
func (s *Service) HandleInstallEvent(ctx context.Context, event InstallEvent) error {
	if event.InstallType != string(ScopeLocation) {
		return nil
	}

	company, err := s.tenants.GetCompany(ctx, event.CompanyID)
	if err != nil {
		return err
	}
	if err := s.tenants.UpsertLocation(ctx, tenant.Location{
		LocationID: event.LocationID,
		Name:       "default",
		CompanyID:  company.ID,
	}); err != nil {
		return fmt.Errorf("store location: %w", err)
	}

	s.log.Info("location installed", "company_id", event.CompanyID, "location_id", event.LocationID)
	return nil
}

// RefreshToken rotates the stored tokens for one agency or location and
// returns the fresh access token.
func (s *Service) RefreshToken(ctx context.Context, id string, scope TokenScope) (string, error) {
	if scope == ScopeAgency {
		company, err := s.tenants.GetCompany(ctx, id)
		if err != nil {
			return "", err
		}
		if company.RefreshToken == "" {
			return "", fmt.Errorf("%w: company %s", ErrMissingRefreshToken, id)
		}

		token, err := s.oauth.Refresh(ctx, company.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("refresh agency token: %w", err)
		}
		if err := s.tenants.UpdateCompanyTokens(ctx, id, token.AccessToken, token.RefreshToken, tokenExpiry(token.ExpiresIn)); err != nil {
			return "", fmt.Errorf("store agency tokens: %w", err)
		}
		return token.AccessToken, nil
	}

	location, err := s.RefreshLocationToken(ctx, id)
	if err != nil {
		return "", err
	}
	return location.AccessToken, nil
}

// RefreshLocationToken rotates one location's tokens and returns the
// location carrying the fresh access token.
func (s *Service) RefreshLocationToken(ctx context.Context, locationID string) (tenant.Location, error) {
	location, err := s.tenants.GetLocation(ctx, locationID)
	if err != nil {
		return tenant.Location{}, err
	}
	if location.RefreshToken == "" {
		return tenant.Location{}, fmt.Errorf("%w: location %s", ErrMissingRefreshToken, locationID)
	}

	token, err := s.oauth.Refresh(ctx, location.RefreshToken)
	if err != nil {
		return tenant.Location{}, fmt.Errorf("refresh location token: %w", err)
	}

	expiry := tokenExpiry(token.ExpiresIn)
	if err := s.tenants.UpdateLocationTokens(ctx, locationID, token.AccessToken, token.RefreshToken, expiry); err != nil {
		return tenant.Location{}, fmt.Errorf("store location tokens: %w", err)
	}

	location.AccessToken = token.AccessToken
	location.RefreshToken = token.RefreshToken
	location.TokenExpiry = &expiry
	return location, nil
}

func tokenExpiry(expiresIn int64) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
