package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
)

// OAuthConfig holds the app credentials for the CRM marketplace app.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AppID        string
}

// OAuthClient talks to the CRM's OAuth endpoints. It shares the base
// client's transport, timeout, and error mapping.
type OAuthClient struct {
	client *Client
	cfg    OAuthConfig
}

func NewOAuthClient(client *Client, cfg OAuthConfig) *OAuthClient {
	return &OAuthClient{client: client, cfg: cfg}
}

// ExchangeCode redeems an authorization code for company-scoped tokens.
func (o *OAuthClient) ExchangeCode(ctx context.Context, code string) (tenant.OAuthToken, error) {
	form := url.Values{}
	form.Set("client_id", o.cfg.ClientID)
	form.Set("client_secret", o.cfg.ClientSecret)
	form.Set("user_type", "Company")
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	return o.tokenRequest(ctx, form)
}

// Refresh redeems a refresh token for fresh tokens.
func (o *OAuthClient) Refresh(ctx context.Context, refreshToken string) (tenant.OAuthToken, error) {
	form := url.Values{}
	form.Set("client_id", o.cfg.ClientID)
	form.Set("client_secret", o.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return o.tokenRequest(ctx, form)
}

func (o *OAuthClient) tokenRequest(ctx context.Context, form url.Values) (tenant.OAuthToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.client.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return tenant.OAuthToken{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.httpClient.Do(req)
	if err != nil {
		return tenant.OAuthToken{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return tenant.OAuthToken{}, o.client.apiError(resp)
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
		CompanyID    string `json:"companyId"`
		PlanID       string `json:"planId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return tenant.OAuthToken{}, fmt.Errorf("decode token response: %w", err)
	}
	return tenant.OAuthToken{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
		CompanyID:    out.CompanyID,
		PlanID:       out.PlanID,
	}, nil
}

// InstalledLocations lists the locations a company installed the app on.
func (o *OAuthClient) InstalledLocations(ctx context.Context, accessToken, companyID, planID string) ([]tenant.InstalledLocation, error) {
	endpoint := fmt.Sprintf("%s/oauth/installedLocations?companyId=%s&appId=%s&isInstalled=true&limit=10000",
		o.client.baseURL, url.QueryEscape(companyID), url.QueryEscape(o.cfg.AppID))
	if planID != "" {
		endpoint += "&planId=" + url.QueryEscape(planID)
	}

	var out struct {
		Locations []struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		} `json:"locations"`
	}
	if err := o.client.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &out); err != nil {
		return nil, err
	}

	locations := make([]tenant.InstalledLocation, 0, len(out.Locations))
	for _, loc := range out.Locations {
		locations = append(locations, tenant.InstalledLocation{ID: loc.ID, Name: loc.Name})
	}
	return locations, nil
}
