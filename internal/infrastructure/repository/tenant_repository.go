package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// UpsertCompany creates the company on first install and refreshes its
// tokens on every subsequent one.
func (r *TenantRepository) UpsertCompany(ctx context.Context, company domain.Company) (domain.Company, error) {
	row := models.Company{
		CompanyID:    company.CompanyID,
		AccessToken:  company.AccessToken,
		RefreshToken: company.RefreshToken,
		TokenExpiry:  company.TokenExpiry,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_expiry", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return domain.Company{}, fmt.Errorf("upsert company %s: %w", company.CompanyID, err)
	}

	return r.GetCompany(ctx, company.CompanyID)
}

func (r *TenantRepository) GetCompany(ctx context.Context, companyID string) (domain.Company, error) {
	var row models.Company
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Company{}, domain.ErrCompanyNotFound
	}
	if err != nil {
		return domain.Company{}, fmt.Errorf("get company %s: %w", companyID, err)
	}
	return domain.Company{
		ID:           row.ID,
		CompanyID:    row.CompanyID,
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenExpiry:  row.TokenExpiry,
	}, nil
}

// UpsertLocation registers a location on install; an existing row keeps
// its tokens and name untouched.
func (r *TenantRepository) UpsertLocation(ctx context.Context, location domain.Location) error {
	row := models.Location{
		LocationID: location.LocationID,
		Name:       location.Name,
		CompanyID:  location.CompanyID,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert location %s: %w", location.LocationID, err)
	}
	return nil
}

func (r *TenantRepository) GetLocation(ctx context.Context, locationID string) (domain.Location, error) {
	var row models.Location
	err := r.db.WithContext(ctx).Where("location_id = ?", locationID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Location{}, domain.ErrLocationNotFound
	}
	if err != nil {
		return domain.Location{}, fmt.Errorf("get location %s: %w", locationID, err)
	}
	return domain.Location{
		ID:           row.ID,
		LocationID:   row.LocationID,
		Name:         row.Name,
		CompanyID:    row.CompanyID,
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenExpiry:  row.TokenExpiry,
	}, nil
}

func (r *TenantRepository) UpdateCompanyTokens(ctx context.Context, companyID, accessToken, refreshToken string, expiry time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("company_id = ?", companyID).
		Updates(map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"token_expiry":  expiry,
		}).Error
	if err != nil {
		return fmt.Errorf("update company tokens %s: %w", companyID, err)
	}
	return nil
}

func (r *TenantRepository) UpdateLocationTokens(ctx context.Context, locationID, accessToken, refreshToken string, expiry time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Location{}).
		Where("location_id = ?", locationID).
		Updates(map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"token_expiry":  expiry,
		}).Error
	if err != nil {
		return fmt.Errorf("update location tokens %s: %w", locationID, err)
	}
	return nil
}
