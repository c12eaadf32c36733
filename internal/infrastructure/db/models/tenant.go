package models

import "time"

type Company struct {
	ID           string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	CompanyID    string `gorm:"type:text;not null;uniqueIndex"`
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	TokenExpiry  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Company) TableName() string {
	return "companies"
}

type Location struct {
	ID           string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	LocationID   string `gorm:"type:text;not null;uniqueIndex"`
	Name         string `gorm:"type:text;not null"`
	CompanyID    string `gorm:"type:uuid"`
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	TokenExpiry  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Location) TableName() string {
	return "locations"
}
