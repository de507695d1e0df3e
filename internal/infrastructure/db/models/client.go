package models

import "time"

type Client struct {
	ID                 string     `gorm:"type:uuid;primaryKey"`
	OwnerID            string     `gorm:"type:text;not null;index"`
	Name               string     `gorm:"size:255;not null"`
	City               string     `gorm:"size:120;not null"`
	State              string     `gorm:"size:64;not null"`
	Document           string     `gorm:"size:32;not null"`
	NameNormalized     string     `gorm:"type:text;not null"`
	CityNormalized     string     `gorm:"type:text;not null"`
	DocumentNormalized string     `gorm:"type:text;not null"`
	Fingerprint        string     `gorm:"type:text;not null;uniqueIndex"`
	Attributes         Attributes `gorm:"type:jsonb;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Client) TableName() string {
	return "clients"
}
