package models

import "time"

type ImportRun struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	Mode           string    `gorm:"type:text;not null"`
	UserID         string    `gorm:"type:text;not null;index"`
	Role           string    `gorm:"type:text;not null"`
	TotalRows      int64     `gorm:"not null"`
	NewCount       int64     `gorm:"not null"`
	DuplicateCount int64     `gorm:"not null"`
	ErrorCount     int64     `gorm:"not null"`
	CreatedCount   int64     `gorm:"not null"`
	UpdatedCount   int64     `gorm:"not null"`
	SkippedCount   int64     `gorm:"not null"`
	FailedCount    int64     `gorm:"not null"`
	StartedAt      time.Time `gorm:"not null"`
	FinishedAt     time.Time `gorm:"not null"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
