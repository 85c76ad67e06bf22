package models

import "time"

// StorageEntry is one persisted key of a shopper's local storage.
type StorageEntry struct {
	Key       string     `gorm:"column:storage_key;primaryKey"`
	Value     string     `gorm:"column:value;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (StorageEntry) TableName() string { return "storage_entries" }
