package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/frozify/storefront/pkg/db"
	"github.com/frozify/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores values in the storage_entries table. Expired rows read as missing.
type SQL struct {
	conn *gorm.DB
	ttl  time.Duration
	now  func() time.Time
}

func NewSQL(conn *gorm.DB, ttl time.Duration) (*SQL, error) {
	if conn == nil {
		return nil, fmt.Errorf("gorm connection required")
	}
	return &SQL{conn: conn, ttl: ttl, now: time.Now}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	var entry models.StorageEntry
	err := s.conn.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if db.IsNotFound(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select storage entry %s: %w", key, err)
	}
	if entry.ExpiresAt != nil && !entry.ExpiresAt.After(s.now()) {
		return "", ErrNotFound
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	entry := models.StorageEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	if s.ttl > 0 {
		expires := s.now().Add(s.ttl).UTC()
		entry.ExpiresAt = &expires
	}
	err := s.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("upsert storage entry %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	err := s.conn.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.StorageEntry{}).Error
	if err != nil {
		return fmt.Errorf("delete storage entry %s: %w", key, err)
	}
	return nil
}

// PurgeExpired removes rows whose TTL has lapsed and returns how many were dropped.
func (s *SQL) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.conn.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.StorageEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge storage entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
