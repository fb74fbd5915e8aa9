package clientstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/db"
	"go.uber.org/multierr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the client_states table.
type Entry struct {
	Scope     string     `gorm:"column:scope;primaryKey"`
	Key       string     `gorm:"column:state_key;primaryKey"`
	Value     string     `gorm:"column:value"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "client_states" }

// SQLStore keeps client state in the client_states table.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStore builds a store on top of the gorm client.
func NewSQLStore(client *db.Client) (*SQLStore, error) {
	if client == nil || client.DB() == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return newSQLStore(client.DB()), nil
}

func newSQLStore(conn *gorm.DB) *SQLStore {
	return &SQLStore{db: conn, now: func() time.Time { return time.Now().UTC() }}
}

func (s *SQLStore) Get(ctx context.Context, scope, key string) (string, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("scope = ? AND state_key = ?", scope, key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading client state %s: %w", key, err)
	}
	if entry.ExpiresAt != nil && !entry.ExpiresAt.After(s.now()) {
		return "", ErrNotFound
	}
	return entry.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, scope, key, value string, ttl time.Duration) error {
	now := s.now()
	entry := Entry{Scope: scope, Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		expires := now.Add(ttl)
		entry.ExpiresAt = &expires
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("writing client state %s: %w", key, err)
	}
	return nil
}

// Delete removes each key independently so one failure does not hide the rest.
func (s *SQLStore) Delete(ctx context.Context, scope string, keys ...string) error {
	var errs error
	for _, key := range keys {
		err := s.db.WithContext(ctx).
			Where("scope = ? AND state_key = ?", scope, key).
			Delete(&Entry{}).Error
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return fmt.Errorf("deleting client state: %w", errs)
	}
	return nil
}

// Sweep purges expired rows and reports how many were removed.
func (s *SQLStore) Sweep(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("sweeping client state: %w", res.Error)
	}
	return res.RowsAffected, nil
}
