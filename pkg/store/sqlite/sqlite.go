package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/socialai-labs/socialai-gateway/pkg/db"
	"github.com/socialai-labs/socialai-gateway/pkg/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sessionKey = "user"

type sessionRecord struct {
	RecordKey string `gorm:"column:record_key;primaryKey;size:64"`
	Payload   []byte `gorm:"column:payload"`
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string { return "session_records" }

// Store keeps the session record in a single-row SQLite table.
type Store struct {
	client *db.Client
}

// New migrates the session table and returns a SQLite-backed store.
func New(client *db.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if err := client.DB().AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrating session table: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var rec sessionRecord
	err := s.client.DB().WithContext(ctx).
		First(&rec, "record_key = ?", sessionKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("loading session record: %w", err)
	}
	if len(rec.Payload) == 0 {
		return nil, store.ErrNotFound
	}
	return rec.Payload, nil
}

func (s *Store) Save(ctx context.Context, record []byte) error {
	rec := sessionRecord{
		RecordKey: sessionKey,
		Payload:   record,
		UpdatedAt: time.Now().UTC(),
	}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_key"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("saving session record: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.client.DB().WithContext(ctx).
		Delete(&sessionRecord{}, "record_key = ?", sessionKey).Error
	if err != nil {
		return fmt.Errorf("clearing session record: %w", err)
	}
	return nil
}
