package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentRecord struct {
	Path      string         `gorm:"primaryKey;type:text"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (documentRecord) TableName() string {
	return "documents"
}

// GormStore keeps documents in the postgres "documents" table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Write(ctx context.Context, path string, value interface{}) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	data, err := encode(value)
	if err != nil {
		return err
	}

	rec := documentRecord{Path: p, Value: datatypes.JSON(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func (s *GormStore) Read(ctx context.Context, path string, out interface{}) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	var rec documentRecord
	if err := s.db.WithContext(ctx).First(&rec, "path = ?", p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("read %s: %w", p, err)
	}
	return Document{Path: rec.Path, Value: []byte(rec.Value)}.Decode(out)
}

func (s *GormStore) List(ctx context.Context, prefix string) ([]Document, error) {
	p, err := CleanPath(prefix)
	if err != nil {
		return nil, err
	}

	var recs []documentRecord
	if err := s.db.WithContext(ctx).
		Where("path LIKE ?", p+"/%").
		Order("path ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}

	docs := make([]Document, 0, len(recs))
	for _, r := range recs {
		docs = append(docs, Document{Path: r.Path, Value: []byte(r.Value), UpdatedAt: r.UpdatedAt})
	}
	return docs, nil
}

func (s *GormStore) Delete(ctx context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&documentRecord{}, "path = ?", p)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", p, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close is a no-op; the gorm connection is owned by the caller.
func (s *GormStore) Close() error {
	return nil
}
