package repository

import (
	"context"
	"errors"

	"github.com/blaisecz/health-insights/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsightRepository persists cached insights in postgres so they survive
// restarts. It satisfies cache.Store.
type InsightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

func (r *InsightRepository) Get(ctx context.Context, key string) (*domain.CachedInsight, error) {
	var entry domain.CachedInsight
	err := r.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Put upserts entry by key.
func (r *InsightRepository) Put(ctx context.Context, entry *domain.CachedInsight) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(entry).Error
}

func (r *InsightRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.CachedInsight{}).Error
}
