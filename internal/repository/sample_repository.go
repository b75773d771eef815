package repository

import (
	"context"
	"errors"

	"github.com/blaisecz/health-insights/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertBatchSize bounds rows per INSERT statement.
const insertBatchSize = 500

// SampleRepository stores raw health samples and serves them as the health
// data source.
type SampleRepository interface {
	// CreateBatch inserts samples, skipping any whose external_id already
	// exists. It returns the number of rows inserted.
	CreateBatch(ctx context.Context, samples []domain.HealthSample) (int64, error)
	// Samples returns samples of kind whose start lies in window, ordered by start.
	Samples(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error)
	Count(ctx context.Context) (int64, error)
}

type sampleRepository struct {
	db *gorm.DB
}

func NewSampleRepository(db *gorm.DB) SampleRepository {
	return &sampleRepository{db: db}
}

func (r *sampleRepository) CreateBatch(ctx context.Context, samples []domain.HealthSample) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(samples, insertBatchSize)
	return result.RowsAffected, result.Error
}

func (r *sampleRepository) Samples(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error) {
	var samples []domain.HealthSample
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Where("start_at >= ? AND start_at < ?", window.Start.UTC(), window.End.UTC()).
		Order("start_at ASC").
		Find(&samples).Error
	if err != nil {
		// Cancellation is passed through; the querier reports it as ctx.Err().
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &domain.QueryError{Kind: domain.QueryErrUnavailable, Metric: kind, Err: err}
	}
	return samples, nil
}

func (r *sampleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.HealthSample{}).Count(&count).Error
	return count, err
}
