package service

import (
	"context"
	"fmt"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/healthdata"
	"github.com/blaisecz/health-insights/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SampleService ingests raw samples into the health data store.
type SampleService interface {
	// Ingest stores a validated batch. Samples whose external_id is already
	// stored are skipped.
	Ingest(ctx context.Context, req *domain.IngestSamplesRequest) (*domain.IngestSamplesResponse, error)
}

type sampleService struct {
	repo repository.SampleRepository
}

func NewSampleService(repo repository.SampleRepository) SampleService {
	return &sampleService{repo: repo}
}

func (s *sampleService) Ingest(ctx context.Context, req *domain.IngestSamplesRequest) (*domain.IngestSamplesResponse, error) {
	samples := make([]domain.HealthSample, 0, len(req.Samples))
	for i, in := range req.Samples {
		sample, err := toSample(in)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		samples = append(samples, sample)
	}

	inserted, err := s.repo.CreateBatch(ctx, samples)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int("received", len(samples)).
		Int64("inserted", inserted).
		Msg("samples ingested")

	return &domain.IngestSamplesResponse{
		Received: len(samples),
		Inserted: int(inserted),
	}, nil
}

// toSample checks the unit against the kind's canonical unit and fills it in
// when omitted. Sleep stages and workouts are intervals and carry no unit.
func toSample(in domain.CreateSampleRequest) (domain.HealthSample, error) {
	if _, err := domain.ParseMetricKind(string(in.Kind)); err != nil {
		return domain.HealthSample{}, err
	}
	if in.EndAt.Before(in.StartAt) {
		return domain.HealthSample{}, fmt.Errorf("%w: end_at before start_at", domain.ErrInvalidInput)
	}

	unit := in.Unit
	canonical, _ := healthdata.UnitAndOp(in.Kind)
	switch {
	case in.Kind.IsSleepStage() || in.Kind == domain.KindWorkout:
		unit = ""
	case unit == "":
		unit = canonical
	default:
		if _, err := domain.ConvertUnit(1, unit, canonical); err != nil {
			return domain.HealthSample{}, fmt.Errorf("%w: unit %q cannot be used for %s", domain.ErrInvalidInput, unit, in.Kind)
		}
	}

	return domain.HealthSample{
		ID:              uuid.New(),
		Kind:            in.Kind,
		StartAt:         in.StartAt.UTC(),
		EndAt:           in.EndAt.UTC(),
		Value:           in.Value,
		Unit:            unit,
		WorkoutType:     in.WorkoutType,
		WorkoutEnergy:   in.WorkoutEnergy,
		WorkoutDistance: in.WorkoutDistance,
		SourceName:      in.SourceName,
		ExternalID:      in.ExternalID,
	}, nil
}
