package cron

import (
	"context"
	"fmt"

	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

type priceIngestor interface {
	Ingest(ctx context.Context) (int, error)
}

// PriceSnapshotJobParams configure the market data refresh job.
type PriceSnapshotJobParams struct {
	Logger  *logger.Logger
	Pricing priceIngestor
}

// NewPriceSnapshotJob builds the job that pulls fresh gold quotes for every
// supported currency and stores them as snapshots.
func NewPriceSnapshotJob(params PriceSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	return &priceSnapshotJob{
		logg:    params.Logger,
		pricing: params.Pricing,
	}, nil
}

type priceSnapshotJob struct {
	logg    *logger.Logger
	pricing priceIngestor
}

func (j *priceSnapshotJob) Name() string { return "price-snapshot" }

func (j *priceSnapshotJob) Run(ctx context.Context) error {
	stored, err := j.pricing.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingest price snapshots: %w", err)
	}
	j.logg.Debug(j.logg.WithField(ctx, "stored", stored), "price snapshots ingested")
	return nil
}
