package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/pkg/config"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/goldfeed"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

// QuoteFeed is the upstream source of spot prices.
type QuoteFeed interface {
	FetchQuote(ctx context.Context, currency enums.Asset) (*goldfeed.Quote, error)
}

type snapshotRepository interface {
	Insert(ctx context.Context, snapshot *models.PriceSnapshot) error
	LatestByCurrency(ctx context.Context, currency enums.Asset) (*models.PriceSnapshot, error)
	History(ctx context.Context, currency enums.Asset, from, to time.Time, limit int) ([]models.PriceSnapshot, error)
}

// Service reads and ingests gold price snapshots. Its Latest method is the
// quote source the settlement engine trades against.
type Service struct {
	repo snapshotRepository
	feed QuoteFeed
	cfg  config.PriceFeedConfig
	logg *logger.Logger

	now func() time.Time
}

// NewService wires the pricing service.
func NewService(repo snapshotRepository, feed QuoteFeed, cfg config.PriceFeedConfig, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricing repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		repo: repo,
		feed: feed,
		cfg:  cfg,
		logg: logg,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Latest returns the freshest stored snapshot for the currency. A snapshot
// older than the configured staleness window is refused rather than traded
// against.
func (s *Service) Latest(ctx context.Context, currency enums.Asset) (*models.PriceSnapshot, error) {
	if !currency.IsCash() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quote currency must be cash, got %q", currency)
	}

	snapshot, err := s.repo.LatestByCurrency(ctx, currency)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Newf(pkgerrors.CodeDependency, "no price available for %s", currency)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest price")
	}

	maxStaleness := s.cfg.MaxStaleness
	if maxStaleness <= 0 {
		maxStaleness = 15 * time.Minute
	}
	if age := s.now().Sub(snapshot.QuotedAt); age > maxStaleness {
		return nil, pkgerrors.Newf(pkgerrors.CodeDependency, "price for %s is stale by %s", currency, age.Truncate(time.Second)).
			WithDetails(map[string]any{
				"currency":  currency,
				"quoted_at": snapshot.QuotedAt,
			})
	}
	return snapshot, nil
}

// History returns stored snapshots for charting.
func (s *Service) History(ctx context.Context, currency enums.Asset, from, to time.Time, limit int) ([]models.PriceSnapshot, error) {
	if !currency.IsCash() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quote currency must be cash, got %q", currency)
	}
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "history window must end after it starts")
	}
	snapshots, err := s.repo.History(ctx, currency, from, to, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price history")
	}
	return snapshots, nil
}

// Ingest pulls a fresh quote for every cash currency and stores one snapshot
// each. Per-currency feed failures are logged and skipped so one bad market
// does not block the rest.
func (s *Service) Ingest(ctx context.Context) (int, error) {
	if s.feed == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "price feed not configured")
	}

	stored := 0
	var lastErr error
	for _, currency := range enums.CashCurrencies() {
		quote, err := s.feed.FetchQuote(ctx, currency)
		if err != nil {
			logCtx := s.logg.WithField(ctx, "currency", currency.String())
			logCtx = s.logg.WithField(logCtx, "error", err.Error())
			s.logg.Warn(logCtx, "price feed fetch failed")
			lastErr = err
			continue
		}

		snapshot := &models.PriceSnapshot{
			ID:       uuid.New(),
			Currency: quote.Currency,
			Open:     quote.Open,
			High:     quote.High,
			Low:      quote.Low,
			Close:    quote.PricePerGram,
			Interval: "1m",
			Source:   s.source(),
			Realtime: true,
			QuotedAt: quote.QuotedAt,
		}
		if err := s.repo.Insert(ctx, snapshot); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "currency", currency.String()), "price snapshot insert failed", err)
			lastErr = err
			continue
		}
		stored++
	}

	if stored == 0 && lastErr != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "price ingestion stored nothing")
	}
	return stored, nil
}

func (s *Service) source() string {
	if s.cfg.Source != "" {
		return s.cfg.Source
	}
	return "goldapi"
}
