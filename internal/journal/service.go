package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/pagination"
)

// Service surfaces read access to the journal. Writes happen through the
// settlement flow, never here.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	GetForAccount(ctx context.Context, id, accountID uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Stats(ctx context.Context, from, to time.Time) ([]StatRow, error)
}

// ListParams carries filters plus cursor pagination inputs.
type ListParams struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// ListResult is one page of journal entries.
type ListResult struct {
	Items  []models.Transaction
	Cursor string
}

type service struct {
	repo Repository
}

// NewService builds the journal read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "journal repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	txn, err := s.repo.FindByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "transaction %s not found", id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func (s *service) GetForAccount(ctx context.Context, id, accountID uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil || accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction and account ids required")
	}
	txn, err := s.repo.FindByIDForAccount(ctx, id, accountID)
	if err == gorm.ErrRecordNotFound {
		// Owned-by-someone-else reads 404, not 403, to avoid leaking ids.
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "transaction %s not found", id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if err := validateFilters(params.Filters); err != nil {
		return nil, err
	}

	query := listQuery{
		filters: params.Filters,
		limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Stats(ctx context.Context, from, to time.Time) ([]StatRow, error) {
	if !from.Before(to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stats window start must precede end")
	}
	rows, err := s.repo.Stats(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate journal stats")
	}
	return rows, nil
}

func validateFilters(f ListFilters) error {
	for _, t := range f.Types {
		if !t.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid transaction type %q", t)
		}
	}
	for _, st := range f.Statuses {
		if !st.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid transaction status %q", st)
		}
	}
	if f.Currency != nil && !f.Currency.IsCash() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid currency filter %q", *f.Currency)
	}
	if f.MinAmount != nil && f.MinAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum amount must not be negative")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum amount exceeds maximum amount")
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date range start must precede end")
	}
	return nil
}
