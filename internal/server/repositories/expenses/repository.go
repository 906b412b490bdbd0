package expenses

import (
	"context"

	"github.com/expensio/expensio/internal/server/models"
)

// Repository persists expense rows. Every query that touches an existing row
// filters by both the expense id and the owning user id in one predicate, so
// a row owned by someone else is indistinguishable from an absent one.
type Repository interface {
	ListByOwner(ctx context.Context, userID int64) ([]*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	Delete(ctx context.Context, id, userID int64) error
}
