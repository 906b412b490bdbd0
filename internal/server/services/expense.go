package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/expensio/expensio/internal/common"
	"github.com/expensio/expensio/internal/server/models"
	"github.com/expensio/expensio/internal/server/repositories/repomanager"
)

// ExpenseService provides expense CRUD scoped to the authenticated caller.
// Every operation takes the resolved user id from the request context, never
// from the payload, so a forged owner field in a request body has no effect.
type ExpenseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewExpenseService constructs an ExpenseService using repositories.
func NewExpenseService(db *sql.DB, m repomanager.RepositoryManager) *ExpenseService {
	return &ExpenseService{db: db, repomanager: m}
}

// List returns the caller's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]*models.Expense, error) {
	repo := s.repomanager.Expenses(s.db)
	items, err := repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %v", err)
	}
	return items, nil
}

// Create stores a new expense owned by userID. Any owner carried by the
// payload is overwritten before the row is written.
func (s *ExpenseService) Create(ctx context.Context, userID int64, expense *models.Expense) (*models.Expense, error) {
	expense.UserID = userID
	repo := s.repomanager.Expenses(s.db)
	created, err := repo.Create(ctx, expense)
	if err != nil {
		return nil, fmt.Errorf("error creating expense: %v", err)
	}
	return created, nil
}

// Update rewrites an expense the caller owns. A row owned by someone else is
// reported as not found.
func (s *ExpenseService) Update(ctx context.Context, userID int64, expense *models.Expense) (*models.Expense, error) {
	expense.UserID = userID
	repo := s.repomanager.Expenses(s.db)
	updated, err := repo.Update(ctx, expense)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating expense: %v", err)
	}
	return updated, nil
}

// Delete removes an expense the caller owns, with the same not-found
// semantics as Update.
func (s *ExpenseService) Delete(ctx context.Context, id, userID int64) error {
	repo := s.repomanager.Expenses(s.db)
	if err := repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting expense: %v", err)
	}
	return nil
}
