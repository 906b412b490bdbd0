// Package expenses provides the PostgreSQL-backed repository for expense
// records scoped to their owning user.
package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/expensio/expensio/internal/common"
	"github.com/expensio/expensio/internal/dbx"
	"github.com/expensio/expensio/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByOwner returns the user's expenses, newest first. Ordering by id as a
// tiebreaker keeps the listing stable for rows sharing a timestamp.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int64) ([]*models.Expense, error) {
	query :=
		`SELECT id, user_id, amount, category, COALESCE(description, ''), date FROM expenses
		 WHERE user_id = $1
		 ORDER BY date DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		var item models.Expense
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Amount, &item.Category, &item.Description, &item.Date,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a new expense stamped with expense.UserID. A zero Date
// falls back to the server clock.
func (r *PostgresRepository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	query :=
		`INSERT INTO expenses (user_id, amount, category, description, date)
		 VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		 RETURNING id, date
		 `

	err := r.db.QueryRowContext(ctx, query,
		expense.UserID, expense.Amount, expense.Category, expense.Description, nullableTime(expense.Date),
	).Scan(&expense.ID, &expense.Date)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return expense, nil
}

// Update rewrites the row matching (expense.ID, expense.UserID). A zero Date
// keeps the stored one. Zero matching rows means the expense does not exist
// for this owner and yields common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	query :=
		`UPDATE expenses
		 SET amount = $1, category = $2, description = $3, date = COALESCE($4, date)
		 WHERE id = $5 AND user_id = $6
		 RETURNING date
		 `

	err := r.db.QueryRowContext(ctx, query,
		expense.Amount, expense.Category, expense.Description, nullableTime(expense.Date),
		expense.ID, expense.UserID,
	).Scan(&expense.Date)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return expense, nil
}

// Delete removes the row matching (id, userID); common.ErrorNotFound when no
// row matched.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	query :=
		`DELETE FROM expenses
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// nullableTime maps the zero time to SQL NULL so COALESCE picks the default.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
