package models

import "time"

// Expense is a single spending record. UserID is set from the resolved
// identity at creation time and is never reassigned.
type Expense struct {
	ID          int64
	UserID      int64
	Amount      float64
	Category    string
	Description string
	Date        time.Time
}
