package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

const expenseColumns = `id, name, description, cost, category_id, payer_id, beneficiary_id,
	event_id, date, payment_date, periodic, period_unit, period_interval, paid,
	owner_id, version, created_at`

func (s *Store) expenseSortColumns() map[string]string {
	return map[string]string{
		"name":         "name",
		"cost":         s.costExpr(),
		"date":         "date",
		"payment_date": "payment_date",
		"paid":         "paid",
		"created_at":   "created_at",
	}
}

// CreateExpense inserts a new expense.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = s.now().Unix()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.Name,
		expense.Description,
		expense.Cost,
		expense.CategoryID,
		expense.PayerID,
		expense.BeneficiaryID,
		nullString(expense.EventID),
		expense.Date.Format(models.DateLayout),
		formatDate(expense.PaymentDate),
		expense.Periodic,
		string(expense.PeriodUnit),
		expense.PeriodInterval,
		expense.Paid,
		expense.OwnerID,
		expense.Version,
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", classify(err))
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpenses lists expenses matching the filter, newest first by default.
func (s *Store) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	var (
		where []string
		args  []any
	)
	eq := func(col, val string) {
		if val != "" {
			where = append(where, col+" = ?")
			args = append(args, val)
		}
	}
	eq("owner_id", filter.OwnerID)
	eq("payer_id", filter.PayerID)
	eq("beneficiary_id", filter.BeneficiaryID)
	eq("category_id", filter.CategoryID)
	eq("event_id", filter.EventID)
	if filter.PersonID != "" {
		where = append(where, "(payer_id = ? OR beneficiary_id = ?)")
		args = append(args, filter.PersonID, filter.PersonID)
	}
	if filter.Paid != nil {
		where = append(where, "paid = ?")
		args = append(args, *filter.Paid)
	}
	if filter.Year != 0 {
		where = append(where, "date >= ? AND date < ?")
		args = append(args, fmt.Sprintf("%04d-01-01", filter.Year), fmt.Sprintf("%04d-01-01", filter.Year+1))
	}
	if filter.NameContains != "" {
		where = append(where, s.likeExpr("name"))
		args = append(args, likePattern(filter.NameContains))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	order, err := orderBy(filter.Sort, s.expenseSortColumns(), "date DESC, created_at DESC, id")
	if err != nil {
		return nil, err
	}
	page, args := limit(filter.Page, args)

	rows, err := s.q.QueryContext(ctx, query+order+page, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// ListExpenseYears returns the distinct years of the owner's expenses,
// most recent first.
func (s *Store) ListExpenseYears(ctx context.Context, ownerID string) ([]int, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT DISTINCT SUBSTR(date, 1, 4) AS y FROM expenses WHERE owner_id = ? ORDER BY y DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan expense year: %w", err)
		}
		year, err := strconv.Atoi(y)
		if err != nil {
			return nil, fmt.Errorf("invalid expense year %q: %w", y, err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense years: %w", err)
	}
	return years, nil
}

// UpdateExpense writes an expense under optimistic locking.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE expenses
		 SET name = ?, description = ?, cost = ?, category_id = ?, payer_id = ?, beneficiary_id = ?,
		     event_id = ?, date = ?, payment_date = ?, periodic = ?, period_unit = ?,
		     period_interval = ?, paid = ?, owner_id = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		expense.Name,
		expense.Description,
		expense.Cost,
		expense.CategoryID,
		expense.PayerID,
		expense.BeneficiaryID,
		nullString(expense.EventID),
		expense.Date.Format(models.DateLayout),
		formatDate(expense.PaymentDate),
		expense.Periodic,
		string(expense.PeriodUnit),
		expense.PeriodInterval,
		expense.Paid,
		expense.OwnerID,
		expense.ID,
		expense.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", classify(err))
	}
	if err := s.checkUpdated(ctx, res, "expenses", expense.ID); err != nil {
		return err
	}
	expense.Version++
	return nil
}

// DeleteExpense removes an expense.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", classify(err))
	}
	return checkDeleted(res, "expenses", id)
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var (
		description sql.NullString
		eventID     sql.NullString
		date        string
		paymentDate sql.NullString
		periodUnit  string
	)
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&description,
		&e.Cost,
		&e.CategoryID,
		&e.PayerID,
		&e.BeneficiaryID,
		&eventID,
		&date,
		&paymentDate,
		&e.Periodic,
		&periodUnit,
		&e.PeriodInterval,
		&e.Paid,
		&e.OwnerID,
		&e.Version,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Description = description.String
	e.EventID = eventID.String
	e.PeriodUnit = models.PeriodUnit(periodUnit)

	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	e.Date = d
	if paymentDate.Valid {
		pd, err := time.Parse(models.DateLayout, paymentDate.String)
		if err != nil {
			return nil, fmt.Errorf("invalid payment date %q: %w", paymentDate.String, err)
		}
		e.PaymentDate = &pd
	}
	return e, nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(models.DateLayout)
}
