package creditnote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/creditnote"
	"campdesk/internal/gateway"
)

const columns = "id, number, invoice_id, amount_cents, reason, status, issued_on, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new credit note store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanCreditNote(scan func(dest ...any) error) (domain.CreditNote, error) {
	var entity domain.CreditNote
	var issuedOn sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Number,
		&entity.InvoiceID,
		&entity.AmountCents,
		&entity.Reason,
		&entity.Status,
		&issuedOn,
		&createdAt,
	)
	if err != nil {
		return domain.CreditNote{}, err
	}
	entity.IssuedOn = storage.ParseNullableTime(issuedOn)
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a CreditNote by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.CreditNote, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM credit_note WHERE id = ?", id)
	entity, err := scanCreditNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CreditNote{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "credit_note", err)
}

// NextSequence returns the next sequential credit note number for the year.
func (s *SQLiteStore) NextSequence(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("CN-%d-%%", year)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM credit_note WHERE number LIKE ?", prefix).Scan(&count)
	if err != nil {
		return 0, gateway.Wrap("next_sequence", "credit_note", err)
	}
	return count + 1, nil
}

// Save persists a CreditNote to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.CreditNote) error {
	query := `INSERT INTO credit_note (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number=excluded.number, invoice_id=excluded.invoice_id,
			amount_cents=excluded.amount_cents, reason=excluded.reason,
			status=excluded.status, issued_on=excluded.issued_on`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Number,
		entity.InvoiceID,
		entity.AmountCents,
		entity.Reason,
		entity.Status,
		storage.NullableTime(entity.IssuedOn),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "credit_note", err)
}

// Delete removes a CreditNote from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM credit_note WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "credit_note", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.InvoiceID != "" {
		where += " AND invoice_id = ?"
		args = append(args, filter.InvoiceID)
	}
	if filter.Search != "" {
		where += " AND (number LIKE ? OR reason LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"number": "number", "amount": "amount_cents",
		"status": "status", "issued_on": "issued_on",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY created_at DESC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of credit notes matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM credit_note"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "credit_note", err)
}

// List retrieves a page of CreditNotes based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.CreditNote, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM credit_note" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "credit_note", err)
	}
	defer rows.Close()

	var results []domain.CreditNote
	for rows.Next() {
		entity, err := scanCreditNote(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "credit_note", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "credit_note", rows.Err())
}
