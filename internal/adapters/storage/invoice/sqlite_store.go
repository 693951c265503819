package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/invoice"
	"campdesk/internal/gateway"
)

const columns = "id, number, reference, parent_name, parent_email, amount_cents, session_id, status, issued_on, due_on, paid_on, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new invoice store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanInvoice(scan func(dest ...any) error) (domain.Invoice, error) {
	var entity domain.Invoice
	var sessionID, issuedOn, dueOn, paidOn sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Number,
		&entity.Reference,
		&entity.ParentName,
		&entity.ParentEmail,
		&entity.AmountCents,
		&sessionID,
		&entity.Status,
		&issuedOn,
		&dueOn,
		&paidOn,
		&createdAt,
	)
	if err != nil {
		return domain.Invoice{}, err
	}
	if sessionID.Valid {
		entity.SessionID = sessionID.String
	}
	entity.IssuedOn = storage.ParseNullableTime(issuedOn)
	entity.DueOn = storage.ParseNullableTime(dueOn)
	entity.PaidOn = storage.ParseNullableTime(paidOn)
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves an Invoice by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM invoice WHERE id = ?", id)
	entity, err := scanInvoice(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "invoice", err)
}

// GetByReference retrieves an Invoice by its structured payment reference.
// Reconciliation looks invoices up this way when a wire carries a valid
// communication.
func (s *SQLiteStore) GetByReference(ctx context.Context, reference string) (domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM invoice WHERE reference = ?", reference)
	entity, err := scanInvoice(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "invoice", err)
}

// NextSequence returns the next sequential invoice number for the year.
// POST: returns a value >= 1
func (s *SQLiteStore) NextSequence(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("INV-%d-%%", year)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM invoice WHERE number LIKE ?", prefix).Scan(&count)
	if err != nil {
		return 0, gateway.Wrap("next_sequence", "invoice", err)
	}
	return count + 1, nil
}

// Save persists an Invoice to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Invoice) error {
	query := `INSERT INTO invoice (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number=excluded.number, reference=excluded.reference,
			parent_name=excluded.parent_name, parent_email=excluded.parent_email,
			amount_cents=excluded.amount_cents, session_id=excluded.session_id,
			status=excluded.status, issued_on=excluded.issued_on,
			due_on=excluded.due_on, paid_on=excluded.paid_on`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Number,
		entity.Reference,
		entity.ParentName,
		entity.ParentEmail,
		entity.AmountCents,
		storage.NullableString(entity.SessionID),
		entity.Status,
		storage.NullableTime(entity.IssuedOn),
		storage.NullableTime(entity.DueOn),
		storage.NullableTime(entity.PaidOn),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "invoice", err)
}

// Delete removes an Invoice from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM invoice WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "invoice", err)
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
	if filter.SessionID != "" {
		where += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.Search != "" {
		where += " AND (number LIKE ? OR parent_name LIKE ? OR parent_email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"number": "number", "parent_name": "parent_name",
		"amount": "amount_cents", "status": "status",
		"issued_on": "issued_on", "due_on": "due_on",
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

// Count returns the total number of invoices matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM invoice"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "invoice", err)
}

// List retrieves a page of Invoices based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Invoice, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM invoice" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "invoice", err)
	}
	defer rows.Close()

	var results []domain.Invoice
	for rows.Next() {
		entity, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "invoice", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "invoice", rows.Err())
}
