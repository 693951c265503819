package banktransaction

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/banktransaction"
	"campdesk/internal/gateway"
)

const columns = "id, booked_on, amount_cents, counterparty, reference, status, invoice_id, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new bank transaction store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanTransaction(scan func(dest ...any) error) (domain.Transaction, error) {
	var entity domain.Transaction
	var bookedOn, createdAt string
	var invoiceID sql.NullString
	err := scan(
		&entity.ID,
		&bookedOn,
		&entity.AmountCents,
		&entity.Counterparty,
		&entity.Reference,
		&entity.Status,
		&invoiceID,
		&createdAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	entity.BookedOn = storage.ParseTime(bookedOn)
	entity.CreatedAt = storage.ParseTime(createdAt)
	if invoiceID.Valid {
		entity.InvoiceID = invoiceID.String
	}
	return entity, nil
}

// GetByID retrieves a Transaction by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM bank_transaction WHERE id = ?", id)
	entity, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "bank_transaction", err)
}

// Save persists a Transaction to the database.
// POST: entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Transaction) error {
	query := `INSERT INTO bank_transaction (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			booked_on=excluded.booked_on, amount_cents=excluded.amount_cents,
			counterparty=excluded.counterparty, reference=excluded.reference,
			status=excluded.status, invoice_id=excluded.invoice_id`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		storage.FormatTime(entity.BookedOn),
		entity.AmountCents,
		entity.Counterparty,
		entity.Reference,
		entity.Status,
		storage.NullableString(entity.InvoiceID),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "bank_transaction", err)
}

// Delete removes a Transaction from the database.
// POST: returns gateway.ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bank_transaction WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "bank_transaction", err)
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
		where += " AND (counterparty LIKE ? OR reference LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"booked_on": "booked_on", "amount": "amount_cents",
		"counterparty": "counterparty", "status": "status",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY booked_on DESC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of transactions matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bank_transaction"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "bank_transaction", err)
}

// List retrieves a page of Transactions based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Transaction, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM bank_transaction" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "bank_transaction", err)
	}
	defer rows.Close()

	var results []domain.Transaction
	for rows.Next() {
		entity, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "bank_transaction", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "bank_transaction", rows.Err())
}
