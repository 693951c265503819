package subscriber

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/subscriber"
	"campdesk/internal/gateway"
)

const columns = "id, email, name, status, subscribed_at, unsubscribed_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new subscriber store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanSubscriber(scan func(dest ...any) error) (domain.Subscriber, error) {
	var entity domain.Subscriber
	var subscribedAt string
	var unsubscribedAt sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Name,
		&entity.Status,
		&subscribedAt,
		&unsubscribedAt,
	)
	if err != nil {
		return domain.Subscriber{}, err
	}
	entity.SubscribedAt = storage.ParseTime(subscribedAt)
	entity.UnsubscribedAt = storage.ParseNullableTime(unsubscribedAt)
	return entity, nil
}

// GetByID retrieves a Subscriber by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Subscriber, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM subscriber WHERE id = ?", id)
	entity, err := scanSubscriber(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subscriber{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "subscriber", err)
}

// GetByEmail retrieves a Subscriber by email.
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Subscriber, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM subscriber WHERE email = ?", email)
	entity, err := scanSubscriber(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subscriber{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "subscriber", err)
}

// Save persists a Subscriber to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Subscriber) error {
	query := `INSERT INTO subscriber (` + columns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email, name=excluded.name, status=excluded.status,
			subscribed_at=excluded.subscribed_at, unsubscribed_at=excluded.unsubscribed_at`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Email,
		entity.Name,
		entity.Status,
		storage.FormatTime(entity.SubscribedAt),
		storage.NullableTime(entity.UnsubscribedAt),
	)
	return gateway.Wrap("save", "subscriber", err)
}

// Delete removes a Subscriber from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriber WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "subscriber", err)
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
	if filter.Search != "" {
		where += " AND (email LIKE ? OR name LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"email": "email", "name": "name",
		"status": "status", "subscribed_at": "subscribed_at",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY email ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of subscribers matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscriber"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "subscriber", err)
}

// List retrieves a page of Subscribers based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Subscriber, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM subscriber" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "subscriber", err)
	}
	defer rows.Close()

	var results []domain.Subscriber
	for rows.Next() {
		entity, err := scanSubscriber(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "subscriber", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "subscriber", rows.Err())
}
