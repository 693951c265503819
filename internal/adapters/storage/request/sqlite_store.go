package request

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/request"
	"campdesk/internal/gateway"
)

const columns = "id, kind, child_name, parent_email, session_id, reason, status, decision_note, decided_at, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new request store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanRequest(scan func(dest ...any) error) (domain.Request, error) {
	var entity domain.Request
	var decidedAt sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Kind,
		&entity.ChildName,
		&entity.ParentEmail,
		&entity.SessionID,
		&entity.Reason,
		&entity.Status,
		&entity.DecisionNote,
		&decidedAt,
		&createdAt,
	)
	if err != nil {
		return domain.Request{}, err
	}
	entity.DecidedAt = storage.ParseNullableTime(decidedAt)
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a Request by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Request, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM request WHERE id = ?", id)
	entity, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Request{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "request", err)
}

// Save persists a Request to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Request) error {
	query := `INSERT INTO request (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, child_name=excluded.child_name,
			parent_email=excluded.parent_email, session_id=excluded.session_id,
			reason=excluded.reason, status=excluded.status,
			decision_note=excluded.decision_note, decided_at=excluded.decided_at`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Kind,
		entity.ChildName,
		entity.ParentEmail,
		entity.SessionID,
		entity.Reason,
		entity.Status,
		entity.DecisionNote,
		storage.NullableTime(entity.DecidedAt),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "request", err)
}

// Delete removes a Request from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM request WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "request", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Kind != "" {
		where += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.SessionID != "" {
		where += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.Search != "" {
		where += " AND (child_name LIKE ? OR parent_email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"child_name": "child_name", "kind": "kind",
		"status": "status", "created_at": "created_at",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY created_at ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of requests matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM request"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "request", err)
}

// List retrieves a page of Requests based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Request, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM request" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "request", err)
	}
	defer rows.Close()

	var results []domain.Request
	for rows.Next() {
		entity, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "request", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "request", rows.Err())
}
