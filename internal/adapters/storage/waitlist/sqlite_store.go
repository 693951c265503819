package waitlist

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/waitlist"
	"campdesk/internal/gateway"
)

const columns = "id, session_id, child_name, parent_email, position, status, offered_at, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new waitlist store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var entity domain.Entry
	var offeredAt sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.SessionID,
		&entity.ChildName,
		&entity.ParentEmail,
		&entity.Position,
		&entity.Status,
		&offeredAt,
		&createdAt,
	)
	if err != nil {
		return domain.Entry{}, err
	}
	entity.OfferedAt = storage.ParseNullableTime(offeredAt)
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves an Entry by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM waitlist_entry WHERE id = ?", id)
	entity, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "waitlist_entry", err)
}

// NextWaiting returns the front of the queue for the session.
// POST: returns gateway.ErrNotFound when nobody is waiting
func (s *SQLiteStore) NextWaiting(ctx context.Context, sessionID string) (domain.Entry, error) {
	query := "SELECT " + columns + " FROM waitlist_entry WHERE session_id = ? AND status = ? ORDER BY position ASC LIMIT 1"
	row := s.db.QueryRowContext(ctx, query, sessionID, domain.StatusWaiting)
	entity, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "waitlist_entry", err)
}

// NextPosition returns the position for a new entry at the back of the queue.
// POST: returns a value >= 1
func (s *SQLiteStore) NextPosition(ctx context.Context, sessionID string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(position) FROM waitlist_entry WHERE session_id = ?", sessionID).Scan(&max)
	if err != nil {
		return 0, gateway.Wrap("next_position", "waitlist_entry", err)
	}
	return int(max.Int64) + 1, nil
}

// Save persists an Entry to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Entry) error {
	query := `INSERT INTO waitlist_entry (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id=excluded.session_id, child_name=excluded.child_name,
			parent_email=excluded.parent_email, position=excluded.position,
			status=excluded.status, offered_at=excluded.offered_at`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.SessionID,
		entity.ChildName,
		entity.ParentEmail,
		entity.Position,
		entity.Status,
		storage.NullableTime(entity.OfferedAt),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "waitlist_entry", err)
}

// Delete removes an Entry from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM waitlist_entry WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "waitlist_entry", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.SessionID != "" {
		where += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
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
		"position": "position", "child_name": "child_name",
		"status": "status", "created_at": "created_at",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY position ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of entries matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM waitlist_entry"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "waitlist_entry", err)
}

// List retrieves a page of Entries based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Entry, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM waitlist_entry" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "waitlist_entry", err)
	}
	defer rows.Close()

	var results []domain.Entry
	for rows.Next() {
		entity, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "waitlist_entry", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "waitlist_entry", rows.Err())
}
