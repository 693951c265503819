package session

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/session"
	"campdesk/internal/gateway"
)

const columns = "id, stage_id, center_id, start_date, end_date, capacity, booked, price_cents, status, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var entity domain.Session
	var startDate, endDate, createdAt string
	err := scan(
		&entity.ID,
		&entity.StageID,
		&entity.CenterID,
		&startDate,
		&endDate,
		&entity.Capacity,
		&entity.Booked,
		&entity.PriceCents,
		&entity.Status,
		&createdAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	entity.StartDate = storage.ParseTime(startDate)
	entity.EndDate = storage.ParseTime(endDate)
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a Session by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM session WHERE id = ?", id)
	entity, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "session", err)
}

// Save persists a Session to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Session) error {
	query := `INSERT INTO session (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage_id=excluded.stage_id, center_id=excluded.center_id,
			start_date=excluded.start_date, end_date=excluded.end_date,
			capacity=excluded.capacity, booked=excluded.booked,
			price_cents=excluded.price_cents, status=excluded.status`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.StageID,
		entity.CenterID,
		storage.FormatTime(entity.StartDate),
		storage.FormatTime(entity.EndDate),
		entity.Capacity,
		entity.Booked,
		entity.PriceCents,
		entity.Status,
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "session", err)
}

// Delete removes a Session from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "session", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.StageID != "" {
		where += " AND stage_id = ?"
		args = append(args, filter.StageID)
	}
	if filter.CenterID != "" {
		where += " AND center_id = ?"
		args = append(args, filter.CenterID)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"start_date": "start_date", "end_date": "end_date",
		"capacity": "capacity", "status": "status",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY start_date ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of sessions matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "session", err)
}

// List retrieves a page of Sessions based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM session" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "session", err)
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		entity, err := scanSession(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "session", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "session", rows.Err())
}
