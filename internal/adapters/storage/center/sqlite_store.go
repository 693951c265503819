package center

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/center"
	"campdesk/internal/gateway"
)

const columns = "id, name, address, city, postal_code, phone, email, capacity, photo_url, active, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new center store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanCenter(scan func(dest ...any) error) (domain.Center, error) {
	var entity domain.Center
	var active int
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Address,
		&entity.City,
		&entity.PostalCode,
		&entity.Phone,
		&entity.Email,
		&entity.Capacity,
		&entity.PhotoURL,
		&active,
		&createdAt,
	)
	if err != nil {
		return domain.Center{}, err
	}
	entity.Active = active != 0
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a Center by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Center, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM center WHERE id = ?", id)
	entity, err := scanCenter(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Center{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "center", err)
}

// Save persists a Center to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Center) error {
	query := `INSERT INTO center (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, address=excluded.address, city=excluded.city,
			postal_code=excluded.postal_code, phone=excluded.phone,
			email=excluded.email, capacity=excluded.capacity,
			photo_url=excluded.photo_url, active=excluded.active`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Address,
		entity.City,
		entity.PostalCode,
		entity.Phone,
		entity.Email,
		entity.Capacity,
		entity.PhotoURL,
		storage.BoolToInt(entity.Active),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "center", err)
}

// Delete removes a Center from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM center WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "center", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.City != "" {
		where += " AND city = ?"
		args = append(args, filter.City)
	}
	if filter.Active != nil {
		where += " AND active = ?"
		args = append(args, storage.BoolToInt(*filter.Active))
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR city LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"name": "name", "city": "city",
		"capacity": "capacity", "created_at": "created_at",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY name ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of centers matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM center"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "center", err)
}

// List retrieves a page of Centers based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Center, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM center" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "center", err)
	}
	defer rows.Close()

	var results []domain.Center
	for rows.Next() {
		entity, err := scanCenter(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "center", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "center", rows.Err())
}
