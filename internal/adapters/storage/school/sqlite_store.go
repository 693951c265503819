package school

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/school"
	"campdesk/internal/gateway"
)

const columns = "id, name, city, contact_name, contact_email, discount_pct, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new school store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanSchool(scan func(dest ...any) error) (domain.School, error) {
	var entity domain.School
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.City,
		&entity.ContactName,
		&entity.ContactEmail,
		&entity.DiscountPct,
		&createdAt,
	)
	if err != nil {
		return domain.School{}, err
	}
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a School by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.School, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM school WHERE id = ?", id)
	entity, err := scanSchool(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.School{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "school", err)
}

// Save persists a School to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.School) error {
	query := `INSERT INTO school (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, city=excluded.city,
			contact_name=excluded.contact_name, contact_email=excluded.contact_email,
			discount_pct=excluded.discount_pct`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.City,
		entity.ContactName,
		entity.ContactEmail,
		entity.DiscountPct,
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "school", err)
}

// Delete removes a School from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM school WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "school", err)
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
	if filter.Search != "" {
		where += " AND (name LIKE ? OR contact_name LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"name": "name", "city": "city", "discount": "discount_pct",
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

// Count returns the total number of schools matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM school"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "school", err)
}

// List retrieves a page of Schools based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.School, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM school" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "school", err)
	}
	defer rows.Close()

	var results []domain.School
	for rows.Next() {
		entity, err := scanSchool(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "school", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "school", rows.Err())
}
