package stage

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/stage"
	"campdesk/internal/gateway"
)

const columns = "id, title, description, category, age_min, age_max, base_price_cents, photo_url, active, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new stage store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanStage(scan func(dest ...any) error) (domain.Stage, error) {
	var entity domain.Stage
	var active int
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Description,
		&entity.Category,
		&entity.AgeMin,
		&entity.AgeMax,
		&entity.BasePriceCents,
		&entity.PhotoURL,
		&active,
		&createdAt,
	)
	if err != nil {
		return domain.Stage{}, err
	}
	entity.Active = active != 0
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a Stage by its ID.
// PRE: id is non-empty
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Stage, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM stage WHERE id = ?", id)
	entity, err := scanStage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stage{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "stage", err)
}

// Save persists a Stage to the database.
// PRE: entity has been validated
// POST: entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Stage) error {
	query := `INSERT INTO stage (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, description=excluded.description,
			category=excluded.category, age_min=excluded.age_min,
			age_max=excluded.age_max, base_price_cents=excluded.base_price_cents,
			photo_url=excluded.photo_url, active=excluded.active`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Title,
		entity.Description,
		entity.Category,
		entity.AgeMin,
		entity.AgeMax,
		entity.BasePriceCents,
		entity.PhotoURL,
		storage.BoolToInt(entity.Active),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "stage", err)
}

// Delete removes a Stage from the database.
// POST: returns gateway.ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stage WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "stage", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Active != nil {
		where += " AND active = ?"
		args = append(args, storage.BoolToInt(*filter.Active))
	}
	if filter.Search != "" {
		where += " AND (title LIKE ? OR description LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// sortClause returns a safe ORDER BY clause. Only allowed columns are accepted.
func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"title": "title", "category": "category",
		"age_min": "age_min", "base_price": "base_price_cents",
		"created_at": "created_at",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY title ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of stages matching the filter.
// POST: returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stage"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "stage", err)
}

// List retrieves a page of Stages based on the filter.
// PRE: filter has valid parameters
// POST: returns matching entities, sorted and paginated
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Stage, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM stage" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "stage", err)
	}
	defer rows.Close()

	var results []domain.Stage
	for rows.Next() {
		entity, err := scanStage(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "stage", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "stage", rows.Err())
}
