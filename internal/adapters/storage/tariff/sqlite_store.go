package tariff

import (
	"context"
	"database/sql"
	"errors"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/tariff"
	"campdesk/internal/gateway"
)

const columns = "id, label, kind, percent, amount_cents, school_id, valid_from, valid_to, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new tariff store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanTariff(scan func(dest ...any) error) (domain.Tariff, error) {
	var entity domain.Tariff
	var schoolID, validFrom, validTo sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Label,
		&entity.Kind,
		&entity.Percent,
		&entity.AmountCents,
		&schoolID,
		&validFrom,
		&validTo,
		&createdAt,
	)
	if err != nil {
		return domain.Tariff{}, err
	}
	if schoolID.Valid {
		entity.SchoolID = schoolID.String
	}
	entity.ValidFrom = storage.ParseNullableTime(validFrom)
	entity.ValidTo = storage.ParseNullableTime(validTo)
	entity.CreatedAt = storage.ParseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a Tariff by its ID.
// POST: returns the entity, or gateway.ErrNotFound if absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Tariff, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM tariff WHERE id = ?", id)
	entity, err := scanTariff(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tariff{}, gateway.ErrNotFound
	}
	return entity, gateway.Wrap("get", "tariff", err)
}

// Save persists a Tariff to the database.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Tariff) error {
	query := `INSERT INTO tariff (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label=excluded.label, kind=excluded.kind, percent=excluded.percent,
			amount_cents=excluded.amount_cents, school_id=excluded.school_id,
			valid_from=excluded.valid_from, valid_to=excluded.valid_to`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Label,
		entity.Kind,
		entity.Percent,
		entity.AmountCents,
		storage.NullableString(entity.SchoolID),
		storage.NullableTime(entity.ValidFrom),
		storage.NullableTime(entity.ValidTo),
		storage.FormatTime(entity.CreatedAt),
	)
	return gateway.Wrap("save", "tariff", err)
}

// Delete removes a Tariff from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tariff WHERE id = ?", id)
	if err != nil {
		return gateway.Wrap("delete", "tariff", err)
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
	if filter.SchoolID != "" {
		where += " AND school_id = ?"
		args = append(args, filter.SchoolID)
	}
	if filter.Search != "" {
		where += " AND label LIKE ?"
		args = append(args, "%"+filter.Search+"%")
	}
	return where, args
}

func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"label": "label", "kind": "kind", "valid_from": "valid_from",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY label ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// Count returns the total number of tariffs matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tariff"+where, args...).Scan(&count)
	return count, gateway.Wrap("count", "tariff", err)
}

// List retrieves a page of Tariffs based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Tariff, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM tariff" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.Wrap("list", "tariff", err)
	}
	defer rows.Close()

	var results []domain.Tariff
	for rows.Next() {
		entity, err := scanTariff(rows.Scan)
		if err != nil {
			return nil, gateway.Wrap("list", "tariff", err)
		}
		results = append(results, entity)
	}
	return results, gateway.Wrap("list", "tariff", rows.Err())
}
