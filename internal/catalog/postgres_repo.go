package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const assetColumns = `id, user_id, media_kind, media_url, external_id, folder, caption,
	country, city, lat, lng, created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanAsset(row pgx.Row) (Asset, error) {
	var a Asset
	err := row.Scan(
		&a.ID, &a.UserID, &a.MediaKind, &a.MediaURL, &a.ExternalID, &a.Folder, &a.Caption,
		&a.Country, &a.City, &a.Lat, &a.Lng, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func createdAtArg(a *Asset) any {
	if a.CreatedAt.IsZero() {
		return nil
	}
	return a.CreatedAt
}

func (r *PostgresRepo) Insert(ctx context.Context, a *Asset) error {
	const query = `
		INSERT INTO catalog_assets (user_id, media_kind, media_url, external_id, folder, caption, country, city, lat, lng, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		a.UserID, a.MediaKind, a.MediaURL, a.ExternalID, a.Folder, a.Caption,
		a.Country, a.City, a.Lat, a.Lng, createdAtArg(a),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return insertError(err)
	}
	return nil
}

func insertError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return ErrDuplicateExternalID
	case foreignKeyViolation:
		return ErrUnknownOwner
	}
	return err
}

func (r *PostgresRepo) InsertIfAbsent(ctx context.Context, a *Asset) (bool, error) {
	const query = `
		INSERT INTO catalog_assets (user_id, media_kind, media_url, external_id, folder, caption, country, city, lat, lng, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
		ON CONFLICT (external_id) WHERE external_id IS NOT NULL DO NOTHING
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		a.UserID, a.MediaKind, a.MediaURL, a.ExternalID, a.Folder, a.Caption,
		a.Country, a.City, a.Lat, a.Lng, createdAtArg(a),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, insertError(err)
	}
	return true, nil
}

func (r *PostgresRepo) Repair(ctx context.Context, externalID string, e Enrichment) (bool, error) {
	const query = `
		UPDATE catalog_assets SET
			lat = COALESCE($2, lat),
			lng = COALESCE($3, lng),
			created_at = COALESCE($4, created_at),
			updated_at = now()
		WHERE external_id = $1
		  AND lat IS NULL
		  AND (($2::float8 IS NOT NULL AND $3::float8 IS NOT NULL)
		       OR ($4::timestamptz IS NOT NULL AND created_at <> $4::timestamptz))`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, externalID, e.Lat, e.Lng, e.CapturedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM catalog_assets WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	a, err := scanAsset(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, ErrNotFound
		}
		return Asset{}, err
	}
	return a, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (Asset, error) {
	query := `DELETE FROM catalog_assets WHERE id = $1 RETURNING ` + assetColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	a, err := scanAsset(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, ErrNotFound
		}
		return Asset{}, err
	}
	return a, nil
}

func (r *PostgresRepo) ListPage(ctx context.Context, q PageQuery) ([]Asset, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	switch q.Filter.Kind {
	case FilterPlace:
		clauses = append(clauses, fmt.Sprintf("country = $%d AND city = $%d", argn, argn+1))
		args = append(args, q.Filter.Country, q.Filter.City)
		argn += 2
	case FilterUnknown:
		clauses = append(clauses, "(country IS NULL OR btrim(country) = '' OR city IS NULL OR btrim(city) = '')")
	}

	cmp, order := ">", "ASC"
	if q.Desc {
		cmp, order = "<", "DESC"
	}
	if q.After != nil {
		clauses = append(clauses, fmt.Sprintf("(created_at, id) %s ($%d, $%d::uuid)", cmp, argn, argn+1))
		args = append(args, q.After.CreatedAt, q.After.ID)
		argn += 2
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM catalog_assets
		WHERE %s
		ORDER BY created_at %s, id %s
		LIMIT $%d`,
		assetColumns, strings.Join(clauses, " AND "), order, order, argn)
	args = append(args, q.Limit)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Places(ctx context.Context) ([]PlaceCount, int, error) {
	const placesSQL = `
		SELECT btrim(country), btrim(city), COUNT(*)
		FROM catalog_assets
		WHERE country IS NOT NULL AND btrim(country) <> ''
		  AND city IS NOT NULL AND btrim(city) <> ''
		GROUP BY 1, 2`
	const unknownSQL = `
		SELECT COUNT(*)
		FROM catalog_assets
		WHERE country IS NULL OR btrim(country) = '' OR city IS NULL OR btrim(city) = ''`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, placesSQL)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PlaceCount
	for rows.Next() {
		var p PlaceCount
		if err := rows.Scan(&p.Country, &p.City, &p.Count); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unknown int
	if err := r.db.QueryRow(timeoutCtx, unknownSQL).Scan(&unknown); err != nil {
		return nil, 0, err
	}
	return out, unknown, nil
}
