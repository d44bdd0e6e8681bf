package sku

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"rotazap-backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetBrief(ctx context.Context, skuID int64) (*Brief, error) {
	const q = `
SELECT s.id, s.article, b.name,
       COALESCE((SELECT n.name FROM sku_names n WHERE n.sku_id = s.id ORDER BY n.id LIMIT 1), '')
FROM skus s
JOIN brands b ON b.id = s.brand_id
WHERE s.id = $1
`
	var brief Brief
	err := r.pool.QueryRow(ctx, q, skuID).Scan(&brief.ID, &brief.Article, &brief.Brand, &brief.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &brief, nil
}

func (r *postgresRepo) FindByCrossRefs(ctx context.Context, refs []domain.CrossRef) ([]Brief, error) {
	brands := make([]string, 0, len(refs))
	articles := make([]string, 0, len(refs))
	brandSeen := make(map[string]struct{}, len(refs))
	articleSeen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if ref.Brand != "" {
			if _, ok := brandSeen[ref.Brand]; !ok {
				brandSeen[ref.Brand] = struct{}{}
				brands = append(brands, ref.Brand)
			}
		}
		if ref.Number != "" {
			if _, ok := articleSeen[ref.Number]; !ok {
				articleSeen[ref.Number] = struct{}{}
				articles = append(articles, ref.Number)
			}
		}
	}
	if len(brands) == 0 || len(articles) == 0 {
		return nil, nil
	}

	const q = `
SELECT s.id, s.article, b.name,
       COALESCE((SELECT n.name FROM sku_names n WHERE n.sku_id = s.id ORDER BY n.id LIMIT 1), '')
FROM skus s
JOIN brands b ON b.id = s.brand_id
WHERE s.article = ANY($1) AND b.name = ANY($2)
`
	rows, err := r.pool.Query(ctx, q, articles, brands)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var briefs []Brief
	for rows.Next() {
		var brief Brief
		if err := rows.Scan(&brief.ID, &brief.Article, &brief.Brand, &brief.Name); err != nil {
			return nil, err
		}
		briefs = append(briefs, brief)
	}
	return briefs, rows.Err()
}

func (r *postgresRepo) EnsureBrand(ctx context.Context, name string) (int64, error) {
	const q = `
INSERT INTO brands (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`
	var id int64
	if err := r.pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *postgresRepo) EnsureSku(ctx context.Context, brandID int64, article, name string) (int64, error) {
	const q = `
INSERT INTO skus (brand_id, article)
VALUES ($1, $2)
ON CONFLICT (brand_id, article) DO UPDATE SET article = EXCLUDED.article
RETURNING id
`
	var id int64
	if err := r.pool.QueryRow(ctx, q, brandID, article).Scan(&id); err != nil {
		return 0, err
	}
	if name != "" {
		const nameQ = `
INSERT INTO sku_names (sku_id, name)
SELECT $1, $2
WHERE NOT EXISTS (SELECT 1 FROM sku_names WHERE sku_id = $1 AND name = $2)
`
		if _, err := r.pool.Exec(ctx, nameQ, id, name); err != nil {
			return 0, err
		}
	}
	return id, nil
}
