package repository

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

// ClientIndexRepository streams the fingerprinting columns of every client
// visible to a scope, oldest first.
type ClientIndexRepository struct {
	pool *pgxpool.Pool
}

func NewClientIndexRepository(pool *pgxpool.Pool) *ClientIndexRepository {
	return &ClientIndexRepository{pool: pool}
}

func (r *ClientIndexRepository) ListVisible(ctx context.Context, scope domain.Scope) ([]domain.ExistingRecord, error) {
	query, args := visibleClientsQuery(scope)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapStoreError("list visible clients", err)
	}
	defer rows.Close()

	records, err := scanExistingRecords(rows)
	if err != nil {
		return nil, mapStoreError("scan visible clients", err)
	}
	return records, nil
}

func visibleClientsQuery(scope domain.Scope) (string, []any) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"id", "owner_id", "name", "city", "state", "document",
		"name_normalized", "city_normalized", "document_normalized",
	)
	sb.From("clients")
	if owners := scope.OwnerIDs(); owners != nil {
		sb.Where(sb.In("owner_id", sqlbuilder.Flatten(owners)...))
	}
	sb.OrderBy("created_at ASC", "id ASC")
	return sb.Build()
}

func scanExistingRecords(rows pgx.Rows) ([]domain.ExistingRecord, error) {
	records := make([]domain.ExistingRecord, 0)
	for rows.Next() {
		var r domain.ExistingRecord
		if err := rows.Scan(
			&r.ID,
			&r.OwnerID,
			&r.Name,
			&r.City,
			&r.State,
			&r.Document,
			&r.NameNormalized,
			&r.CityNormalized,
			&r.DocumentNormalized,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
