package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
	"github.com/mohammadpnp/client-import/internal/infrastructure/db/models"
)

// ClientRepository is the gorm-backed write side of the clients table.
type ClientRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db, now: time.Now}
}

func (r *ClientRepository) FindByID(ctx context.Context, scope domain.Scope, id string) (*domain.Client, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrClientNotFound
	}

	query := r.db.WithContext(ctx).Where("id = ?", id)
	if owners := scope.OwnerIDs(); owners != nil {
		query = query.Where("owner_id IN ?", owners)
	}

	var row models.Client
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, mapStoreError("find client", err)
	}

	c := toDomainClient(row)
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c domain.Client) error {
	row := toClientModel(c)
	now := r.now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapStoreError("create client", err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c domain.Client) error {
	row := toClientModel(c)

	result := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":                row.Name,
			"city":                row.City,
			"state":               row.State,
			"document":            row.Document,
			"name_normalized":     row.NameNormalized,
			"city_normalized":     row.CityNormalized,
			"document_normalized": row.DocumentNormalized,
			"fingerprint":         row.Fingerprint,
			"attributes":          row.Attributes,
			"updated_at":          r.now().UTC(),
		})
	if result.Error != nil {
		return mapStoreError("update client", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update client %s: %w", c.ID, domain.ErrClientNotFound)
	}
	return nil
}

func toClientModel(c domain.Client) models.Client {
	return models.Client{
		ID:                 c.ID,
		OwnerID:            c.OwnerID,
		Name:               c.Name,
		City:               c.City,
		State:              c.State,
		Document:           c.Document,
		NameNormalized:     c.NameNormalized,
		CityNormalized:     c.CityNormalized,
		DocumentNormalized: c.DocumentNormalized,
		Fingerprint:        c.Fingerprint,
		Attributes:         models.Attributes(c.Attributes),
	}
}

func toDomainClient(row models.Client) domain.Client {
	return domain.Client{
		ID:                 row.ID,
		OwnerID:            row.OwnerID,
		Name:               row.Name,
		City:               row.City,
		State:              row.State,
		Document:           row.Document,
		NameNormalized:     row.NameNormalized,
		CityNormalized:     row.CityNormalized,
		DocumentNormalized: row.DocumentNormalized,
		Fingerprint:        row.Fingerprint,
		Attributes:         domain.Attributes(row.Attributes),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
