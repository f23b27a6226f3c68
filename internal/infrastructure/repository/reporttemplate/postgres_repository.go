package reporttemplate

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jan-server/services/report-api/internal/domain/report"
	domain "jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/infrastructure/database/entities"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// PostgresRepository persists templates via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new template row.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Template) error {
	entity, err := mapTemplateToEntity(t)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to map template to entity", err, "template-repo-create-map-001")
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create template", err, "template-repo-create-db-001")
	}
	return nil
}

// FindByID fetches a template by public ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Template, error) {
	var entity entities.Template
	if err := r.db.WithContext(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		return nil, r.findError(ctx, err, "template-repo-find-db-001")
	}
	return mapTemplateFromEntity(&entity)
}

// Update locks the row, applies mutate and writes the result guarded by the
// version that was read.
func (r *PostgresRepository) Update(ctx context.Context, id string, mutate domain.MutateFunc) (*domain.Template, error) {
	var updated *domain.Template

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.Template
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", id).
			First(&entity).Error; err != nil {
			return r.findError(ctx, err, "template-repo-update-find-001")
		}

		current, err := mapTemplateFromEntity(&entity)
		if err != nil {
			return err
		}
		readVersion := current.Version

		if err := mutate(current); err != nil {
			return err
		}

		next, err := mapTemplateToEntity(current)
		if err != nil {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
				"failed to map template to entity for update", err, "template-repo-update-map-001")
		}

		res := tx.Model(&entities.Template{}).
			Where("public_id = ? AND version = ?", id, readVersion).
			Updates(map[string]interface{}{
				"name":        next.Name,
				"description": next.Description,
				"category":    next.Category,
				"fields":      next.Fields,
				"structure":   next.Structure,
				"is_active":   next.IsActive,
				"version":     next.Version,
				"updated_at":  next.UpdatedAt,
			})
		if res.Error != nil {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
				"failed to update template", res.Error, "template-repo-update-db-001")
		}
		if res.RowsAffected == 0 {
			return &domain.VersionConflictError{Expected: readVersion, Current: readVersion + 1}
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the template row if present.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("public_id = ?", id).Delete(&entities.Template{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to delete template", err, "template-repo-delete-db-001")
	}
	return nil
}

// List retrieves templates with filtering and pagination, ordered by name.
func (r *PostgresRepository) List(ctx context.Context, filter *domain.Filter) ([]*domain.Template, int64, error) {
	if filter == nil {
		filter = &domain.Filter{}
	}

	query := filteredTemplates(r.db.WithContext(ctx), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to count templates", err, "template-repo-list-count-001")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []entities.Template
	if err := query.Order("name ASC, public_id ASC").Find(&rows).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list templates", err, "template-repo-list-db-001")
	}

	out := make([]*domain.Template, 0, len(rows))
	for i := range rows {
		t, err := mapTemplateFromEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, nil
}

// Count returns the number of stored templates.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Template{}).Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to count templates", err, "template-repo-count-db-001")
	}
	return count, nil
}

func filteredTemplates(db *gorm.DB, filter *domain.Filter) *gorm.DB {
	query := db.Model(&entities.Template{})
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

func (r *PostgresRepository) findError(ctx context.Context, err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
		"failed to find template", err, code)
}

func mapTemplateToEntity(t *domain.Template) (*entities.Template, error) {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return nil, err
	}
	structure, err := json.Marshal(t.Structure)
	if err != nil {
		return nil, err
	}
	return &entities.Template{
		PublicID:       t.ID,
		Name:           t.Name,
		Description:    t.Description,
		OrganizationID: t.OrganizationID,
		Category:       string(t.Category),
		Fields:         datatypes.JSON(fields),
		Structure:      datatypes.JSON(structure),
		IsActive:       t.IsActive,
		Version:        t.Version,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}, nil
}

func mapTemplateFromEntity(entity *entities.Template) (*domain.Template, error) {
	t := &domain.Template{
		ID:             entity.PublicID,
		Name:           entity.Name,
		Description:    entity.Description,
		OrganizationID: entity.OrganizationID,
		Category:       report.Category(entity.Category),
		Fields:         []domain.Field{},
		IsActive:       entity.IsActive,
		Version:        entity.Version,
		CreatedAt:      entity.CreatedAt.UTC(),
		UpdatedAt:      entity.UpdatedAt.UTC(),
	}
	if len(entity.Fields) > 0 {
		if err := json.Unmarshal(entity.Fields, &t.Fields); err != nil {
			return nil, err
		}
	}
	if len(entity.Structure) > 0 {
		if err := json.Unmarshal(entity.Structure, &t.Structure); err != nil {
			return nil, err
		}
	}
	return t, nil
}
