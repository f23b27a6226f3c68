package report

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/infrastructure/database/entities"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// PostgresRepository persists reports via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new report row.
func (r *PostgresRepository) Create(ctx context.Context, rep *domain.Report) error {
	entity, err := mapReportToEntity(rep)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to map report to entity", err, "report-repo-create-map-001")
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create report", err, "report-repo-create-db-001")
	}
	return nil
}

// FindByID fetches a report by public ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	var entity entities.Report
	if err := r.db.WithContext(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		return nil, r.findError(ctx, err, "report-repo-find-db-001")
	}
	return mapReportFromEntity(&entity)
}

// Update locks the row, applies mutate and writes the result guarded by the
// version that was read.
func (r *PostgresRepository) Update(ctx context.Context, id string, mutate domain.MutateFunc) (*domain.Report, error) {
	var updated *domain.Report

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.Report
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", id).
			First(&entity).Error; err != nil {
			return r.findError(ctx, err, "report-repo-update-find-001")
		}

		current, err := mapReportFromEntity(&entity)
		if err != nil {
			return err
		}
		readVersion := current.Version

		if err := mutate(current); err != nil {
			return err
		}

		next, err := mapReportToEntity(current)
		if err != nil {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
				"failed to map report to entity for update", err, "report-repo-update-map-001")
		}

		updates := map[string]interface{}{
			"reference_number": next.ReferenceNumber,
			"title":            next.Title,
			"content":          next.Content,
			"status":           next.Status,
			"review_status":    next.ReviewStatus,
			"category":         next.Category,
			"priority":         next.Priority,
			"department":       next.Department,
			"estimated_budget": next.EstimatedBudget,
			"tags":             next.Tags,
			"related_reports":  next.RelatedReports,
			"attachments":      next.Attachments,
			"version":          next.Version,
			"updated_at":       next.UpdatedAt,
		}

		res := tx.Model(&entities.Report{}).
			Where("public_id = ? AND version = ?", id, readVersion).
			Updates(updates)
		if res.Error != nil {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
				"failed to update report", res.Error, "report-repo-update-db-001")
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

// Delete removes the report row if present.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("public_id = ?", id).Delete(&entities.Report{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to delete report", err, "report-repo-delete-db-001")
	}
	return nil
}

// List retrieves reports with filtering and pagination.
func (r *PostgresRepository) List(ctx context.Context, filter *domain.Filter) ([]*domain.Report, int64, error) {
	if filter == nil {
		filter = domain.NewFilter()
	}

	query := r.db.WithContext(ctx).Model(&entities.Report{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", string(*filter.Priority))
	}
	if filter.Department != nil {
		query = query.Where("LOWER(department) = LOWER(?)", *filter.Department)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to count reports", err, "report-repo-list-count-001")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []entities.Report
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list reports", err, "report-repo-list-db-001")
	}

	reports, err := mapReports(rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Search matches query against reference number or title.
func (r *PostgresRepository) Search(ctx context.Context, query string) ([]*domain.Report, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var rows []entities.Report
	if err := r.db.WithContext(ctx).
		Where("LOWER(reference_number) LIKE ? OR LOWER(title) LIKE ?", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to search reports", err, "report-repo-search-db-001")
	}
	return mapReports(rows)
}

// Count returns the number of stored reports.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Report{}).Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to count reports", err, "report-repo-count-db-001")
	}
	return count, nil
}

func (r *PostgresRepository) findError(ctx context.Context, err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
		"failed to find report", err, code)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapReportToEntity(rep *domain.Report) (*entities.Report, error) {
	tags, err := marshalJSON(rep.Metadata.Tags)
	if err != nil {
		return nil, err
	}
	related, err := marshalJSON(rep.Metadata.RelatedReports)
	if err != nil {
		return nil, err
	}
	attachments, err := marshalJSON(rep.Metadata.Attachments)
	if err != nil {
		return nil, err
	}

	var budget decimal.NullDecimal
	if rep.Metadata.EstimatedBudget != nil {
		budget = decimal.NewNullDecimal(*rep.Metadata.EstimatedBudget)
	}

	return &entities.Report{
		PublicID:        rep.ID,
		ReferenceNumber: rep.ReferenceNumber,
		Title:           rep.Title,
		Content:         rep.Content,
		AuthorID:        rep.AuthorID,
		OrganizationID:  rep.OrganizationID,
		Status:          string(rep.Status),
		ReviewStatus:    string(rep.ReviewStatus),
		Category:        string(rep.Metadata.Category),
		Priority:        string(rep.Metadata.Priority),
		Department:      rep.Metadata.Department,
		EstimatedBudget: budget,
		Tags:            tags,
		RelatedReports:  related,
		Attachments:     attachments,
		Version:         rep.Version,
		CreatedAt:       rep.CreatedAt,
		UpdatedAt:       rep.UpdatedAt,
	}, nil
}

func mapReportFromEntity(entity *entities.Report) (*domain.Report, error) {
	rep := &domain.Report{
		ID:              entity.PublicID,
		ReferenceNumber: entity.ReferenceNumber,
		Title:           entity.Title,
		Content:         entity.Content,
		AuthorID:        entity.AuthorID,
		OrganizationID:  entity.OrganizationID,
		Status:          domain.Status(entity.Status),
		ReviewStatus:    domain.ReviewStatus(entity.ReviewStatus),
		Metadata: domain.Metadata{
			Category:       domain.Category(entity.Category),
			Priority:       domain.Priority(entity.Priority),
			Department:     entity.Department,
			Tags:           []string{},
			RelatedReports: []string{},
			Attachments:    []domain.Attachment{},
		},
		Version:   entity.Version,
		CreatedAt: entity.CreatedAt.UTC(),
		UpdatedAt: entity.UpdatedAt.UTC(),
	}
	if entity.EstimatedBudget.Valid {
		budget := entity.EstimatedBudget.Decimal
		rep.Metadata.EstimatedBudget = &budget
	}
	if err := unmarshalJSON(entity.Tags, &rep.Metadata.Tags); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(entity.RelatedReports, &rep.Metadata.RelatedReports); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(entity.Attachments, &rep.Metadata.Attachments); err != nil {
		return nil, err
	}
	return rep, nil
}

func mapReports(rows []entities.Report) ([]*domain.Report, error) {
	out := make([]*domain.Report, 0, len(rows))
	for i := range rows {
		rep, err := mapReportFromEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalJSON(raw datatypes.JSON, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
