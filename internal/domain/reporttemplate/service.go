package reporttemplate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jan-server/services/report-api/internal/domain/principal"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/utils/idgen"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// Service describes the business logic surface for templates.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Template, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *Filter) ([]*Template, int64, error)
}

// CreateParams carries a new template. An empty organization id is taken
// from the principal in the context; a nil IsActive means active.
type CreateParams struct {
	Name           string
	Description    string
	OrganizationID string
	Category       report.Category
	Fields         []Field
	Structure      Structure
	IsActive       *bool
}

// UpdateParams carries a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	Name            *string
	Description     *string
	Category        *report.Category
	Fields          *[]Field
	Structure       *Structure
	IsActive        *bool
	ExpectedVersion *int
}

// DefaultService implements the Service interface.
type DefaultService struct {
	repo   Repository
	log    zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a new template service.
func NewService(repo Repository, log zerolog.Logger) *DefaultService {
	return &DefaultService{
		repo:   repo,
		log:    log.With().Str("component", "template-service").Logger(),
		tracer: otel.Tracer("report-api/reporttemplate"),
		now:    time.Now,
	}
}

// Create validates params and stores a new template at version 1.
func (s *DefaultService) Create(ctx context.Context, params CreateParams) (*Template, error) {
	ctx, span := s.tracer.Start(ctx, "template.Create")
	defer span.End()

	category := params.Category
	if category == "" {
		category = report.CategoryOther
	}
	organization := strings.TrimSpace(params.OrganizationID)
	if caller, ok := principal.FromContext(ctx); ok && organization == "" {
		organization = caller.OrganizationID
	}
	active := true
	if params.IsActive != nil {
		active = *params.IsActive
	}

	now := s.now().UTC()
	t := &Template{
		ID:             idgen.NewTemplateID(),
		Name:           strings.TrimSpace(params.Name),
		Description:    params.Description,
		OrganizationID: organization,
		Category:       category,
		Fields:         cloneFields(params.Fields),
		Structure:      params.Structure,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}
	t.Structure.Sections = append([]Section{}, params.Structure.Sections...)

	if err := Validate(t); err != nil {
		return nil, s.fail(ctx, span, err, "invalid template", "template-create-validate-001")
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, s.fail(ctx, span, err, "failed to create template", "template-create-db-001")
	}

	span.SetAttributes(attribute.String("template.id", t.ID))
	s.log.Info().Str("template_id", t.ID).Str("organization_id", t.OrganizationID).Msg("template created")
	return t, nil
}

// Get retrieves a template by ID.
func (s *DefaultService) Get(ctx context.Context, id string) (*Template, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.classify(ctx, err, "failed to get template", "template-get-001", map[string]any{"template_id": id})
	}
	return t, nil
}

// Update applies a partial update and re-validates the resulting template.
func (s *DefaultService) Update(ctx context.Context, id string, params UpdateParams) (*Template, error) {
	ctx, span := s.tracer.Start(ctx, "template.Update", trace.WithAttributes(attribute.String("template.id", id)))
	defer span.End()

	updated, err := s.repo.Update(ctx, id, func(t *Template) error {
		if params.ExpectedVersion != nil && *params.ExpectedVersion != t.Version {
			return &VersionConflictError{Expected: *params.ExpectedVersion, Current: t.Version}
		}
		params.apply(t)
		if err := Validate(t); err != nil {
			return err
		}
		t.touch(s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to update template", "template-update-001")
	}
	return updated, nil
}

// Delete removes a template. Deleting an unknown id succeeds.
func (s *DefaultService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.classify(ctx, err, "failed to delete template", "template-delete-001", map[string]any{"template_id": id})
	}
	return nil
}

// List retrieves templates matching the filter.
func (s *DefaultService) List(ctx context.Context, filter *Filter) ([]*Template, int64, error) {
	if filter == nil {
		filter = &Filter{}
	}
	templates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, s.classify(ctx, err, "failed to list templates", "template-list-001", nil)
	}
	return templates, total, nil
}

func (s *DefaultService) fail(ctx context.Context, span trace.Span, err error, message, code string) error {
	classified := s.classify(ctx, err, message, code, nil)
	if classified.GetErrorType() == platformerrors.ErrorTypeInternal || classified.GetErrorType() == platformerrors.ErrorTypeDatabaseError {
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
	}
	return classified
}

func (s *DefaultService) classify(ctx context.Context, err error, message, code string, fields map[string]any) *platformerrors.PlatformError {
	var (
		validationErr *report.ValidationError
		conflictErr   *VersionConflictError
		platformErr   *platformerrors.PlatformError
	)
	if fields == nil {
		fields = map[string]any{}
	}

	switch {
	case errors.As(err, &validationErr):
		fields["fields"] = validationErr.Fields()
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, err, code, fields)
	case errors.As(err, &conflictErr):
		fields["expected_version"] = conflictErr.Expected
		fields["current_version"] = conflictErr.Current
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, message, err, code, fields)
	case errors.As(err, &platformErr):
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, message)
	case errors.Is(err, ErrNotFound):
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, message, err, code, fields)
	default:
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, message, err, code, fields)
	}
}

func (p UpdateParams) apply(t *Template) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Fields != nil {
		t.Fields = cloneFields(*p.Fields)
	}
	if p.Structure != nil {
		t.Structure = *p.Structure
		t.Structure.Sections = append([]Section{}, p.Structure.Sections...)
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
}
