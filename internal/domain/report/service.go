package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jan-server/services/report-api/internal/domain/principal"
	"jan-server/services/report-api/internal/utils/idgen"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// Service describes the business logic surface for reports. It validates
// data and status transitions; authorization is the caller's job.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Report, error)
	Get(ctx context.Context, id string) (*Report, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Report, error)
	UpdateStatus(ctx context.Context, id string, newStatus Status, expectedVersion *int) (*Report, error)
	SubmitForReview(ctx context.Context, id string, expectedVersion *int) (*Report, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*Report, error)
	List(ctx context.Context, filter *Filter) ([]*Report, int64, error)
}

// CreateParams carries the form data of a report being saved. Empty author
// and organization ids are taken from the principal in the context.
type CreateParams struct {
	AuthorID        string
	OrganizationID  string
	ReferenceNumber string
	Title           string
	Content         string
	Category        Category
	Priority        Priority
	Department      string
	EstimatedBudget *decimal.Decimal
	Tags            []string
	RelatedReports  []string
	Attachments     []Attachment
}

// UpdateParams carries a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	ReferenceNumber *string
	Title           *string
	Content         *string
	Category        *Category
	Priority        *Priority
	Department      *string
	EstimatedBudget *decimal.Decimal
	Tags            *[]string
	RelatedReports  *[]string
	Attachments     *[]Attachment
	ExpectedVersion *int
}

// Observer is notified after successful writes.
type Observer interface {
	ReportCreated(r *Report)
	StatusChanged(r *Report, from Status)
}

type nopObserver struct{}

func (nopObserver) ReportCreated(*Report)         {}
func (nopObserver) StatusChanged(*Report, Status) {}

// Option customizes the service.
type Option func(*DefaultService)

// WithObserver registers an observer for successful writes.
func WithObserver(o Observer) Option {
	return func(s *DefaultService) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *DefaultService) {
		if now != nil {
			s.now = now
		}
	}
}

// DefaultService implements the Service interface.
type DefaultService struct {
	repo     Repository
	log      zerolog.Logger
	tracer   trace.Tracer
	observer Observer
	now      func() time.Time
}

// NewService creates a new report service.
func NewService(repo Repository, log zerolog.Logger, opts ...Option) *DefaultService {
	s := &DefaultService{
		repo:     repo,
		log:      log.With().Str("component", "report-service").Logger(),
		tracer:   otel.Tracer("report-api/report"),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates params and stores a new draft at version 1.
func (s *DefaultService) Create(ctx context.Context, params CreateParams) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "report.Create")
	defer span.End()

	category := params.Category
	if category == "" {
		category = CategoryOther
	}
	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	author, organization := strings.TrimSpace(params.AuthorID), strings.TrimSpace(params.OrganizationID)
	if caller, ok := principal.FromContext(ctx); ok {
		if author == "" {
			author = caller.Subject
		}
		if organization == "" {
			organization = caller.OrganizationID
		}
	}

	now := s.now().UTC()
	r := &Report{
		ID:              idgen.NewReportID(),
		ReferenceNumber: strings.TrimSpace(params.ReferenceNumber),
		Title:           strings.TrimSpace(params.Title),
		Content:         params.Content,
		AuthorID:        author,
		OrganizationID:  organization,
		Status:          StatusDraft,
		Metadata: Metadata{
			Category:        category,
			Priority:        priority,
			Department:      strings.TrimSpace(params.Department),
			EstimatedBudget: params.EstimatedBudget,
			Tags:            normalizeTags(params.Tags),
			RelatedReports:  nonNil(params.RelatedReports),
			Attachments:     nonNilAttachments(params.Attachments),
		},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	if err := Validate(r); err != nil {
		return nil, s.fail(ctx, span, err, "invalid report", "report-create-validate-001")
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, s.fail(ctx, span, err, "failed to create report", "report-create-db-001")
	}

	span.SetAttributes(attribute.String("report.id", r.ID))
	s.observer.ReportCreated(r)
	s.log.Info().Str("report_id", r.ID).Str("reference_number", r.ReferenceNumber).Msg("report created")
	return r, nil
}

// Get retrieves a report by ID.
func (s *DefaultService) Get(ctx context.Context, id string) (*Report, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.classify(ctx, err, "failed to get report", "report-get-001", map[string]any{"report_id": id})
	}
	return r, nil
}

// Update applies a partial update and re-validates the resulting report.
func (s *DefaultService) Update(ctx context.Context, id string, params UpdateParams) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "report.Update", trace.WithAttributes(attribute.String("report.id", id)))
	defer span.End()

	updated, err := s.repo.Update(ctx, id, func(r *Report) error {
		if err := checkVersion(r, params.ExpectedVersion); err != nil {
			return err
		}
		params.apply(r)
		if err := Validate(r); err != nil {
			return err
		}
		r.touch(s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to update report", "report-update-001")
	}
	return updated, nil
}

// UpdateStatus moves a report along the status graph.
func (s *DefaultService) UpdateStatus(ctx context.Context, id string, newStatus Status, expectedVersion *int) (*Report, error) {
	return s.transition(ctx, id, newStatus, expectedVersion, "report.UpdateStatus")
}

// SubmitForReview moves a report to in_review and marks the review pending.
func (s *DefaultService) SubmitForReview(ctx context.Context, id string, expectedVersion *int) (*Report, error) {
	return s.transition(ctx, id, StatusInReview, expectedVersion, "report.SubmitForReview")
}

func (s *DefaultService) transition(ctx context.Context, id string, newStatus Status, expectedVersion *int, spanName string) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("report.id", id),
		attribute.String("report.status.to", newStatus.String()),
	))
	defer span.End()

	var from Status
	updated, err := s.repo.Update(ctx, id, func(r *Report) error {
		if err := checkVersion(r, expectedVersion); err != nil {
			return err
		}
		next, err := r.Status.TransitionTo(newStatus)
		if err != nil {
			return err
		}
		from = r.Status
		r.Status = next
		if review, ok := reviewStatusFor(next); ok {
			r.ReviewStatus = review
		}
		r.touch(s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to change report status", "report-status-001")
	}

	s.observer.StatusChanged(updated, from)
	s.log.Info().
		Str("report_id", id).
		Str("from", from.String()).
		Str("to", updated.Status.String()).
		Int("version", updated.Version).
		Msg("report status changed")
	return updated, nil
}

// Delete removes a report. Deleting an unknown id succeeds.
func (s *DefaultService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.classify(ctx, err, "failed to delete report", "report-delete-001", map[string]any{"report_id": id})
	}
	return nil
}

// Search matches reference number or title, most recent first.
func (s *DefaultService) Search(ctx context.Context, query string) ([]*Report, error) {
	reports, err := s.repo.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, s.classify(ctx, err, "failed to search reports", "report-search-001", nil)
	}
	return reports, nil
}

// List retrieves reports matching the filter.
func (s *DefaultService) List(ctx context.Context, filter *Filter) ([]*Report, int64, error) {
	if filter == nil {
		filter = NewFilter()
	}
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, s.classify(ctx, err, "failed to list reports", "report-list-001", nil)
	}
	return reports, total, nil
}

func (s *DefaultService) fail(ctx context.Context, span trace.Span, err error, message, code string) error {
	classified := s.classify(ctx, err, message, code, nil)
	if classified.GetErrorType() == platformerrors.ErrorTypeInternal || classified.GetErrorType() == platformerrors.ErrorTypeDatabaseError {
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
	}
	return classified
}

// classify maps domain errors onto platform error types.
func (s *DefaultService) classify(ctx context.Context, err error, message, code string, fields map[string]any) *platformerrors.PlatformError {
	var (
		validationErr *ValidationError
		transitionErr *TransitionError
		conflictErr   *VersionConflictError
		platformErr   *platformerrors.PlatformError
	)

	switch {
	case errors.As(err, &validationErr):
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			message, err, code, merge(fields, map[string]any{"fields": validationErr.Fields()}))
	case errors.As(err, &transitionErr):
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidState,
			message, err, code, merge(fields, map[string]any{"current_status": transitionErr.From, "requested_status": transitionErr.To}))
	case errors.As(err, &conflictErr):
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			message, err, code, merge(fields, map[string]any{"expected_version": conflictErr.Expected, "current_version": conflictErr.Current}))
	case errors.As(err, &platformErr):
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, message)
	case errors.Is(err, ErrNotFound):
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, message, err, code, fields)
	default:
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, message, err, code, fields)
	}
}

func checkVersion(r *Report, expected *int) error {
	if expected != nil && *expected != r.Version {
		return &VersionConflictError{Expected: *expected, Current: r.Version}
	}
	return nil
}

func (p UpdateParams) apply(r *Report) {
	if p.ReferenceNumber != nil {
		r.ReferenceNumber = strings.TrimSpace(*p.ReferenceNumber)
	}
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Category != nil {
		r.Metadata.Category = *p.Category
	}
	if p.Priority != nil {
		r.Metadata.Priority = *p.Priority
	}
	if p.Department != nil {
		r.Metadata.Department = strings.TrimSpace(*p.Department)
	}
	if p.EstimatedBudget != nil {
		budget := *p.EstimatedBudget
		r.Metadata.EstimatedBudget = &budget
	}
	if p.Tags != nil {
		r.Metadata.Tags = normalizeTags(*p.Tags)
	}
	if p.RelatedReports != nil {
		r.Metadata.RelatedReports = nonNil(*p.RelatedReports)
	}
	if p.Attachments != nil {
		r.Metadata.Attachments = nonNilAttachments(*p.Attachments)
	}
}

func merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}

func nonNilAttachments(in []Attachment) []Attachment {
	if in == nil {
		return []Attachment{}
	}
	return append([]Attachment(nil), in...)
}
