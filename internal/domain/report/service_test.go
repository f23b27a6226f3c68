package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/domain/principal"
	"jan-server/services/report-api/internal/domain/report"
	reportrepo "jan-server/services/report-api/internal/infrastructure/repository/report"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

type recordingObserver struct {
	mu          sync.Mutex
	created     int
	transitions []string
}

func (o *recordingObserver) ReportCreated(*report.Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created++
}

func (o *recordingObserver) StatusChanged(r *report.Report, from report.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, string(from)+"->"+string(r.Status))
}

func newTestService(t *testing.T, opts ...report.Option) *report.DefaultService {
	t.Helper()
	return report.NewService(reportrepo.NewInMemoryRepository(), zerolog.Nop(), opts...)
}

func createParams() report.CreateParams {
	return report.CreateParams{
		ReferenceNumber: "INF-2025-001",
		Title:           "Server room cooling",
		Content:         "The current cooling unit is at end of life.",
		Department:      "Facility Management",
		Tags:            []string{"infrastructure", " Infrastructure ", "", "cooling"},
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateDefaultsAndVersion(t *testing.T) {
	obs := &recordingObserver{}
	svc := newTestService(t, report.WithObserver(obs))

	r, err := svc.Create(context.Background(), createParams())
	require.NoError(t, err)

	assert.Regexp(t, `^rpt_`, r.ID)
	assert.Equal(t, report.StatusDraft, r.Status)
	assert.Equal(t, 1, r.Version)
	assert.Equal(t, report.CategoryOther, r.Metadata.Category)
	assert.Equal(t, report.PriorityMedium, r.Metadata.Priority)
	assert.Equal(t, []string{"infrastructure", "cooling"}, r.Metadata.Tags)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	assert.Equal(t, 1, obs.created)
}

func TestCreateReportsAllMissingFields(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), report.CreateParams{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	var verr *report.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"referenceNumber", "title", "department", "content"}, verr.Missing)

	list, total, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestStatusLifecycleBumpsVersionByOne(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	svc := newTestService(t, report.WithObserver(obs))

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	r, err = svc.SubmitForReview(ctx, r.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, report.StatusInReview, r.Status)
	assert.Equal(t, report.ReviewStatusPending, r.ReviewStatus)
	assert.Equal(t, 2, r.Version)

	r, err = svc.UpdateStatus(ctx, r.ID, report.StatusRejected, nil)
	require.NoError(t, err)
	assert.Equal(t, report.ReviewStatusRejected, r.ReviewStatus)
	assert.Equal(t, 3, r.Version)

	r, err = svc.SubmitForReview(ctx, r.ID, ptr(3))
	require.NoError(t, err)
	assert.Equal(t, report.ReviewStatusPending, r.ReviewStatus)

	r, err = svc.UpdateStatus(ctx, r.ID, report.StatusApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, report.ReviewStatusApproved, r.ReviewStatus)

	r, err = svc.UpdateStatus(ctx, r.ID, report.StatusPublished, nil)
	require.NoError(t, err)
	assert.Equal(t, report.ReviewStatusApproved, r.ReviewStatus)

	r, err = svc.UpdateStatus(ctx, r.ID, report.StatusArchived, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, r.Version)

	assert.Equal(t, []string{
		"draft->in_review",
		"in_review->rejected",
		"rejected->in_review",
		"in_review->approved",
		"approved->published",
		"published->archived",
	}, obs.transitions)
}

func TestIllegalTransitionLeavesReportUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, r.ID, report.StatusPublished, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrIllegalTransition))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInvalidState))

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, report.StatusDraft, got.Status)
	assert.Equal(t, 1, got.Version)
}

func TestArchivedIsTerminal(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, r.ID, report.StatusArchived, nil)
	require.NoError(t, err)

	for _, s := range report.AllStatuses() {
		_, err := svc.UpdateStatus(ctx, r.ID, s, nil)
		assert.ErrorIs(t, err, report.ErrIllegalTransition, s)
	}
}

func TestVersionConflict(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = svc.SubmitForReview(ctx, r.ID, ptr(5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrVersionConflict))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

	_, err = svc.Update(ctx, r.ID, report.UpdateParams{Title: ptr("New title"), ExpectedVersion: ptr(1)})
	require.NoError(t, err)
}

func TestUpdateValidatesAndBumpsVersion(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, report.WithClock(func() time.Time { return clock }))

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	updated, err := svc.Update(ctx, r.ID, report.UpdateParams{
		Title:    ptr("  Cooling unit replacement "),
		Category: ptr(report.CategoryInfrastructure),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cooling unit replacement", updated.Title)
	assert.Equal(t, report.CategoryInfrastructure, updated.Metadata.Category)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, clock, updated.UpdatedAt)

	_, err = svc.Update(ctx, r.ID, report.UpdateParams{Title: ptr(" ")})
	var verr *report.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title"}, verr.Missing)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
}

func TestUpdatedAtNeverGoesBackwards(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, report.WithClock(func() time.Time { return clock }))

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	clock = clock.Add(-time.Hour)
	updated, err := svc.SubmitForReview(ctx, r.ID, nil)
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(r.UpdatedAt))
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Update(ctx, r.ID, report.UpdateParams{Content: ptr("revised content")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+writers, got.Version)
}

func TestDeleteIsIdempotentAndGetReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	r, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, r.ID))
	require.NoError(t, svc.Delete(ctx, r.ID))
	require.NoError(t, svc.Delete(ctx, "rpt_missing"))

	_, err = svc.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, report.ErrNotFound))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	_, err = svc.UpdateStatus(ctx, r.ID, report.StatusInReview, nil)
	assert.True(t, errors.Is(err, report.ErrNotFound))
}

func TestSearchIsCaseInsensitiveAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, report.WithClock(func() time.Time { return clock }))

	first := createParams()
	first.ReferenceNumber = "INF-2025-100"
	first.Title = "Printer toner supply"
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second := createParams()
	second.ReferenceNumber = "OBR-2025-200"
	second.Title = "Roof repair"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	third := createParams()
	third.ReferenceNumber = "INF-2025-300"
	third.Title = "Network switches"
	_, err = svc.Create(ctx, third)
	require.NoError(t, err)

	got, err := svc.Search(ctx, "inf-2025")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "INF-2025-300", got[0].ReferenceNumber)
	assert.Equal(t, "INF-2025-100", got[1].ReferenceNumber)

	got, err = svc.Search(ctx, "ROOF")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "OBR-2025-200", got[0].ReferenceNumber)

	got, err = svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for i, dept := range []string{"IT Department", "it department", "Public Works"} {
		params := createParams()
		params.Department = dept
		params.ReferenceNumber = []string{"A", "B", "C"}[i]
		_, err := svc.Create(ctx, params)
		require.NoError(t, err)
	}

	got, total, err := svc.List(ctx, report.NewFilter().WithDepartment("IT DEPARTMENT").WithPagination(1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, got, 1)

	got, total, err = svc.List(ctx, report.NewFilter().WithStatus(report.StatusInReview))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

func TestSeedOnlyFillsEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := reportrepo.NewInMemoryRepository()

	n, err := report.Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = report.Seed(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc := report.NewService(repo, zerolog.Nop())
	got, err := svc.Search(ctx, "INF-2024")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "INF-2024-001", got[0].ReferenceNumber)
	for _, r := range got {
		require.NoError(t, report.Validate(r))
	}
}

func TestCreateRecordsAuthorAndOrganization(t *testing.T) {
	svc := newTestService(t)
	ctx := principal.WithContext(context.Background(), principal.Principal{Subject: "user-7", OrganizationID: "org-3"})

	fromCaller, err := svc.Create(ctx, createParams())
	require.NoError(t, err)
	assert.Equal(t, "user-7", fromCaller.AuthorID)
	assert.Equal(t, "org-3", fromCaller.OrganizationID)

	params := createParams()
	params.ReferenceNumber = "INF-2025-002"
	params.AuthorID = "user-9"
	explicit, err := svc.Create(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "user-9", explicit.AuthorID)
	assert.Equal(t, "org-3", explicit.OrganizationID)

	anonymous, err := svc.Create(context.Background(), createParams())
	require.NoError(t, err)
	assert.Empty(t, anonymous.AuthorID)

	mine, total, err := svc.List(ctx, report.NewFilter().WithAuthor("user-7"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, fromCaller.ID, mine[0].ID)

	_, total, err = svc.List(ctx, report.NewFilter().WithOrganization("org-3"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	updated, err := svc.Update(context.Background(), fromCaller.ID, report.UpdateParams{Title: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "user-7", updated.AuthorID)
}
