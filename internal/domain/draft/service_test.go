package draft_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/draft"
	"jan-server/services/report-api/internal/domain/generation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
	convrepo "jan-server/services/report-api/internal/infrastructure/repository/conversation"
	reportrepo "jan-server/services/report-api/internal/infrastructure/repository/report"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

type harness struct {
	drafts      *draft.Service
	reports     *report.DefaultService
	coordinator *generation.Coordinator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conversations, err := conversation.NewService(convrepo.NewInMemoryRepository(), zerolog.Nop(), 16)
	require.NoError(t, err)
	rules, err := intent.DefaultRules()
	require.NoError(t, err)

	bus := generation.NewBus()
	reports := report.NewService(reportrepo.NewInMemoryRepository(), zerolog.Nop())
	drafts := draft.NewService(reports, zerolog.Nop())
	t.Cleanup(drafts.Attach(bus))

	coordinator := generation.NewCoordinator(conversations, intent.NewKeywordClassifier(rules),
		generation.NewMemoryGuard(), bus, generation.Config{Timeout: time.Second}, nil, zerolog.Nop())

	return &harness{drafts: drafts, reports: reports, coordinator: coordinator}
}

func TestGetReturnsDefaults(t *testing.T) {
	h := newHarness(t)

	sess := h.drafts.Get("conv-1")
	assert.Equal(t, "conv-1", sess.ConversationID)
	assert.Equal(t, report.CategoryOther, sess.Draft.Category)
	assert.Equal(t, report.PriorityMedium, sess.Draft.Priority)
	assert.Empty(t, sess.Touched)
}

func TestTurnPopulatesDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	turn, err := h.coordinator.Submit(ctx, "conv-1", "Necesito comprar ordenadores")
	require.NoError(t, err)

	d := h.drafts.Get("conv-1").Draft
	assert.Equal(t, "Computer Equipment Procurement Report", d.Title)
	assert.Equal(t, report.CategoryTechnology, d.Category)
	assert.Equal(t, "IT Department", d.Department)
	assert.True(t, decimal.NewFromInt(15000).Equal(*d.EstimatedBudget))
	assert.Equal(t, turn.Reply.Content, d.Content)
}

func TestUserEditsSurviveLaterTurns(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.coordinator.Submit(ctx, "conv-1", "ordenador")
	require.NoError(t, err)

	title := "Laptops for the library"
	sess, err := h.drafts.Edit(ctx, "conv-1", draft.Edit{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, []draft.Field{draft.FieldTitle}, sess.Touched)

	_, err = h.coordinator.Submit(ctx, "conv-1", "limpieza")
	require.NoError(t, err)

	d := h.drafts.Get("conv-1").Draft
	assert.Equal(t, title, d.Title)
	assert.Equal(t, "Facility Management", d.Department)
	assert.Equal(t, report.CategoryServices, d.Category)
}

func TestEditedContentIsNotReplaced(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	content := "My own justification."
	_, err := h.drafts.Edit(ctx, "conv-1", draft.Edit{Content: &content})
	require.NoError(t, err)

	_, err = h.coordinator.Submit(ctx, "conv-1", "obra")
	require.NoError(t, err)
	assert.Equal(t, content, h.drafts.Get("conv-1").Draft.Content)
}

func TestEditRejectsInvalidValues(t *testing.T) {
	h := newHarness(t)

	category := report.Category("furniture")
	budget := decimal.NewFromInt(-1)
	_, err := h.drafts.Edit(context.Background(), "conv-1", draft.Edit{Category: &category, EstimatedBudget: &budget})
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrValidation))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	assert.Empty(t, h.drafts.Get("conv-1").Touched)
}

func TestResetClearsTouchedFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	title := "Mine"
	_, err := h.drafts.Edit(ctx, "conv-1", draft.Edit{Title: &title})
	require.NoError(t, err)

	h.drafts.Reset("conv-1")
	sess := h.drafts.Get("conv-1")
	assert.Empty(t, sess.Touched)
	assert.Empty(t, sess.Draft.Title)
}

func TestSaveCreatesDraftReport(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.drafts.Save(ctx, "conv-1")
	var verr *report.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"referenceNumber", "title", "department", "content"}, verr.Missing)

	_, err = h.coordinator.Submit(ctx, "conv-1", "Contratar limpieza")
	require.NoError(t, err)
	ref := "INF-2025-042"
	_, err = h.drafts.Edit(ctx, "conv-1", draft.Edit{ReferenceNumber: &ref})
	require.NoError(t, err)

	created, err := h.drafts.Save(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, report.StatusDraft, created.Status)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, ref, created.ReferenceNumber)
	assert.Equal(t, "Cleaning Services Contract Report", created.Title)
	assert.NotEmpty(t, created.Content)

	assert.Empty(t, h.drafts.Get("conv-1").Draft.ReferenceNumber)

	found, err := h.reports.Search(ctx, "inf-2025-042")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

// blockingSaver holds Create until release is closed.
type blockingSaver struct {
	draft.Saver
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSaver) Create(ctx context.Context, params report.CreateParams) (*report.Report, error) {
	close(s.entered)
	<-s.release
	return s.Saver.Create(ctx, params)
}

func TestSaveKeepsEditsMadeDuringCreate(t *testing.T) {
	ctx := context.Background()
	saver := &blockingSaver{
		Saver:   report.NewService(reportrepo.NewInMemoryRepository(), zerolog.Nop()),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	drafts := draft.NewService(saver, zerolog.Nop())

	ref, title, department, content := "INF-2025-050", "Projector replacement", "IT Department", "Projectors are failing."
	_, err := drafts.Edit(ctx, "conv-1", draft.Edit{
		ReferenceNumber: &ref, Title: &title, Department: &department, Content: &content,
	})
	require.NoError(t, err)

	saved := make(chan error, 1)
	go func() {
		_, err := drafts.Save(ctx, "conv-1")
		saved <- err
	}()
	<-saver.entered

	newTitle := "Projector and screen replacement"
	_, err = drafts.Edit(ctx, "conv-1", draft.Edit{Title: &newTitle})
	require.NoError(t, err)

	close(saver.release)
	require.NoError(t, <-saved)

	sess := drafts.Get("conv-1")
	assert.Equal(t, newTitle, sess.Draft.Title)
	assert.Contains(t, sess.Touched, draft.FieldTitle)
}
