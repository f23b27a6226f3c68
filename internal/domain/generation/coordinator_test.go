package generation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/generation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
	convrepo "jan-server/services/report-api/internal/infrastructure/repository/conversation"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

type fixture struct {
	conversations *conversation.Service
	bus           *generation.Bus
	coordinator   *generation.Coordinator
	observer      *countingObserver

	mu     sync.Mutex
	events []generation.Event
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes []generation.Outcome
	rejected []string
}

func (o *countingObserver) TurnCompleted(outcome generation.Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *countingObserver) SubmitRejected(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, reason)
}

func newFixture(t *testing.T, classifier intent.Classifier, timeout time.Duration) *fixture {
	t.Helper()

	conversations, err := conversation.NewService(convrepo.NewInMemoryRepository(), zerolog.Nop(), 16)
	require.NoError(t, err)

	f := &fixture{
		conversations: conversations,
		bus:           generation.NewBus(),
		observer:      &countingObserver{},
	}
	f.bus.Subscribe(func(_ context.Context, evt generation.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, evt)
	})
	f.coordinator = generation.NewCoordinator(conversations, classifier, generation.NewMemoryGuard(), f.bus,
		generation.Config{Timeout: timeout}, f.observer, zerolog.Nop())
	return f
}

func (f *fixture) eventTypes() []generation.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]generation.EventType, 0, len(f.events))
	for _, evt := range f.events {
		out = append(out, evt.Type)
	}
	return out
}

func keywordClassifier(t *testing.T) intent.Classifier {
	t.Helper()
	rules, err := intent.DefaultRules()
	require.NoError(t, err)
	return intent.NewKeywordClassifier(rules)
}

func TestSubmitAppendsUserAndAssistantMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, keywordClassifier(t), time.Second)

	turn, err := f.coordinator.Submit(ctx, "conv-1", "Necesito comprar ordenadores")
	require.NoError(t, err)
	assert.False(t, turn.Failed)
	assert.Equal(t, conversation.RoleUser, turn.UserMessage.Role)
	assert.Equal(t, conversation.RoleAssistant, turn.Reply.Role)
	require.NotNil(t, turn.Reply.Metadata)
	assert.Equal(t, 0.85, turn.Reply.Metadata.Confidence)
	assert.Len(t, turn.Reply.Metadata.SuggestedFields, 5)
	require.NotNil(t, turn.Fields)
	assert.Equal(t, report.CategoryTechnology, *turn.Fields.Category)

	assert.Equal(t, []generation.EventType{
		generation.EventMessageAppended,
		generation.EventGeneratingChanged,
		generation.EventMessageAppended,
		generation.EventExtractionPublished,
		generation.EventGeneratingChanged,
	}, f.eventTypes())

	generating, err := f.coordinator.IsGenerating(ctx, "conv-1")
	require.NoError(t, err)
	assert.False(t, generating)

	fields, ok, err := f.conversations.LatestExtraction(ctx, "conv-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "IT Department", *fields.Department)
}

func TestSubmitTurnOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, keywordClassifier(t), time.Second)

	inputs := []string{"ordenador", "limpieza", "obra", "something else"}
	for _, input := range inputs {
		_, err := f.coordinator.Submit(ctx, "conv-1", input)
		require.NoError(t, err)
	}

	messages, err := f.conversations.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2*len(inputs))
	for i, msg := range messages {
		want := conversation.RoleUser
		if i%2 == 1 {
			want = conversation.RoleAssistant
		}
		assert.Equal(t, want, msg.Role)
		if i > 0 {
			assert.False(t, msg.Timestamp.Before(messages[i-1].Timestamp))
		}
	}
}

func TestSubmitRejectsBlankText(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, keywordClassifier(t), time.Second)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.coordinator.Submit(ctx, "conv-1", text)
		require.Error(t, err)
		assert.True(t, errors.Is(err, generation.ErrInvalidInput))
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	}

	messages, err := f.conversations.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Empty(t, f.eventTypes())
}

func TestSubmitIsSingleFlightPerConversation(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	blocking := intent.ClassifierFunc(func(ctx context.Context, text string) (intent.Result, error) {
		close(entered)
		<-unblock
		return intent.Result{Rule: "stub", ResponseText: "reply to " + text, Confidence: 0.5}, nil
	})
	f := newFixture(t, blocking, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := f.coordinator.Submit(ctx, "conv-1", "first")
		done <- err
	}()
	<-entered

	generating, err := f.coordinator.IsGenerating(ctx, "conv-1")
	require.NoError(t, err)
	assert.True(t, generating)

	_, err = f.coordinator.Submit(ctx, "conv-1", "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, generation.ErrAlreadyGenerating))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

	messages, err := f.conversations.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "first", messages[0].Content)

	close(unblock)
	require.NoError(t, <-done)

	messages, err = f.conversations.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "reply to first", messages[1].Content)
	assert.Equal(t, []string{"already_generating"}, f.observer.rejected)
}

func TestSubmitRaceAllowsExactlyOneTurn(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	slow := intent.ClassifierFunc(func(ctx context.Context, text string) (intent.Result, error) {
		<-release
		return intent.Result{ResponseText: "ok"}, nil
	})
	f := newFixture(t, slow, time.Minute)

	const callers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rejected int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.coordinator.Submit(ctx, "conv-1", "hello")
			if errors.Is(err, generation.ErrAlreadyGenerating) {
				mu.Lock()
				rejected++
				mu.Unlock()
			}
		}()
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return rejected == callers-1
	}, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	messages, err := f.conversations.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestSubmitOtherConversationsAreIndependent(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{}, 1)
	unblock := make(chan struct{})
	classifier := intent.ClassifierFunc(func(ctx context.Context, text string) (intent.Result, error) {
		if text == "slow" {
			entered <- struct{}{}
			<-unblock
		}
		return intent.Result{ResponseText: "ok"}, nil
	})
	f := newFixture(t, classifier, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.coordinator.Submit(ctx, "conv-a", "slow")
	}()
	<-entered

	_, err := f.coordinator.Submit(ctx, "conv-b", "fast")
	require.NoError(t, err)

	close(unblock)
	<-done
}

func TestSubmitClassifierErrorAppendsSystemMessage(t *testing.T) {
	ctx := context.Background()
	failing := intent.ClassifierFunc(func(ctx context.Context, text string) (intent.Result, error) {
		return intent.Result{}, errors.New("backend unavailable")
	})
	f := newFixture(t, failing, time.Second)

	turn, err := f.coordinator.Submit(ctx, "conv-1", "ordenador")
	require.NoError(t, err)
	assert.True(t, turn.Failed)
	assert.Equal(t, conversation.RoleSystem, turn.Reply.Role)
	assert.Equal(t, generation.FailureMessage, turn.Reply.Content)

	messages, err := f.conversations.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, conversation.RoleSystem, messages[1].Role)

	generating, err := f.coordinator.IsGenerating(ctx, "conv-1")
	require.NoError(t, err)
	assert.False(t, generating)

	assert.NotContains(t, f.eventTypes(), generation.EventExtractionPublished)
	assert.Equal(t, []generation.Outcome{generation.OutcomeFailure}, f.observer.outcomes)

	_, err = f.coordinator.Submit(ctx, "conv-1", "retry")
	require.NoError(t, err)
}

func TestSubmitTimeoutAndPanicReturnToIdle(t *testing.T) {
	tests := map[string]intent.Classifier{
		"timeout": intent.NewDelayedClassifier(keywordClassifier(t), time.Minute),
		"panic": intent.ClassifierFunc(func(context.Context, string) (intent.Result, error) {
			panic("boom")
		}),
	}

	for name, classifier := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, classifier, 20*time.Millisecond)

			turn, err := f.coordinator.Submit(ctx, "conv-1", "ordenador")
			require.NoError(t, err)
			assert.True(t, turn.Failed)

			generating, err := f.coordinator.IsGenerating(ctx, "conv-1")
			require.NoError(t, err)
			assert.False(t, generating)
		})
	}
}

func TestSubmitCancelledCallerStillEndsIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, intent.NewDelayedClassifier(keywordClassifier(t), time.Minute), time.Minute)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	turn, err := f.coordinator.Submit(ctx, "conv-1", "ordenador")
	require.NoError(t, err)
	assert.True(t, turn.Failed)

	messages, err := f.conversations.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, conversation.RoleSystem, messages[1].Role)

	types := f.eventTypes()
	assert.Equal(t, generation.EventGeneratingChanged, types[len(types)-1])
}
