package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReorderAPI records reorder calls and answers with a canned result.
type stubReorderAPI struct {
	mu      sync.Mutex
	calls   [][]string
	result  []Question
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubReorderAPI) ReorderQuestions(_ context.Context, orderedIDs []string) ([]Question, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), orderedIDs...))
	s.mu.Unlock()

	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.result, s.err
}

func (s *stubReorderAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func threeQuestions() []Question {
	return []Question{
		{ID: "1", Text: "Age?", Order: 1},
		{ID: "2", Text: "Goal?", Order: 2},
		{ID: "3", Text: "Source?", Order: 3},
	}
}

func ids(questions []Question) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}

func TestReconcilerDropCommits(t *testing.T) {
	api := &stubReorderAPI{}
	r := NewReconciler(api, zerolog.Nop(), threeQuestions())

	require.NoError(t, r.BeginDrag("3"))
	visible, err := r.Drop(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, []string{"3", "1", "2"}, ids(visible))
	for i, q := range visible {
		assert.Equal(t, i+1, q.Order)
	}

	require.Len(t, api.calls, 1)
	assert.Equal(t, []string{"3", "1", "2"}, api.calls[0])
}

func TestReconcilerPrefersServerConfirmedList(t *testing.T) {
	confirmed := []Question{
		{ID: "2", Text: "Goal? (fresh)", Order: 1},
		{ID: "1", Text: "Age?", Order: 2},
		{ID: "3", Text: "Source?", Order: 3},
	}
	api := &stubReorderAPI{result: confirmed}
	r := NewReconciler(api, zerolog.Nop(), threeQuestions())

	require.NoError(t, r.BeginDrag("2"))
	visible, err := r.Drop(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, confirmed, visible)
	assert.Equal(t, confirmed, r.Questions())
}

func TestReconcilerRollsBackOnFailure(t *testing.T) {
	api := &stubReorderAPI{err: errors.New("503 service unavailable")}
	initial := threeQuestions()
	r := NewReconciler(api, zerolog.Nop(), initial)

	require.NoError(t, r.BeginDrag("3"))
	visible, err := r.Drop(context.Background(), "1")
	require.Error(t, err)

	// The pre-drag list is restored verbatim.
	assert.Equal(t, initial, visible)
	assert.Equal(t, initial, r.Questions())

	// The gesture is over; a second drop needs a new drag.
	_, err = r.Drop(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNoDrag)
}

func TestReconcilerDropOnSelfCancels(t *testing.T) {
	api := &stubReorderAPI{}
	initial := threeQuestions()
	r := NewReconciler(api, zerolog.Nop(), initial)

	require.NoError(t, r.BeginDrag("2"))
	visible, err := r.Drop(context.Background(), "2")
	require.NoError(t, err)

	assert.Equal(t, initial, visible)
	assert.Zero(t, api.callCount())
}

func TestReconcilerGuards(t *testing.T) {
	api := &stubReorderAPI{}
	r := NewReconciler(api, zerolog.Nop(), threeQuestions())

	t.Run("drop without a drag", func(t *testing.T) {
		_, err := r.Drop(context.Background(), "1")
		assert.ErrorIs(t, err, ErrNoDrag)
	})

	t.Run("dragging an unknown id", func(t *testing.T) {
		assert.ErrorIs(t, r.BeginDrag("999"), ErrUnknownQuestion)
	})

	t.Run("dropping on an unknown target", func(t *testing.T) {
		require.NoError(t, r.BeginDrag("1"))
		_, err := r.Drop(context.Background(), "999")
		assert.ErrorIs(t, err, ErrUnknownQuestion)
	})

	t.Run("cancel leaves the list untouched", func(t *testing.T) {
		require.NoError(t, r.BeginDrag("1"))
		r.CancelDrag()
		_, err := r.Drop(context.Background(), "2")
		assert.ErrorIs(t, err, ErrNoDrag)
		assert.Zero(t, api.callCount())
	})
}

func TestReconcilerSingleCommitInFlight(t *testing.T) {
	api := &stubReorderAPI{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewReconciler(api, zerolog.Nop(), threeQuestions())

	require.NoError(t, r.BeginDrag("3"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := r.Drop(context.Background(), "1")
		assert.NoError(t, err)
	}()

	<-api.started

	// A second gesture may start, but its drop fails fast while the first
	// commit is pending.
	require.NoError(t, r.BeginDrag("2"))
	_, err := r.Drop(context.Background(), "1")
	assert.ErrorIs(t, err, ErrCommitInFlight)

	// External refreshes are ignored too, so a stale fetch cannot clobber
	// the rollback snapshot.
	r.SetQuestions([]Question{{ID: "stale", Order: 1}})

	close(api.release)
	<-done

	assert.Equal(t, []string{"3", "1", "2"}, ids(r.Questions()))
	assert.Equal(t, 1, api.callCount())
}
