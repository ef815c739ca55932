package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Reconciler errors.
var (
	ErrNoDrag          = errors.New("no drag gesture in progress")
	ErrUnknownQuestion = errors.New("unknown question id")
	ErrCommitInFlight  = errors.New("a reorder commit is already in flight")
)

// ReorderAPI is the slice of the API client the reconciler needs.
type ReorderAPI interface {
	ReorderQuestions(ctx context.Context, orderedIDs []string) ([]Question, error)
}

// Reconciler drives a drag-and-drop reorder gesture over the visible
// question list: it applies the new sequence optimistically, commits it to
// the server, and rolls back to the pre-drag snapshot when the commit fails.
// Only one commit may be in flight at a time; a drop attempted while a
// commit is pending fails fast with ErrCommitInFlight.
type Reconciler struct {
	api ReorderAPI
	log zerolog.Logger

	mu         sync.Mutex
	questions  []Question
	snapshot   []Question
	dragID     string
	dragging   bool
	committing bool
}

// NewReconciler creates a Reconciler over an initial visible list.
func NewReconciler(api ReorderAPI, log zerolog.Logger, initial []Question) *Reconciler {
	return &Reconciler{
		api:       api,
		log:       log.With().Str("component", "reorder_reconciler").Logger(),
		questions: append([]Question(nil), initial...),
	}
}

// Questions returns a copy of the current visible list.
func (r *Reconciler) Questions() []Question {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Question(nil), r.questions...)
}

// SetQuestions replaces the visible list, e.g. after an external refresh.
// Ignored while a commit is pending so a stale fetch cannot clobber the
// rollback snapshot.
func (r *Reconciler) SetQuestions(questions []Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committing {
		return
	}
	r.questions = append([]Question(nil), questions...)
}

// BeginDrag starts a drag gesture on the given question.
func (r *Reconciler) BeginDrag(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if indexOf(r.questions, id) < 0 {
		return ErrUnknownQuestion
	}
	r.dragID = id
	r.dragging = true
	return nil
}

// CancelDrag abandons the gesture without touching the visible list.
func (r *Reconciler) CancelDrag() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dragging = false
	r.dragID = ""
}

// Drop completes the gesture over the target question: the dragged item is
// reinserted at the target's position, the new sequence is shown
// immediately, then committed. On commit failure the pre-drag list is
// restored and the error returned. Dropping on the drag origin cancels the
// gesture. The returned slice is the visible list after reconciliation.
func (r *Reconciler) Drop(ctx context.Context, targetID string) ([]Question, error) {
	r.mu.Lock()

	if !r.dragging {
		r.mu.Unlock()
		return nil, ErrNoDrag
	}
	if r.committing {
		r.mu.Unlock()
		return nil, ErrCommitInFlight
	}

	dragID := r.dragID
	r.dragging = false
	r.dragID = ""

	if targetID == dragID {
		visible := append([]Question(nil), r.questions...)
		r.mu.Unlock()
		return visible, nil
	}

	from := indexOf(r.questions, dragID)
	to := indexOf(r.questions, targetID)
	if from < 0 || to < 0 {
		r.mu.Unlock()
		return nil, ErrUnknownQuestion
	}

	// Optimistic update: show the new sequence before the server confirms,
	// keeping the prior list for rollback.
	r.snapshot = append([]Question(nil), r.questions...)
	r.questions = reinsert(r.questions, from, to)
	r.committing = true

	orderedIDs := make([]string, len(r.questions))
	for i, q := range r.questions {
		orderedIDs[i] = q.ID
	}
	r.mu.Unlock()

	confirmed, err := r.api.ReorderQuestions(ctx, orderedIDs)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.committing = false

	if err != nil {
		r.questions = r.snapshot
		r.snapshot = nil
		r.log.Warn().Err(err).Str("question_id", dragID).Msg("reorder commit failed, rolled back")
		return append([]Question(nil), r.questions...), fmt.Errorf("commit reorder: %w", err)
	}

	// Prefer the server's view when it sent back a recognizable list;
	// otherwise keep the optimistic one.
	if len(confirmed) > 0 {
		r.questions = append([]Question(nil), confirmed...)
	}
	r.snapshot = nil
	return append([]Question(nil), r.questions...), nil
}

// reinsert removes the item at from and reinserts it at to, then renumbers
// every order to match array position.
func reinsert(questions []Question, from, to int) []Question {
	out := make([]Question, 0, len(questions))
	out = append(out, questions[:from]...)
	out = append(out, questions[from+1:]...)

	moved := questions[from]
	out = append(out[:to], append([]Question{moved}, out[to:]...)...)

	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

func indexOf(questions []Question, id string) int {
	for i, q := range questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}
