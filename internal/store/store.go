// Package store owns the authoritative question and admin collections.
// Two implementations exist per interface: a mutex-guarded in-memory store
// used in tests and single-node dev setups, and a pgxpool-backed store for
// production.
package store

import (
	"context"
	"errors"

	"github.com/introly/introly-backend/internal/model"
)

// Sentinel errors returned by store implementations.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrAdminNotFound    = errors.New("admin not found")
	ErrEmailTaken       = errors.New("email already registered")
)

// QuestionStore is the authoritative ordered collection of questions,
// partitioned by tenant.
type QuestionStore interface {
	// List returns the tenant's questions sorted by display order
	// ascending, ties broken by id.
	List(ctx context.Context, tenantID string) ([]model.Question, error)
	// GetByID returns a single question or ErrQuestionNotFound.
	GetByID(ctx context.Context, tenantID string, id int64) (*model.Question, error)
	// Create assigns the next id and display order (max+1) and persists q.
	Create(ctx context.Context, q *model.Question) error
	// Update persists text, category and applicable_for of an existing
	// question. ID and display order are never changed here.
	Update(ctx context.Context, q *model.Question) error
	// Delete removes a question without renumbering the remainder.
	Delete(ctx context.Context, tenantID string, id int64) error
	// Reorder renumbers the tenant's questions densely 1..N: ids in
	// orderedIDs take the leading positions in the given sequence,
	// omitted questions follow in their prior relative order, and ids
	// unknown to the tenant are ignored. Returns the re-sorted list.
	Reorder(ctx context.Context, tenantID string, orderedIDs []int64) ([]model.Question, error)
}

// AdminStore resolves back-office users for authentication.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, a *model.Admin) error
}

// mergeSequence computes the final id sequence of a reorder: requested ids
// first (deduplicated, unknown ids dropped), then the remaining current ids
// in their prior order. current must already be sorted by display order.
func mergeSequence(current, requested []int64) []int64 {
	known := make(map[int64]struct{}, len(current))
	for _, id := range current {
		known[id] = struct{}{}
	}

	final := make([]int64, 0, len(current))
	placed := make(map[int64]struct{}, len(current))
	for _, id := range requested {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := placed[id]; dup {
			continue
		}
		placed[id] = struct{}{}
		final = append(final, id)
	}
	for _, id := range current {
		if _, ok := placed[id]; !ok {
			final = append(final, id)
		}
	}
	return final
}
