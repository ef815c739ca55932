package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/introly/introly-backend/internal/model"
)

// MemoryQuestionStore keeps each tenant's questions and id counter behind a
// single mutex. Ids are never reused within a process lifetime.
type MemoryQuestionStore struct {
	mu      sync.Mutex
	nextID  int64
	tenants map[string]map[int64]*model.Question
}

// NewMemoryQuestionStore creates an empty in-memory question store.
func NewMemoryQuestionStore() *MemoryQuestionStore {
	return &MemoryQuestionStore{
		nextID:  1,
		tenants: make(map[string]map[int64]*model.Question),
	}
}

func (s *MemoryQuestionStore) List(ctx context.Context, tenantID string) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(tenantID), nil
}

func (s *MemoryQuestionStore) GetByID(ctx context.Context, tenantID string, id int64) (*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.tenants[tenantID][id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *MemoryQuestionStore) Create(ctx context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions, ok := s.tenants[q.TenantID]
	if !ok {
		questions = make(map[int64]*model.Question)
		s.tenants[q.TenantID] = questions
	}

	maxOrder := 0
	for _, existing := range questions {
		if existing.DisplayOrder > maxOrder {
			maxOrder = existing.DisplayOrder
		}
	}

	now := time.Now()
	q.ID = s.nextID
	s.nextID++
	q.DisplayOrder = maxOrder + 1
	q.CreatedAt = now
	q.UpdatedAt = now

	cp := *q
	questions[q.ID] = &cp
	return nil
}

func (s *MemoryQuestionStore) Update(ctx context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tenants[q.TenantID][q.ID]
	if !ok {
		return ErrQuestionNotFound
	}

	existing.Text = q.Text
	existing.Category = q.Category
	existing.ApplicableFor = append([]model.Gender(nil), q.ApplicableFor...)
	existing.UpdatedAt = time.Now()

	*q = *existing
	q.ApplicableFor = append([]model.Gender(nil), existing.ApplicableFor...)
	return nil
}

func (s *MemoryQuestionStore) Delete(ctx context.Context, tenantID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := s.tenants[tenantID]
	if _, ok := questions[id]; !ok {
		return ErrQuestionNotFound
	}
	delete(questions, id)
	return nil
}

func (s *MemoryQuestionStore) Reorder(ctx context.Context, tenantID string, orderedIDs []int64) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := s.listLocked(tenantID)
	current := make([]int64, len(sorted))
	for i, q := range sorted {
		current[i] = q.ID
	}

	now := time.Now()
	for pos, id := range mergeSequence(current, orderedIDs) {
		q := s.tenants[tenantID][id]
		if q.DisplayOrder != pos+1 {
			q.DisplayOrder = pos + 1
			q.UpdatedAt = now
		}
	}

	return s.listLocked(tenantID), nil
}

// listLocked returns copies sorted by display order, ties by id.
// Caller must hold s.mu.
func (s *MemoryQuestionStore) listLocked(tenantID string) []model.Question {
	questions := make([]model.Question, 0, len(s.tenants[tenantID]))
	for _, q := range s.tenants[tenantID] {
		questions = append(questions, *q)
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].DisplayOrder != questions[j].DisplayOrder {
			return questions[i].DisplayOrder < questions[j].DisplayOrder
		}
		return questions[i].ID < questions[j].ID
	})
	return questions
}

// MemoryAdminStore is an in-memory AdminStore keyed by lowercased email.
type MemoryAdminStore struct {
	mu     sync.Mutex
	nextID int64
	admins map[string]*model.Admin
}

// NewMemoryAdminStore creates an empty in-memory admin store.
func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{
		nextID: 1,
		admins: make(map[string]*model.Admin),
	}
}

func (s *MemoryAdminStore) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[strings.ToLower(email)]
	if !ok {
		return nil, ErrAdminNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryAdminStore) Create(ctx context.Context, a *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(a.Email)
	if _, exists := s.admins[key]; exists {
		return ErrEmailTaken
	}

	a.ID = s.nextID
	s.nextID++
	a.CreatedAt = time.Now()

	cp := *a
	s.admins[key] = &cp
	return nil
}
