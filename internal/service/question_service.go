package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/introly/introly-backend/internal/config"
	"github.com/introly/introly-backend/internal/model"
	"github.com/introly/introly-backend/internal/store"
)

// ErrValidation is returned when a mutation carries no usable content
// (blank text/category on create, empty id sequence on reorder).
var ErrValidation = errors.New("validation failed")

// QuestionEvent is published on the tenant's Redis channel after every
// successful mutation. The WebSocket change stream forwards it verbatim.
type QuestionEvent struct {
	Event      string `json:"event"`
	Action     string `json:"action"`
	TenantID   string `json:"tenant_id"`
	QuestionID int64  `json:"question_id,omitempty"`
}

// QuestionService handles question business logic on top of a QuestionStore.
// The Redis client is optional; when nil, list caching and change events are
// disabled and every call goes straight to the store.
type QuestionService struct {
	store    store.QuestionStore
	rdb      *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(qs store.QuestionStore, rdb *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store:    qs,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		log:      log.With().Str("component", "question_service").Logger(),
	}
}

// List retrieves the tenant's questions sorted by display order, serving
// from the Redis cache when possible.
func (s *QuestionService) List(ctx context.Context, tenantID string) ([]model.Question, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, config.CacheKey.QuestionListKey(tenantID)).Bytes()
		if err == nil {
			var cached []model.Question
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("question cache read failed")
		}
	}

	questions, err := s.store.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}

	s.fillCache(ctx, tenantID, questions)
	return questions, nil
}

// GetByID retrieves a single question.
func (s *QuestionService) GetByID(ctx context.Context, tenantID string, id int64) (*model.Question, error) {
	return s.store.GetByID(ctx, tenantID, id)
}

// Create validates and persists a new question at the end of the sequence.
func (s *QuestionService) Create(ctx context.Context, tenantID string, req model.CreateQuestionRequest) (*model.Question, error) {
	text := strings.TrimSpace(req.Text)
	category := strings.TrimSpace(req.Category)
	if text == "" || category == "" {
		return nil, ErrValidation
	}

	q := &model.Question{
		TenantID:      tenantID,
		Text:          text,
		Category:      category,
		ApplicableFor: model.DedupeGenders(req.ApplicableFor),
	}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, tenantID, "create", q.ID)
	return q, nil
}

// Update merges only the supplied fields into an existing question.
// ID and display order are never changed here.
func (s *QuestionService) Update(ctx context.Context, tenantID string, id int64, req model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		if text := strings.TrimSpace(*req.Text); text != "" {
			q.Text = text
		}
	}
	if req.Category != nil {
		if category := strings.TrimSpace(*req.Category); category != "" {
			q.Category = category
		}
	}
	if req.ApplicableFor != nil {
		q.ApplicableFor = model.DedupeGenders(*req.ApplicableFor)
	}

	if err := s.store.Update(ctx, q); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, tenantID, "update", q.ID)
	return q, nil
}

// Delete removes a question. Remaining display orders are left untouched.
func (s *QuestionService) Delete(ctx context.Context, tenantID string, id int64) error {
	if err := s.store.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.afterMutation(ctx, tenantID, "delete", id)
	return nil
}

// Reorder renumbers the tenant's questions per the given id sequence and
// returns the re-sorted list. An empty sequence is rejected.
func (s *QuestionService) Reorder(ctx context.Context, tenantID string, orderedIDs []int64) ([]model.Question, error) {
	if len(orderedIDs) == 0 {
		return nil, ErrValidation
	}

	questions, err := s.store.Reorder(ctx, tenantID, orderedIDs)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}

	s.afterMutation(ctx, tenantID, "reorder", 0)
	return questions, nil
}

// afterMutation invalidates the tenant's list cache and publishes a change
// event. Failures are logged, never propagated: the store already committed.
func (s *QuestionService) afterMutation(ctx context.Context, tenantID, action string, questionID int64) {
	if s.rdb == nil {
		return
	}

	if err := s.rdb.Del(ctx, config.CacheKey.QuestionListKey(tenantID)).Err(); err != nil {
		s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("question cache invalidation failed")
	}

	payload, err := json.Marshal(QuestionEvent{
		Event:      "questions_changed",
		Action:     action,
		TenantID:   tenantID,
		QuestionID: questionID,
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.QuestionEventsChannel(tenantID), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("question event publish failed")
	}
}

func (s *QuestionService) fillCache(ctx context.Context, tenantID string, questions []model.Question) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QuestionListKey(tenantID), raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("question cache write failed")
	}
}
