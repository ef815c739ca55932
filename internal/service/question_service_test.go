package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/introly/introly-backend/internal/model"
	"github.com/introly/introly-backend/internal/store"
)

type QuestionServiceSuite struct {
	suite.Suite
	svc *QuestionService
	ctx context.Context
}

func (s *QuestionServiceSuite) SetupTest() {
	// nil Redis client: caching and change events are disabled.
	s.svc = NewQuestionService(store.NewMemoryQuestionStore(), nil, time.Minute, zerolog.Nop())
	s.ctx = context.Background()
}

func TestQuestionServiceSuite(t *testing.T) {
	suite.Run(t, new(QuestionServiceSuite))
}

func (s *QuestionServiceSuite) create(text, category string, genders ...string) *model.Question {
	q, err := s.svc.Create(s.ctx, "t1", model.CreateQuestionRequest{
		Text:          text,
		Category:      category,
		ApplicableFor: genders,
	})
	s.Require().NoError(err)
	return q
}

func (s *QuestionServiceSuite) TestCreate() {
	s.Run("assigns order max+1", func() {
		q1 := s.create("Age?", "Demographics")
		q2 := s.create("Goal?", "Goals")
		s.Equal(1, q1.DisplayOrder)
		s.Equal(2, q2.DisplayOrder)
	})

	s.Run("rejects whitespace-only text", func() {
		_, err := s.svc.Create(s.ctx, "t1", model.CreateQuestionRequest{Text: "   ", Category: "Goals"})
		s.Require().ErrorIs(err, ErrValidation)
	})

	s.Run("rejects whitespace-only category", func() {
		_, err := s.svc.Create(s.ctx, "t1", model.CreateQuestionRequest{Text: "Age?", Category: "\t"})
		s.Require().ErrorIs(err, ErrValidation)
	})

	s.Run("deduplicates gender tags", func() {
		q := s.create("Pregnant?", "Health", "Female", "Female", "Non-binary")
		s.Equal([]model.Gender{model.GenderFemale, model.GenderNonBinary}, q.ApplicableFor)
	})
}

func (s *QuestionServiceSuite) TestUpdateMergesOnlySuppliedFields() {
	q := s.create("Age?", "Demographics", "All Genders")

	newText := "How old are you?"
	updated, err := s.svc.Update(s.ctx, "t1", q.ID, model.UpdateQuestionRequest{Text: &newText})
	s.Require().NoError(err)

	s.Equal("How old are you?", updated.Text)
	s.Equal("Demographics", updated.Category)
	s.Equal([]model.Gender{model.GenderAll}, updated.ApplicableFor)
	s.Equal(q.ID, updated.ID)
	s.Equal(q.DisplayOrder, updated.DisplayOrder)

	s.Run("unknown id fails with ErrQuestionNotFound", func() {
		_, err := s.svc.Update(s.ctx, "t1", 9999, model.UpdateQuestionRequest{Text: &newText})
		s.Require().ErrorIs(err, store.ErrQuestionNotFound)
	})

	s.Run("replacing genders dedupes", func() {
		genders := []string{"Male", "Male"}
		updated, err := s.svc.Update(s.ctx, "t1", q.ID, model.UpdateQuestionRequest{ApplicableFor: &genders})
		s.Require().NoError(err)
		s.Equal([]model.Gender{model.GenderMale}, updated.ApplicableFor)
	})
}

func (s *QuestionServiceSuite) TestDelete() {
	q := s.create("Age?", "Demographics")

	s.Require().NoError(s.svc.Delete(s.ctx, "t1", q.ID))
	s.Require().ErrorIs(s.svc.Delete(s.ctx, "t1", q.ID), store.ErrQuestionNotFound)

	questions, err := s.svc.List(s.ctx, "t1")
	s.Require().NoError(err)
	s.Empty(questions)
}

func (s *QuestionServiceSuite) TestReorder() {
	q1 := s.create("First", "Other")
	q2 := s.create("Second", "Other")
	q3 := s.create("Third", "Other")

	s.Run("empty sequence is a validation error", func() {
		_, err := s.svc.Reorder(s.ctx, "t1", nil)
		s.Require().ErrorIs(err, ErrValidation)
	})

	s.Run("id at position i receives order i+1", func() {
		questions, err := s.svc.Reorder(s.ctx, "t1", []int64{q3.ID, q1.ID, q2.ID})
		s.Require().NoError(err)
		s.Require().Len(questions, 3)
		s.Equal(q3.ID, questions[0].ID)
		s.Equal(q1.ID, questions[1].ID)
		s.Equal(q2.ID, questions[2].ID)
		for i, q := range questions {
			s.Equal(i+1, q.DisplayOrder)
		}
	})
}

func (s *QuestionServiceSuite) TestListIsSortedAndNeverNil() {
	questions, err := s.svc.List(s.ctx, "empty-tenant")
	s.Require().NoError(err)
	s.NotNil(questions)
	s.Empty(questions)

	s.create("First", "Other")
	s.create("Second", "Other")
	questions, err = s.svc.List(s.ctx, "t1")
	s.Require().NoError(err)
	s.Require().Len(questions, 2)
	s.Less(questions[0].DisplayOrder, questions[1].DisplayOrder)
}
