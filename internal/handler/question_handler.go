package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/introly/introly-backend/internal/middleware"
	"github.com/introly/introly-backend/internal/model"
	"github.com/introly/introly-backend/internal/response"
	"github.com/introly/introly-backend/internal/service"
	"github.com/introly/introly-backend/internal/store"
	"github.com/introly/introly-backend/internal/validator"
)

// QuestionHandler handles onboarding question management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/admin/questions
// GET /api/v1/public/questions
// Lists the tenant's questions sorted by display order.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	questions, err := h.questionService.List(c.Request.Context(), tenantID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
// Appends a new question to the tenant's sequence.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
// Merges the supplied fields into an existing question.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
// Removes a question. Remaining display orders are not renumbered.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), tenantID, id); err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderQuestions godoc
// PUT /api/v1/admin/questions/reorder
// Replaces the tenant's delivery sequence. Accepts {ordered_ids:[...]} or
// {questions:[{id|question_id|questionId}...]}.
func (h *QuestionHandler) ReorderQuestions(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req model.ReorderQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	orderedIDs := resolveReorderIDs(req)
	if len(orderedIDs) == 0 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"ordered_ids": "must be a non-empty array of question ids",
		})
		return
	}

	questions, err := h.questionService.Reorder(c.Request.Context(), tenantID, orderedIDs)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// resolveReorderIDs flattens both accepted reorder payload shapes into a
// deduplicated id sequence.
func resolveReorderIDs(req model.ReorderQuestionsRequest) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64

	add := func(id int64) {
		if id == 0 {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, id := range req.OrderedIDs {
		add(int64(id))
	}
	for _, ref := range req.Questions {
		add(ref.Resolve())
	}
	return ids
}
