package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/introly/introly-backend/internal/config"
	"github.com/introly/introly-backend/internal/handler"
	"github.com/introly/introly-backend/internal/model"
	"github.com/introly/introly-backend/internal/router"
	"github.com/introly/introly-backend/internal/service"
	"github.com/introly/introly-backend/internal/store"
	"github.com/introly/introly-backend/internal/validator"
)

const testTenant = "acme"

// envelope mirrors the response wrapper for decoding in assertions.
type envelope struct {
	Data struct {
		Question  *model.Question  `json:"question"`
		Questions []model.Question `json:"questions"`
	} `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type QuestionHandlerSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func (s *QuestionHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	cfg := &config.Config{
		GinMode:    gin.TestMode,
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}

	authService := service.NewAuthService(cfg)
	questionService := service.NewQuestionService(store.NewMemoryQuestionStore(), nil, time.Minute, zerolog.Nop())

	adminStore := store.NewMemoryAdminStore()
	hash, err := authService.HashPassword("password123")
	s.Require().NoError(err)
	admin := &model.Admin{TenantID: testTenant, Name: "Ops", Email: "ops@acme.test", PasswordHash: hash}
	s.Require().NoError(adminStore.Create(context.Background(), admin))

	s.token, err = authService.GenerateAdminToken(admin.ID, admin.TenantID, admin.Email)
	s.Require().NoError(err)

	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, adminStore),
		Question: handler.NewQuestionHandler(questionService),
		WS:       handler.NewWSHandler(nil, questionService, zerolog.Nop(), nil),
	}
	s.router = router.SetupRouter(authService, handlers, cfg)
}

func TestQuestionHandlerSuite(t *testing.T) {
	suite.Run(t, new(QuestionHandlerSuite))
}

func (s *QuestionHandlerSuite) request(method, path string, payload interface{}, authed bool) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", testTenant)
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *QuestionHandlerSuite) decode(rec *httptest.ResponseRecorder) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func (s *QuestionHandlerSuite) createQuestion(text, category string) model.Question {
	rec := s.request(http.MethodPost, "/api/v1/admin/questions", gin.H{"text": text, "category": category}, true)
	s.Require().Equal(http.StatusCreated, rec.Code)
	env := s.decode(rec)
	s.Require().NotNil(env.Data.Question)
	return *env.Data.Question
}

func (s *QuestionHandlerSuite) TestCreateListReorderScenario() {
	age := s.createQuestion("Age?", "Demographics")
	s.Equal(1, age.DisplayOrder)

	goal := s.createQuestion("Goal?", "Goals")
	s.Equal(2, goal.DisplayOrder)

	rec := s.request(http.MethodPut, "/api/v1/admin/questions/reorder",
		gin.H{"ordered_ids": []int64{goal.ID, age.ID}}, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	env := s.decode(rec)
	s.Require().Len(env.Data.Questions, 2)
	s.Equal(goal.ID, env.Data.Questions[0].ID)
	s.Equal(1, env.Data.Questions[0].DisplayOrder)
	s.Equal(age.ID, env.Data.Questions[1].ID)
	s.Equal(2, env.Data.Questions[1].DisplayOrder)

	rec = s.request(http.MethodGet, "/api/v1/admin/questions", nil, true)
	s.Require().Equal(http.StatusOK, rec.Code)
	env = s.decode(rec)
	s.Require().Len(env.Data.Questions, 2)
	s.Equal("Goal?", env.Data.Questions[0].Text)
	s.Equal("Age?", env.Data.Questions[1].Text)
}

func (s *QuestionHandlerSuite) TestReorderAcceptsQuestionRefShapes() {
	first := s.createQuestion("First", "Other")
	second := s.createQuestion("Second", "Other")

	rec := s.request(http.MethodPut, "/api/v1/admin/questions/reorder",
		gin.H{"questions": []gin.H{
			{"question_id": second.ID},
			{"questionId": first.ID},
		}}, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	env := s.decode(rec)
	s.Require().Len(env.Data.Questions, 2)
	s.Equal(second.ID, env.Data.Questions[0].ID)
	s.Equal(first.ID, env.Data.Questions[1].ID)
}

func (s *QuestionHandlerSuite) TestCreateValidation() {
	rec := s.request(http.MethodPost, "/api/v1/admin/questions", gin.H{"category": "Goals"}, true)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	env := s.decode(rec)
	s.Require().NotNil(env.Error)
	s.Equal("VALIDATION_ERROR", env.Error.Code)
	s.Contains(env.Error.Fields, "text")

	rec = s.request(http.MethodPost, "/api/v1/admin/questions", gin.H{"text": "Age?"}, true)
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	rec = s.request(http.MethodPost, "/api/v1/admin/questions",
		gin.H{"text": "Age?", "category": "Demographics", "applicable_for": []string{"Martian"}}, true)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
}

func (s *QuestionHandlerSuite) TestUpdate() {
	q := s.createQuestion("Age?", "Demographics")

	rec := s.request(http.MethodPut, "/api/v1/admin/questions/1",
		gin.H{"text": "How old are you?"}, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	env := s.decode(rec)
	s.Require().NotNil(env.Data.Question)
	s.Equal("How old are you?", env.Data.Question.Text)
	s.Equal(q.Category, env.Data.Question.Category)

	s.Run("unknown id returns 404", func() {
		rec := s.request(http.MethodPut, "/api/v1/admin/questions/9999", gin.H{"text": "x"}, true)
		s.Require().Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed id returns 400", func() {
		rec := s.request(http.MethodPut, "/api/v1/admin/questions/not-a-number", gin.H{"text": "x"}, true)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *QuestionHandlerSuite) TestDelete() {
	s.createQuestion("Age?", "Demographics")

	rec := s.request(http.MethodDelete, "/api/v1/admin/questions/1", nil, true)
	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Empty(rec.Body.Bytes())

	s.Run("second delete returns 404", func() {
		rec := s.request(http.MethodDelete, "/api/v1/admin/questions/1", nil, true)
		s.Require().Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *QuestionHandlerSuite) TestReorderValidation() {
	rec := s.request(http.MethodPut, "/api/v1/admin/questions/reorder", gin.H{"ordered_ids": "nope"}, true)
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	rec = s.request(http.MethodPut, "/api/v1/admin/questions/reorder", gin.H{"ordered_ids": []int64{}}, true)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	env := s.decode(rec)
	s.Require().NotNil(env.Error)
	s.Contains(env.Error.Fields, "ordered_ids")
}

func (s *QuestionHandlerSuite) TestAuthGuards() {
	s.Run("admin routes require a token", func() {
		rec := s.request(http.MethodGet, "/api/v1/admin/questions", nil, false)
		s.Require().Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("tenant header is required", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/questions", nil)
		req.Header.Set("Authorization", "Bearer "+s.token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("public feed needs no token", func() {
		s.createQuestion("Age?", "Demographics")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/questions", nil)
		req.Header.Set("X-Tenant-ID", testTenant)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Header().Get("Cache-Control"), "max-age=30")
	})
}

func (s *QuestionHandlerSuite) TestAdminLogin() {
	rec := s.request(http.MethodPost, "/api/v1/auth/admin/login",
		gin.H{"email": "ops@acme.test", "password": "password123"}, false)
	s.Require().Equal(http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			Token string       `json:"token"`
			Admin *model.Admin `json:"admin"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	s.NotEmpty(env.Data.Token)
	s.Require().NotNil(env.Data.Admin)
	s.Equal(testTenant, env.Data.Admin.TenantID)

	s.Run("wrong password returns 401", func() {
		rec := s.request(http.MethodPost, "/api/v1/auth/admin/login",
			gin.H{"email": "ops@acme.test", "password": "wrong"}, false)
		s.Require().Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("unknown email returns 401", func() {
		rec := s.request(http.MethodPost, "/api/v1/auth/admin/login",
			gin.H{"email": "ghost@acme.test", "password": "password123"}, false)
		s.Require().Equal(http.StatusUnauthorized, rec.Code)
	})
}
