package model

import (
	"strconv"
	"strings"
	"time"
)

// Gender is one of the four canonical applicability tags a question can carry.
type Gender string

const (
	GenderMale      Gender = "Male"
	GenderFemale    Gender = "Female"
	GenderNonBinary Gender = "Non-binary"
	GenderAll       Gender = "All Genders"
)

// Genders lists the canonical tags in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderAll}

// Question represents a single onboarding prompt delivered by the chatbot.
// DisplayOrder defines the delivery sequence within a tenant; it is dense
// (1..N) after every explicit reorder.
type Question struct {
	ID            int64     `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Text          string    `json:"text"`
	Category      string    `json:"category"`
	ApplicableFor []Gender  `json:"applicable_for"`
	DisplayOrder  int       `json:"order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateQuestionRequest is the payload for creating a question.
type CreateQuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=1,max=2000"`
	Category      string   `json:"category" binding:"required,min=1,max=100"`
	ApplicableFor []string `json:"applicable_for" binding:"omitempty,dive,oneof=Male Female Non-binary 'All Genders'"`
}

// UpdateQuestionRequest is the payload for a partial question update.
// Nil fields are left untouched.
type UpdateQuestionRequest struct {
	Text          *string   `json:"text" binding:"omitempty,min=1,max=2000"`
	Category      *string   `json:"category" binding:"omitempty,min=1,max=100"`
	ApplicableFor *[]string `json:"applicable_for" binding:"omitempty,dive,oneof=Male Female Non-binary 'All Genders'"`
}

// ReorderQuestionsRequest is the payload for replacing the delivery sequence.
// Clients send either a flat ordered_ids array or a questions array whose
// entries carry the id under one of several historical field names.
type ReorderQuestionsRequest struct {
	OrderedIDs []FlexibleID         `json:"ordered_ids"`
	Questions  []ReorderQuestionRef `json:"questions"`
}

// ReorderQuestionRef identifies one question inside a reorder payload.
type ReorderQuestionRef struct {
	ID         FlexibleID `json:"id"`
	QuestionID FlexibleID `json:"question_id"`
	CamelID    FlexibleID `json:"questionId"`
}

// Resolve returns the first non-zero id carried by the reference.
func (r ReorderQuestionRef) Resolve() int64 {
	if r.ID != 0 {
		return int64(r.ID)
	}
	if r.QuestionID != 0 {
		return int64(r.QuestionID)
	}
	return int64(r.CamelID)
}

// FlexibleID is an int64 that also unmarshals from a numeric JSON string.
// Unparseable values decode to zero instead of failing the whole payload.
type FlexibleID int64

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if fl, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			*f = FlexibleID(int64(fl))
			return nil
		}
		*f = 0
		return nil
	}
	*f = FlexibleID(n)
	return nil
}

// DedupeGenders converts raw tag strings to Gender values, dropping
// duplicates while preserving first-seen order.
func DedupeGenders(raw []string) []Gender {
	seen := make(map[Gender]struct{}, len(raw))
	out := make([]Gender, 0, len(raw))
	for _, r := range raw {
		g := Gender(strings.TrimSpace(r))
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
