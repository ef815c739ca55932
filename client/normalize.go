package client

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Canonical gender tags.
const (
	GenderMale      = "Male"
	GenderFemale    = "Female"
	GenderNonBinary = "Non-binary"
	GenderAll       = "All Genders"
)

var canonicalGenders = []string{GenderMale, GenderFemale, GenderNonBinary, GenderAll}

// Alias tables: candidate field names per logical attribute, resolved by
// first match. Historical API revisions used every one of these.
var (
	idAliases       = []string{"id", "question_id", "questionId"}
	textAliases     = []string{"text", "question_text", "questionText", "question", "body"}
	orderAliases    = []string{"order", "displayOrder", "sort"}
	categoryAliases = []string{"category", "phase", "phaseName"}
	genderAliases   = []string{"applicableFor", "applicable_for", "applicable_genders", "genders", "gender"}
)

// NormalizeJSON decodes raw JSON and normalizes it. Malformed JSON yields an
// empty list, never an error.
func NormalizeJSON(data []byte) []Question {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return []Question{}
	}
	return Normalize(raw)
}

// Normalize converts an arbitrary decoded JSON value into the canonical
// ordered question list. It is total: any unrecognizable field falls back to
// a default instead of failing, and the result is sorted by order ascending
// with ties broken by id.
func Normalize(raw interface{}) []Question {
	items := extractItems(raw)

	questions := make([]Question, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		questions = append(questions, normalizeItem(obj))
	}

	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		return questions[i].ID < questions[j].ID
	})
	return questions
}

// extractItems locates the raw question array: a direct array, a "questions"
// property, a single "question" object, or any of those nested under the
// server's "data" envelope.
func extractItems(raw interface{}) []interface{} {
	switch v := raw.(type) {
	case []interface{}:
		return v
	case map[string]interface{}:
		if qs, ok := v["questions"]; ok {
			if arr, ok := qs.([]interface{}); ok {
				return arr
			}
		}
		if q, ok := v["question"]; ok {
			if obj, ok := q.(map[string]interface{}); ok {
				return []interface{}{obj}
			}
		}
		if d, ok := v["data"]; ok {
			return extractItems(d)
		}
	}
	return nil
}

func normalizeItem(obj map[string]interface{}) Question {
	return Question{
		ID:            resolveString(obj, idAliases, ""),
		Text:          resolveString(obj, textAliases, ""),
		Category:      resolveCategory(obj),
		ApplicableFor: resolveGenders(obj),
		Order:         resolveOrder(obj),
	}
}

func resolveCategory(obj map[string]interface{}) string {
	if c := resolveString(obj, categoryAliases, ""); strings.TrimSpace(c) != "" {
		return c
	}
	return "Uncategorized"
}

// resolveString returns the first alias whose value coerces to a non-empty
// string. Numbers are formatted without a trailing ".0".
func resolveString(obj map[string]interface{}, aliases []string, fallback string) string {
	for _, key := range aliases {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return formatNumber(t)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return fallback
}

func resolveOrder(obj map[string]interface{}) int {
	for _, key := range orderAliases {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return 0
			}
			return int(t)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return int(f)
			}
		}
	}
	return 0
}

// resolveGenders handles every historical applicable-gender encoding: a JSON
// array, a JSON-array-in-a-string, a comma-separated string, or a single
// value. Every failure path falls back to All Genders.
func resolveGenders(obj map[string]interface{}) []string {
	for _, key := range genderAliases {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		if tags := normalizeGenderValue(v); len(tags) > 0 {
			return tags
		}
	}
	return []string{GenderAll}
}

func normalizeGenderValue(v interface{}) []string {
	var rawTags []string

	switch t := v.(type) {
	case []interface{}:
		for _, entry := range t {
			rawTags = append(rawTags, fmt.Sprintf("%v", entry))
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		var parsed []interface{}
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			for _, entry := range parsed {
				rawTags = append(rawTags, fmt.Sprintf("%v", entry))
			}
		} else if strings.Contains(s, ",") {
			rawTags = strings.Split(s, ",")
		} else {
			rawTags = []string{s}
		}
	default:
		return nil
	}

	tags := make([]string, 0, len(rawTags))
	seen := make(map[string]struct{}, len(rawTags))
	for _, raw := range rawTags {
		tag := NormalizeGender(raw)
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// NormalizeGender maps one raw value onto a canonical tag. Exact matches
// (case-insensitive) win; otherwise substring rules apply, with "female"
// checked before "male" so "Female" never maps to Male. Anything
// unrecognized becomes All Genders.
func NormalizeGender(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return GenderAll
	}

	for _, canonical := range canonicalGenders {
		if strings.EqualFold(s, canonical) {
			return canonical
		}
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "female"):
		return GenderFemale
	case strings.Contains(lower, "male"):
		return GenderMale
	case strings.Contains(lower, "non"):
		return GenderNonBinary
	case strings.Contains(lower, "all"):
		return GenderAll
	default:
		return GenderAll
	}
}

// formatNumber renders a JSON number the way an id is written: integers
// without a decimal point.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
