package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFieldAliases(t *testing.T) {
	payload := `[
		{"question_id": 2, "question_text": "Goal?", "displayOrder": 2, "phase": "Goals"},
		{"questionId": "3", "question": "Source?", "sort": "3", "phaseName": "Acquisition"},
		{"id": 1, "body": "Age?", "order": 1, "category": "Demographics"}
	]`

	questions := NormalizeJSON([]byte(payload))
	require.Len(t, questions, 3)

	assert.Equal(t, "1", questions[0].ID)
	assert.Equal(t, "Age?", questions[0].Text)
	assert.Equal(t, "Demographics", questions[0].Category)

	assert.Equal(t, "2", questions[1].ID)
	assert.Equal(t, "Goal?", questions[1].Text)
	assert.Equal(t, "Goals", questions[1].Category)

	assert.Equal(t, "3", questions[2].ID)
	assert.Equal(t, "Source?", questions[2].Text)
	assert.Equal(t, "Acquisition", questions[2].Category)
}

func TestNormalizeAliasPriority(t *testing.T) {
	// A direct "id" outranks "question_id"; "text" outranks "question_text".
	payload := `[{"id": 7, "question_id": 8, "text": "direct", "question_text": "legacy", "order": 1}]`
	questions := NormalizeJSON([]byte(payload))
	require.Len(t, questions, 1)
	assert.Equal(t, "7", questions[0].ID)
	assert.Equal(t, "direct", questions[0].Text)
}

func TestNormalizeWrapperShapes(t *testing.T) {
	item := `{"id": 1, "text": "Age?", "order": 1, "category": "Demographics"}`

	for name, payload := range map[string]string{
		"bare array":          `[` + item + `]`,
		"questions wrapper":   `{"questions": [` + item + `]}`,
		"data envelope":       `{"data": {"questions": [` + item + `]}, "metadata": {}}`,
		"single question":     `{"data": {"question": ` + item + `}}`,
		"doubly nested array": `{"data": [` + item + `]}`,
	} {
		questions := NormalizeJSON([]byte(payload))
		require.Len(t, questions, 1, name)
		assert.Equal(t, "Age?", questions[0].Text, name)
	}
}

func TestNormalizeTotality(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":         `{{{`,
		"null":             `null`,
		"number":           `42`,
		"string":           `"hello"`,
		"empty object":     `{}`,
		"mixed array":      `[1, "two", null, {"id": 3}]`,
		"questions string": `{"questions": "oops"}`,
	} {
		assert.NotPanics(t, func() {
			questions := NormalizeJSON([]byte(payload))
			assert.NotNil(t, questions, name)
		}, name)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	questions := NormalizeJSON([]byte(`[{}]`))
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "", q.ID)
	assert.Equal(t, "", q.Text)
	assert.Equal(t, 0, q.Order)
	assert.Equal(t, "Uncategorized", q.Category)
	assert.Equal(t, []string{GenderAll}, q.ApplicableFor)
}

func TestNormalizeGenderEncodings(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    []string
	}{
		{"array", `[{"applicableFor": ["Male", "Female"]}]`, []string{GenderMale, GenderFemale}},
		{"json string", `[{"applicable_for": "[\"Female\"]"}]`, []string{GenderFemale}},
		{"comma string", `[{"applicableFor": "male, female, non-binary"}]`, []string{GenderMale, GenderFemale, GenderNonBinary}},
		{"single value", `[{"applicableFor": "female"}]`, []string{GenderFemale}},
		{"duplicates collapse", `[{"applicableFor": ["Male", "male", "MALE"]}]`, []string{GenderMale}},
		{"unrecognized defaults", `[{"applicableFor": ["Martian"]}]`, []string{GenderAll}},
		{"numeric garbage defaults", `[{"applicableFor": 17}]`, []string{GenderAll}},
		{"missing defaults", `[{"text": "Age?"}]`, []string{GenderAll}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			questions := NormalizeJSON([]byte(tc.payload))
			require.Len(t, questions, 1)
			assert.Equal(t, tc.want, questions[0].ApplicableFor)
		})
	}
}

func TestNormalizeGenderSubstringRules(t *testing.T) {
	// "female" wins over "male" even though both substrings match.
	assert.Equal(t, GenderFemale, NormalizeGender("Female-identifying"))
	assert.Equal(t, GenderMale, NormalizeGender("male only"))
	assert.Equal(t, GenderNonBinary, NormalizeGender("nonbinary"))
	assert.Equal(t, GenderAll, NormalizeGender("ALL"))
	assert.Equal(t, GenderAll, NormalizeGender(""))
	assert.Equal(t, GenderNonBinary, NormalizeGender("Non-binary"))
}

func TestNormalizeSorting(t *testing.T) {
	payload := `[
		{"id": "b", "text": "second", "order": 2},
		{"id": "c", "text": "tie-later", "order": 1},
		{"id": "a", "text": "tie-first", "order": 1}
	]`

	questions := NormalizeJSON([]byte(payload))
	require.Len(t, questions, 3)
	assert.Equal(t, "a", questions[0].ID)
	assert.Equal(t, "c", questions[1].ID)
	assert.Equal(t, "b", questions[2].ID)
}

func TestNormalizeIdempotence(t *testing.T) {
	payloads := []string{
		`[{"question_id": 2, "question_text": "Goal?", "displayOrder": 5, "phase": "Goals", "applicable_for": "male,female"}]`,
		`{"questions": [{"id": 1, "body": "Age?"}, {"questionId": "9", "sort": "4"}]}`,
		`{"data": {"questions": []}}`,
	}

	for _, payload := range payloads {
		once := NormalizeJSON([]byte(payload))

		raw, err := json.Marshal(once)
		require.NoError(t, err)
		twice := NormalizeJSON(raw)

		assert.Equal(t, once, twice)
	}
}
