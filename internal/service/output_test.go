package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"task_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeOutput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"label":"work"}`, `{"label":"work"}`},
		{"json fence", "```json\n{\"label\":\"work\"}\n```", `{"label":"work"}`},
		{"plain fence", "```\n{\"label\":\"work\"}\n```", `{"label":"work"}`},
		{"inline fence", "```{\"label\":\"work\"}```", `{"label":"work"}`},
		{"prose around", "Sure! Here it is: {\"label\":\"work\"} Hope that helps.", `{"label":"work"}`},
		{"whitespace", "  \n{\"label\":\"work\"}\n\t", `{"label":"work"}`},
		{"no object", "I cannot help with that", "I cannot help with that"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeOutput(tc.in))
		})
	}
}

func TestParseOutcome_Success(t *testing.T) {
	raw := "```json\n{\"label\":\"personal\",\"subtasks\":[\"Book venue\",\"Order cake\",\"Send invites\"]}\n```"

	o := ParseOutcome(raw)
	require.Equal(t, domain.OutcomeSuccess, o.Kind)
	assert.Equal(t, domain.LabelPersonal, o.Label)
	assert.Equal(t, []string{"Book venue", "Order cake", "Send invites"}, o.Subtasks)
	assert.Equal(t, raw, o.Raw)
}

func TestParseOutcome_LabelNormalization(t *testing.T) {
	cases := map[string]domain.Label{
		`{"label":"  WORK ","subtasks":[]}`: domain.LabelWork,
		`{"label":"urgent","subtasks":[]}`:  domain.LabelPersonal,
		`{"label":"","subtasks":[]}`:        domain.LabelPersonal,
		`{"subtasks":["a"]}`:                domain.LabelPersonal,
		`{"label":null}`:                    domain.LabelPersonal,
		`{"label":"Shopping"}`:              domain.LabelShopping,
	}

	for raw, want := range cases {
		o := ParseOutcome(raw)
		require.Equal(t, domain.OutcomeSuccess, o.Kind, raw)
		assert.Equal(t, want, o.Label, raw)
	}
}

func TestParseOutcome_MissingSubtasks(t *testing.T) {
	o := ParseOutcome(`{"label":"home"}`)
	require.Equal(t, domain.OutcomeSuccess, o.Kind)
	assert.NotNil(t, o.Subtasks)
	assert.Empty(t, o.Subtasks)
}

func TestParseOutcome_ParseFailure(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json at all",
		`{"label": "work",`,
		`["work"]`,
		"```json\n{label: work}\n```",
	} {
		o := ParseOutcome(raw)
		assert.Equal(t, domain.OutcomeParseFailure, o.Kind, raw)
		assert.Error(t, o.Err, raw)
		assert.Equal(t, raw, o.Raw)
	}
}

func TestParseOutcome_SchemaViolation(t *testing.T) {
	for _, raw := range []string{
		`{"label": 7, "subtasks": []}`,
		`{"label": "work", "subtasks": "buy milk"}`,
		`{"label": "work", "subtasks": ["ok", 3]}`,
		`{"label": ["work"]}`,
	} {
		o := ParseOutcome(raw)
		assert.Equal(t, domain.OutcomeSchemaViolation, o.Kind, raw)
		assert.Error(t, o.Err, raw)
	}
}

func TestNormalizeSubtasks(t *testing.T) {
	long := strings.Repeat("é", maxSubtaskLength+20)

	got := NormalizeSubtasks([]string{"  a ", "", "   ", long})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0])
	assert.Equal(t, maxSubtaskLength, len([]rune(got[1])))

	many := make([]string, 25)
	for i := range many {
		many[i] = "step"
	}
	assert.Len(t, NormalizeSubtasks(many), maxSubtasks)
	assert.Empty(t, NormalizeSubtasks(nil))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Plan birthday party", "Need venue and cake")

	assert.Contains(t, p, "Plan birthday party")
	assert.Contains(t, p, "Need venue and cake")
	for _, l := range domain.Labels {
		assert.Contains(t, p, string(l))
	}
	assert.Contains(t, p, "ONLY a JSON object")
	assert.Contains(t, p, "3 to 5")
}

func TestTruncateRaw(t *testing.T) {
	assert.Equal(t, "short", truncateRaw("short", 16))
	assert.Equal(t, "abcd", truncateRaw("abcdef", 4))

	// "é" is two bytes; a cut inside it backs off to the previous rune.
	got := truncateRaw("aéb", 2)
	assert.Equal(t, "a", got)
	assert.True(t, utf8.ValidString(truncateRaw(strings.Repeat("ё", 3000), maxRawOutput)))
}
