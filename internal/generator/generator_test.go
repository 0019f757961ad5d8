package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcqgen/mcq-generator/internal/cache"
	"github.com/mcqgen/mcq-generator/internal/document"
	"github.com/mcqgen/mcq-generator/internal/llm"
)

// fakeClient 可编程的推理客户端桩
type fakeClient struct {
	calls    int
	response string
	err      error
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (*llm.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.response, RawText: f.response, StatusCode: 200}, nil
}

func (f *fakeClient) ValidateToken(ctx context.Context) error { return nil }

func (f *fakeClient) Name() string { return "fake" }

const validQuestion = `Question: Which radiological feature is most characteristic of miliary tuberculosis?
a) Diffuse micronodular opacities
b) Lobar consolidation
c) Pleural plaques
d) Cavitating mass
Correct Answer: a`

func TestValidate(t *testing.T) {
	t.Run("AcceptsWellFormedQuestion", func(t *testing.T) {
		assert.True(t, Validate(validQuestion))
	})

	t.Run("AcceptsCaseInsensitiveMarkers", func(t *testing.T) {
		lowered := strings.ToLower(validQuestion)
		assert.True(t, Validate(lowered))
	})

	t.Run("RejectsShortText", func(t *testing.T) {
		assert.False(t, Validate("Question: short? a) b) c) d)"))
		assert.False(t, Validate(""))
		assert.False(t, Validate("   \n\t  "))
	})

	t.Run("RejectsMissingMarkers", func(t *testing.T) {
		cases := []struct {
			name   string
			marker string
		}{
			{"NoQuestionLabel", "Question:"},
			{"NoOptionA", "a)"},
			{"NoOptionB", "b)"},
			{"NoOptionC", "c)"},
			{"NoOptionD", "d)"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				mutated := strings.Replace(validQuestion, tc.marker, "", 1)
				assert.False(t, Validate(mutated))
			})
		}
	})

	t.Run("RejectsAnswerOutsideRange", func(t *testing.T) {
		mutated := strings.Replace(validQuestion, "Correct Answer: a", "Correct Answer: e", 1)
		assert.False(t, Validate(mutated))
	})

	t.Run("RejectsMissingAnswerLine", func(t *testing.T) {
		mutated := strings.Replace(validQuestion, "Correct Answer: a", "", 1)
		assert.False(t, Validate(mutated))
	})
}

func TestBuildPrompt(t *testing.T) {
	qt := QuestionType{ID: 4, Description: "Disease characteristics verification"}

	t.Run("EmbedsContentAndType", func(t *testing.T) {
		prompt := BuildPrompt(qt, "Pulmonary embolism presents with acute dyspnea.", 0)

		assert.Contains(t, prompt, "[CONTENT]")
		assert.Contains(t, prompt, "[REQUIREMENTS]")
		assert.Contains(t, prompt, "[FORMAT]")
		assert.Contains(t, prompt, "Disease characteristics verification")
		assert.Contains(t, prompt, "Pulmonary embolism presents with acute dyspnea.")
		assert.Contains(t, prompt, "Correct Answer: [Letter only]")
	})

	t.Run("TruncatesLongChunk", func(t *testing.T) {
		long := strings.Repeat("x", 2000)
		prompt := BuildPrompt(qt, long, 1500)

		assert.Contains(t, prompt, strings.Repeat("x", 1500))
		assert.NotContains(t, prompt, strings.Repeat("x", 1501))
	})

	t.Run("TruncatesByRunes", func(t *testing.T) {
		long := strings.Repeat("医", 20)
		prompt := BuildPrompt(qt, long, 10)

		assert.Contains(t, prompt, strings.Repeat("医", 10))
		assert.NotContains(t, prompt, strings.Repeat("医", 11))
	})
}

func TestTypeCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("DefaultOrder", func(t *testing.T) {
		require.Len(t, catalog, 3)
		assert.Equal(t, []int{1, 4, 6}, []int{catalog[0].ID, catalog[1].ID, catalog[2].ID})
	})

	t.Run("Lookup", func(t *testing.T) {
		qt, ok := catalog.Lookup(4)
		require.True(t, ok)
		assert.Equal(t, "Disease characteristics verification", qt.Description)

		_, ok = catalog.Lookup(2)
		assert.False(t, ok)
	})

	t.Run("SubsetKeepsCatalogOrder", func(t *testing.T) {
		subset := catalog.Subset([]int{6, 1})
		require.Len(t, subset, 2)
		assert.Equal(t, 1, subset[0].ID)
		assert.Equal(t, 6, subset[1].ID)
	})

	t.Run("SubsetEmptyReturnsAll", func(t *testing.T) {
		assert.Len(t, catalog.Subset(nil), 3)
	})
}

func TestGeneratorGenerate(t *testing.T) {
	chunk := document.Chunk{Text: "Tuberculosis is caused by Mycobacterium tuberculosis.", Index: 1}
	qt := QuestionType{ID: 1, Description: "Case-based diagnosis from radiological features"}

	t.Run("ReturnsClientText", func(t *testing.T) {
		client := &fakeClient{response: validQuestion}
		g := NewGenerator(client)

		text, err := g.Generate(context.Background(), chunk, qt)
		require.NoError(t, err)
		assert.Equal(t, validQuestion, text)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("SoftFailureYieldsEmptyWithoutError", func(t *testing.T) {
		client := &fakeClient{err: llm.NewInferenceError(llm.ErrCodeAPIStatus, "API error: 503")}
		g := NewGenerator(client)

		text, err := g.Generate(context.Background(), chunk, qt)
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("HardErrorPropagates", func(t *testing.T) {
		client := &fakeClient{err: llm.NewInferenceError(llm.ErrCodeNetwork, "request failed after retries")}
		g := NewGenerator(client)

		_, err := g.Generate(context.Background(), chunk, qt)
		require.Error(t, err)

		var infErr llm.InferenceError
		require.True(t, errors.As(err, &infErr))
		assert.Equal(t, llm.ErrCodeNetwork, infErr.Code)
	})

	t.Run("CacheHitSkipsClient", func(t *testing.T) {
		c, err := cache.NewMemoryCache(cache.DefaultConfig())
		require.NoError(t, err)

		client := &fakeClient{response: validQuestion}
		g := NewGenerator(client, WithCache(c, time.Hour))

		g.MarkAccepted(chunk, qt, validQuestion)

		text, err := g.Generate(context.Background(), chunk, qt)
		require.NoError(t, err)
		assert.Equal(t, validQuestion, text)
		assert.Equal(t, 0, client.calls)
	})

	t.Run("DistinctTypesMissCache", func(t *testing.T) {
		c, err := cache.NewMemoryCache(cache.DefaultConfig())
		require.NoError(t, err)

		client := &fakeClient{response: validQuestion}
		g := NewGenerator(client, WithCache(c, time.Hour))

		g.MarkAccepted(chunk, qt, validQuestion)

		other := QuestionType{ID: 6, Description: "Special feature identification"}
		_, err = g.Generate(context.Background(), chunk, other)
		require.NoError(t, err)
		assert.Equal(t, 1, client.calls)
	})
}
