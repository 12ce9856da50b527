package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/dataset"
	"github.com/iWorld-y/meal_annotator/pkg/model"
	"github.com/iWorld-y/meal_annotator/pkg/nutrition"
	"github.com/iWorld-y/meal_annotator/pkg/report"
	"github.com/iWorld-y/meal_annotator/pkg/storage"
)

type stubSource struct {
	rows      []dataset.Row
	err       error
	requested int
}

func (s *stubSource) Load(_ context.Context, limit int) ([]dataset.Row, error) {
	s.requested = limit
	return s.rows, s.err
}

type noNutrition struct{}

func (noNutrition) Fetch(context.Context, string) (*nutrition.Facts, error) {
	return nil, errors.New("no foods found")
}

type noEncyclopedia struct{}

func (noEncyclopedia) Search(context.Context, string, int) ([]string, error) { return nil, nil }

func (noEncyclopedia) Summary(context.Context, string, int) (string, error) { return "", nil }

type recordingSink struct {
	records []model.AnalysisRecord
	err     error
}

func (s *recordingSink) Save(_ context.Context, r model.AnalysisRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, r)
	return nil
}

func meal(desc string) dataset.Row {
	return dataset.Row{"meal_description": desc, "carb": 100.0, "fat": 15.0, "energy": 600.0, "protein": 20.0}
}

func newTestEngine(limit int, src dataset.Source, out *bytes.Buffer, sinks ...storage.Sink) *Engine {
	return New(limit, src, report.NewAssembler(noNutrition{}, noEncyclopedia{}), out, sinks...)
}

func TestEngine_Run(t *testing.T) {
	src := &stubSource{rows: []dataset.Row{meal("For lunch, I ate rice"), meal("tea")}}
	sink := &recordingSink{}
	var out bytes.Buffer

	summary, err := newTestEngine(5, src, &out, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Processed: 2, Failed: 0}, summary)
	assert.Equal(t, 5, src.requested)

	require.Len(t, sink.records, 2)
	assert.Equal(t, "US", sink.records[0].Country)
	assert.True(t, sink.records[0].IsHealthy)

	printed := out.String()
	assert.True(t, strings.HasPrefix(printed, "Meal Description: For lunch, I ate rice\n\nChain-of-Thought:\nNutritional summary: "))
	assert.Contains(t, printed, "Meal evaluation: Meal aligns with balanced nutrition for US guidelines.\n"+strings.Repeat("=", 100)+"\n")
	assert.Equal(t, 2, strings.Count(printed, strings.Repeat("=", 100)))
}

func TestEngine_Run_AtMostFiveRows(t *testing.T) {
	rows := make([]dataset.Row, 8)
	for i := range rows {
		rows[i] = meal("rice")
	}
	src := &stubSource{rows: rows}
	sink := &recordingSink{}

	summary, err := newTestEngine(0, src, &bytes.Buffer{}, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, src.requested)
	assert.Equal(t, 5, summary.Processed)
	assert.Len(t, sink.records, 5)

	summary, err = newTestEngine(2, &stubSource{rows: rows}, &bytes.Buffer{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
}

func TestEngine_Run_SkipsBadRows(t *testing.T) {
	bad := dataset.Row{"meal_description": "no numbers"}
	src := &stubSource{rows: []dataset.Row{meal("a"), bad, meal("b")}}
	sink := &recordingSink{}
	var out bytes.Buffer

	summary, err := newTestEngine(5, src, &out, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Processed: 2, Failed: 1}, summary)
	assert.Len(t, sink.records, 2)
	assert.NotContains(t, out.String(), "no numbers")
}

func TestEngine_Run_SinkFailureContinues(t *testing.T) {
	failing := &recordingSink{err: errors.New("disk full")}
	ok := &recordingSink{}
	src := &stubSource{rows: []dataset.Row{meal("a"), meal("b")}}

	summary, err := newTestEngine(5, src, &bytes.Buffer{}, failing, ok).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Len(t, ok.records, 2)
}

func TestEngine_Run_LoadError(t *testing.T) {
	src := &stubSource{err: errors.New("dataset unavailable")}

	_, err := newTestEngine(5, src, &bytes.Buffer{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset unavailable")
}

func TestEngine_Run_WritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meal_analysis.jsonl")
	src := &stubSource{rows: []dataset.Row{meal("rice"), meal("beans")}}

	_, err := newTestEngine(5, src, &bytes.Buffer{}, storage.NewJSONLWriter(path)).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"meal_description":"rice"`)
}

func TestNewLimiter(t *testing.T) {
	assert.Equal(t, rate.Inf, NewLimiter(config.ConcurrencyConfig{}).Limit())

	l := NewLimiter(config.ConcurrencyConfig{RPM: 120, QPS: 3})
	assert.Equal(t, rate.Limit(2), l.Limit())
	assert.Equal(t, 3, l.Burst())
}

func TestNewEngine(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Path = filepath.Join(t.TempDir(), "out.jsonl")

	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, config.MaxMeals, e.limit)
	require.Len(t, e.sinks, 1)

	cfg.Dataset.Provider = "kaggle"
	_, err = NewEngine(cfg, nil)
	assert.Error(t, err)
}
