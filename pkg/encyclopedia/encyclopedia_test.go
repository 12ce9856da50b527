package encyclopedia

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeEncyclopedia 按标题返回预设的摘要或错误
type fakeEncyclopedia struct {
	search    map[string][]string
	searchErr error
	summaries map[string]string
	errs      map[string]error
	summaryOf []string
}

func (f *fakeEncyclopedia) Search(_ context.Context, term string, limit int) ([]string, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	res := f.search[term]
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (f *fakeEncyclopedia) Summary(_ context.Context, title string, sentences int) (string, error) {
	f.summaryOf = append(f.summaryOf, title)
	if err, ok := f.errs[title]; ok {
		return "", err
	}
	return f.summaries[title], nil
}

func TestExplain_Success(t *testing.T) {
	enc := &fakeEncyclopedia{
		search:    map[string][]string{"dietary fat": {"Fat", "Lipid"}},
		summaries: map[string]string{"Fat": "Fats are nutrients. They store energy."},
	}

	got := Explain(context.Background(), enc, "dietary fat")
	assert.Equal(t, "dietary fat: Fats are nutrients. They store energy.", got)
	assert.Equal(t, []string{"Fat"}, enc.summaryOf)
}

func TestExplain_NoResults(t *testing.T) {
	enc := &fakeEncyclopedia{}
	assert.Equal(t, "food energy: No information available.", Explain(context.Background(), enc, "food energy"))
}

func TestExplain_DisambiguationRetry(t *testing.T) {
	enc := &fakeEncyclopedia{
		search: map[string][]string{"protein nutrition": {"Protein"}},
		errs: map[string]error{
			"Protein": &DisambiguationError{Title: "Protein", Options: []string{"Protein (nutrient)", "Protein (band)"}},
		},
		summaries: map[string]string{"Protein (nutrient)": "Proteins are essential nutrients."},
	}

	got := Explain(context.Background(), enc, "protein nutrition")
	assert.Equal(t, "protein nutrition: Proteins are essential nutrients.", got)
	assert.Equal(t, []string{"Protein", "Protein (nutrient)"}, enc.summaryOf)
}

func TestExplain_DisambiguationRetryFails(t *testing.T) {
	enc := &fakeEncyclopedia{
		search: map[string][]string{"carbohydrate nutrition": {"Carb"}},
		errs: map[string]error{
			"Carb":     &DisambiguationError{Title: "Carb", Options: []string{"Carb (x)"}},
			"Carb (x)": errors.New("page missing"),
		},
	}

	got := Explain(context.Background(), enc, "carbohydrate nutrition")
	assert.Equal(t, "carbohydrate nutrition: Multiple topics found, information unclear.", got)
}

func TestExplain_DisambiguationWithoutOptions(t *testing.T) {
	enc := &fakeEncyclopedia{
		search: map[string][]string{"x": {"X"}},
		errs:   map[string]error{"X": &DisambiguationError{Title: "X"}},
	}

	assert.Equal(t, "x: Multiple topics found, information unclear.", Explain(context.Background(), enc, "x"))
	assert.Equal(t, []string{"X"}, enc.summaryOf)
}

func TestExplain_OtherErrors(t *testing.T) {
	enc := &fakeEncyclopedia{searchErr: errors.New("connection refused")}
	assert.Equal(t, "food energy: Unable to retrieve information (connection refused).",
		Explain(context.Background(), enc, "food energy"))

	enc = &fakeEncyclopedia{
		search: map[string][]string{"food energy": {"Food energy"}},
		errs:   map[string]error{"Food energy": errors.New("status 500")},
	}
	assert.Equal(t, "food energy: Unable to retrieve information (status 500).",
		Explain(context.Background(), enc, "food energy"))
}

func TestMacronutrientInfo(t *testing.T) {
	enc := &fakeEncyclopedia{
		search: map[string][]string{
			"carbohydrate nutrition": {"Carbohydrate"},
			"protein nutrition":      {"Protein (nutrient)"},
			"dietary fat":            {"Fat"},
		},
		summaries: map[string]string{
			"Carbohydrate":       "C.",
			"Protein (nutrient)": "P.",
			"Fat":                "F.",
		},
	}

	info := MacronutrientInfo(context.Background(), enc)
	assert.Equal(t, map[string]string{
		"Carbohydrates": "carbohydrate nutrition: C.",
		"Protein":       "protein nutrition: P.",
		"Fat":           "dietary fat: F.",
		"Energy":        "food energy: No information available.",
	}, info)
	assert.Equal(t, []string{"Carbohydrate", "Protein (nutrient)", "Fat"}, enc.summaryOf)
}
