package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/dataset/huggingface"
	"github.com/iWorld-y/meal_annotator/pkg/dataset/jsonfile"
)

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.Default().Dataset, nil)
	require.NoError(t, err)
	assert.IsType(t, &huggingface.Client{}, src)

	src, err = NewSource(config.DatasetConfig{Path: "meals.jsonl"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &jsonfile.Source{}, src)

	src, err = NewSource(config.DatasetConfig{Provider: "file", Path: "meals.jsonl"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &jsonfile.Source{}, src)
}

func TestNewSource_Errors(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.DatasetConfig
	}{
		{"file without path", config.DatasetConfig{Provider: "file"}},
		{"huggingface without url", config.DatasetConfig{Provider: "huggingface", Name: "x"}},
		{"huggingface without name", config.DatasetConfig{Provider: "huggingface", BaseURL: "http://x"}},
		{"unknown provider", config.DatasetConfig{Provider: "kaggle"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSource(tc.cfg, nil)
			assert.Error(t, err)
		})
	}
}
