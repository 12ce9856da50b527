package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/iWorld-y/meal_annotator/pkg/model"
)

// JSONLWriter 以 JSON Lines 格式追加写入分析记录
type JSONLWriter struct {
	path string
}

func NewJSONLWriter(path string) *JSONLWriter {
	return &JSONLWriter{path: path}
}

// Ensure JSONLWriter implements Sink
var _ Sink = (*JSONLWriter)(nil)

func (w *JSONLWriter) Path() string {
	return w.path
}

// Save 每次写入都以追加模式打开文件，已有内容不会被覆盖
func (w *JSONLWriter) Save(_ context.Context, record model.AnalysisRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record failed: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s failed: %w", w.path, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("write %s failed: %w", w.path, err)
	}
	return f.Close()
}
