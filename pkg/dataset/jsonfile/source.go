package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/iWorld-y/meal_annotator/pkg/dataset"
)

// Source 从本地 JSON Lines 文件读取数据集行，用于离线运行
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

// Ensure Source implements dataset.Source
var _ dataset.Source = (*Source)(nil)

// Load implements dataset.Source，跳过空行，读满 limit 行即停止
func (s *Source) Load(ctx context.Context, limit int) ([]dataset.Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file failed: %w", err)
	}
	defer f.Close()

	var rows []dataset.Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() && len(rows) < limit {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var row dataset.Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("line %d: unmarshal failed: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset file failed: %w", err)
	}
	return rows, nil
}
