package dataset

import "context"

// Row 数据集中的一行，字段为解码后的 JSON 值
type Row map[string]any

// Source 定义只读的数据集行来源
type Source interface {
	// Load 返回最多 limit 行
	Load(ctx context.Context, limit int) ([]Row, error)
}
