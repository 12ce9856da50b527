package storage

import (
	"context"

	"github.com/iWorld-y/meal_annotator/pkg/model"
)

// Sink 分析记录的落地目标
type Sink interface {
	Save(ctx context.Context, record model.AnalysisRecord) error
}
