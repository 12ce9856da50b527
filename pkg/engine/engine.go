package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/dataset"
	"github.com/iWorld-y/meal_annotator/pkg/dataset/factory"
	"github.com/iWorld-y/meal_annotator/pkg/logger"
	"github.com/iWorld-y/meal_annotator/pkg/model"
	"github.com/iWorld-y/meal_annotator/pkg/nutritionix"
	"github.com/iWorld-y/meal_annotator/pkg/report"
	"github.com/iWorld-y/meal_annotator/pkg/storage"
	"github.com/iWorld-y/meal_annotator/pkg/wikipedia"
)

var separator = strings.Repeat("=", 100)

// Engine 核心处理引擎
type Engine struct {
	limit     int
	source    dataset.Source
	assembler *report.Assembler
	sinks     []storage.Sink
	out       io.Writer
}

// RunSummary 一次运行的统计
type RunSummary struct {
	Processed int
	Failed    int
}

// NewEngine 按配置创建引擎实例，store 为 nil 时只写 JSONL
func NewEngine(cfg *config.Config, store *storage.Storage) (*Engine, error) {
	limiter := NewLimiter(cfg.Concurrency)

	source, err := factory.NewSource(cfg.Dataset, limiter)
	if err != nil {
		return nil, fmt.Errorf("数据集初始化失败: %w", err)
	}

	assembler := report.NewAssembler(
		nutritionix.NewClient(cfg.Nutritionix, limiter),
		wikipedia.NewClient(cfg.Wikipedia, limiter),
	)

	sinks := []storage.Sink{storage.NewJSONLWriter(cfg.Output.Path)}
	if store != nil {
		sinks = append(sinks, store)
	}

	return New(cfg.Dataset.Limit, source, assembler, os.Stdout, sinks...), nil
}

// New 使用给定的组件创建引擎，limit 超出 [1, MaxMeals] 时按 MaxMeals 处理
func New(limit int, source dataset.Source, assembler *report.Assembler, out io.Writer, sinks ...storage.Sink) *Engine {
	if limit <= 0 || limit > config.MaxMeals {
		limit = config.MaxMeals
	}
	return &Engine{
		limit:     limit,
		source:    source,
		assembler: assembler,
		sinks:     sinks,
		out:       out,
	}
}

// NewLimiter RPM 为 0 时不限速
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	burst := cfg.QPS
	if burst <= 0 {
		burst = 1
	}
	if cfg.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), burst)
	logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", limiter.Limit(), burst)
	return limiter
}

// Run 执行一次批处理，只有数据集加载失败才返回错误
func (e *Engine) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary

	rows, err := e.source.Load(ctx, e.limit)
	if err != nil {
		return summary, fmt.Errorf("load dataset: %w", err)
	}
	if len(rows) > e.limit {
		rows = rows[:e.limit]
	}
	logger.Log.Infof("已加载 %d 条餐食记录", len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := e.processRow(ctx, row); err != nil {
			logger.Log.WithField("row", i).Errorf("处理餐食失败: %v", err)
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	logger.Log.Infof("批处理完成: 成功 %d 条, 失败 %d 条", summary.Processed, summary.Failed)
	return summary, nil
}

func (e *Engine) processRow(ctx context.Context, row dataset.Row) error {
	meal, err := model.MealFromRow(row)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "Meal Description: %s\n\n", meal.Description)
	text, record := e.assembler.Build(ctx, meal)
	fmt.Fprintf(e.out, "Chain-of-Thought:\n%s\n", text)
	fmt.Fprintln(e.out, separator)

	// 落地失败不影响本条记录的处理结果
	for _, sink := range e.sinks {
		if err := sink.Save(ctx, record); err != nil {
			logger.Log.WithField("sink", fmt.Sprintf("%T", sink)).Errorf("保存分析记录失败 [%s]: %v", meal.Description, err)
		}
	}
	return nil
}
