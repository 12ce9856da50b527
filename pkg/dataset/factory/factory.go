package factory

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/dataset"
	"github.com/iWorld-y/meal_annotator/pkg/dataset/huggingface"
	"github.com/iWorld-y/meal_annotator/pkg/dataset/jsonfile"
)

// NewSource 根据配置创建数据集来源
func NewSource(cfg config.DatasetConfig, limiter *rate.Limiter) (dataset.Source, error) {
	provider := cfg.Provider
	if provider == "" {
		// 配置了本地文件时优先离线读取
		if cfg.Path != "" {
			provider = "file"
		} else {
			provider = "huggingface"
		}
	}

	switch provider {
	case "huggingface":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("datasets-server base url is missing")
		}
		if cfg.Name == "" {
			return nil, fmt.Errorf("dataset name is missing")
		}
		return huggingface.NewClient(cfg, limiter), nil

	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("dataset file path is missing")
		}
		return jsonfile.NewSource(cfg.Path), nil

	default:
		return nil, fmt.Errorf("unknown dataset provider: %s", provider)
	}
}
