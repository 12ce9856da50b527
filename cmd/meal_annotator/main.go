package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/engine"
	"github.com/iWorld-y/meal_annotator/pkg/logger"
	"github.com/iWorld-y/meal_annotator/pkg/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// 1. 加载配置，配置文件不存在时使用默认值
	cfg, err := config.LoadConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}

	// 2. 初始化日志
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动餐食标注任务...")

	if cfg.Nutritionix.AppID == "" || cfg.Nutritionix.APIKey == "" {
		logger.Log.Warn("未设置 Nutritionix 凭证，食物分析将返回默认值")
	}

	// 3. 初始化数据库连接 (可选)
	var store *storage.Storage
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅写入 JSONL 文件。", err)
		} else {
			store = s
			defer store.Close()
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. 运行
	eng, err := engine.NewEngine(cfg, store)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	summary, err := eng.Run(ctx)
	if err != nil {
		logger.Log.Fatalf("批处理失败: %v", err)
	}

	logger.Log.Infof("✅ 分析完成: %d 条写入 %s, %d 条失败", summary.Processed, cfg.Output.Path, summary.Failed)
}
