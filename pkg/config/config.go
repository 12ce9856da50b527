package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNutritionixBaseURL = "https://trackapi.nutritionix.com"
	DefaultWikipediaBaseURL   = "https://en.wikipedia.org"
	DefaultHuggingFaceBaseURL = "https://datasets-server.huggingface.co"
	DefaultDatasetName        = "dongx1997/NutriBench"
	DefaultDatasetConfig      = "v2"
	DefaultDatasetSplit       = "train"
	DefaultOutputPath         = "meal_analysis.jsonl"

	// MaxMeals 单次运行最多处理的餐食条数
	MaxMeals = 5
)

// Config 项目配置结构体
type Config struct {
	Nutritionix NutritionixConfig `yaml:"nutritionix"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia"`
	Dataset     DatasetConfig     `yaml:"dataset"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
}

// NutritionixConfig Nutritionix 营养 API 配置
type NutritionixConfig struct {
	BaseURL string `yaml:"base_url"`
	AppID   string `yaml:"app_id"`
	APIKey  string `yaml:"api_key"`
	Timeout int    `yaml:"timeout"` // 秒
}

// WikipediaConfig 百科服务配置
type WikipediaConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	Timeout   int    `yaml:"timeout"`
}

// DatasetConfig 数据集配置
type DatasetConfig struct {
	Provider string `yaml:"provider"` // huggingface or file
	BaseURL  string `yaml:"base_url"`
	Name     string `yaml:"name"`
	Config   string `yaml:"config"`
	Split    string `yaml:"split"`
	Path     string `yaml:"path"`
	Token    string `yaml:"token"`
	Limit    int    `yaml:"limit"`
	Timeout  int    `yaml:"timeout"`
}

// OutputConfig 输出文件配置
type OutputConfig struct {
	Path string `yaml:"path"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 外部 API 调用限速配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig 从指定路径加载配置
// 先尝试加载 .env，环境变量会覆盖 YAML 中为空的凭证
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// Default 返回不依赖配置文件的默认配置
func Default() *Config {
	_ = godotenv.Load()

	var cfg Config
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func overrideFromEnv(cfg *Config) {
	if cfg.Nutritionix.AppID == "" {
		cfg.Nutritionix.AppID = os.Getenv("NUTRITIONIX_APP_ID")
	}
	if cfg.Nutritionix.APIKey == "" {
		cfg.Nutritionix.APIKey = os.Getenv("NUTRITIONIX_API_KEY")
	}
	if cfg.Dataset.Token == "" {
		cfg.Dataset.Token = os.Getenv("HF_TOKEN")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Nutritionix.BaseURL == "" {
		cfg.Nutritionix.BaseURL = DefaultNutritionixBaseURL
	}
	if cfg.Wikipedia.BaseURL == "" {
		cfg.Wikipedia.BaseURL = DefaultWikipediaBaseURL
	}
	if cfg.Wikipedia.UserAgent == "" {
		cfg.Wikipedia.UserAgent = "meal_annotator/1.0 (https://github.com/iWorld-y/meal_annotator)"
	}

	if cfg.Dataset.Provider == "" {
		cfg.Dataset.Provider = "huggingface"
	}
	if cfg.Dataset.BaseURL == "" {
		cfg.Dataset.BaseURL = DefaultHuggingFaceBaseURL
	}
	if cfg.Dataset.Name == "" {
		cfg.Dataset.Name = DefaultDatasetName
	}
	if cfg.Dataset.Config == "" {
		cfg.Dataset.Config = DefaultDatasetConfig
	}
	if cfg.Dataset.Split == "" {
		cfg.Dataset.Split = DefaultDatasetSplit
	}
	if cfg.Dataset.Limit <= 0 || cfg.Dataset.Limit > MaxMeals {
		cfg.Dataset.Limit = MaxMeals
	}

	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
}
