package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultCountry 数据行缺少国家字段时使用的国家代码
const DefaultCountry = "US"

var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidField = errors.New("invalid field")
)

// MealRecord 数据集中的一条餐食记录
type MealRecord struct {
	Description string
	Carb        float64 // g
	Fat         float64 // g
	Energy      float64 // kcal
	Protein     float64 // g
	Country     string
}

// EvaluationResult 按国家指南评估的结果
type EvaluationResult struct {
	Comments []string
	Healthy  bool
}

// Comment 以单个空格拼接所有评语
func (r EvaluationResult) Comment() string {
	return strings.Join(r.Comments, " ")
}

// FoodNutritionInfo 单个食物的营养分析
type FoodNutritionInfo struct {
	ServingSize string   `json:"serving_size"`
	IllEffects  []string `json:"ill_effects"`
	GoodEffects []string `json:"good_effects"`
}

// UnknownNutrition 查询失败时的默认值
func UnknownNutrition() FoodNutritionInfo {
	return FoodNutritionInfo{
		ServingSize: "Unknown",
		IllEffects:  []string{},
		GoodEffects: []string{},
	}
}

// FoodAnalysis 带食物名的营养分析，用于 JSON 输出
type FoodAnalysis struct {
	Food string `json:"food"`
	FoodNutritionInfo
}

// AnalysisRecord 每条餐食输出一行 JSON
type AnalysisRecord struct {
	MealDescription string            `json:"meal_description"`
	Country         string            `json:"country"`
	Carb            float64           `json:"carb"`
	Fat             float64           `json:"fat"`
	Energy          float64           `json:"energy"`
	Protein         float64           `json:"protein"`
	NutrientSummary string            `json:"nutrient_summary"`
	Evaluation      string            `json:"evaluation"`
	IsHealthy       bool              `json:"is_healthy"`
	Foods           []FoodAnalysis    `json:"foods"`
	Macronutrients  map[string]string `json:"macronutrient_wikipedia_info"`
}

// MealFromRow 将数据集的一行转换为 MealRecord
func MealFromRow(row map[string]any) (MealRecord, error) {
	var meal MealRecord

	desc, ok := row["meal_description"]
	if !ok || desc == nil {
		return meal, fmt.Errorf("%w: meal_description", ErrMissingField)
	}
	s, ok := desc.(string)
	if !ok {
		return meal, fmt.Errorf("%w: meal_description is %T", ErrInvalidField, desc)
	}
	meal.Description = s

	fields := []struct {
		name string
		dst  *float64
	}{
		{"carb", &meal.Carb},
		{"fat", &meal.Fat},
		{"energy", &meal.Energy},
		{"protein", &meal.Protein},
	}
	for _, f := range fields {
		v, err := numberField(row, f.name)
		if err != nil {
			return meal, err
		}
		*f.dst = v
	}

	meal.Country = DefaultCountry
	if c, ok := row["country"].(string); ok && c != "" {
		meal.Country = c
	}

	return meal, nil
}

func numberField(row map[string]any, name string) (float64, error) {
	raw, ok := row[name]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrInvalidField, name, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s is %T", ErrInvalidField, name, raw)
	}
}

// FormatNumber 以最短的十进制形式输出数值，100 -> "100"，12.5 -> "12.5"
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
