package nutrition

import (
	"context"
	"strings"

	"github.com/iWorld-y/meal_annotator/pkg/logger"
	"github.com/iWorld-y/meal_annotator/pkg/model"
)

// Provider 定义通用的营养数据查询接口
type Provider interface {
	Fetch(ctx context.Context, food string) (*Facts, error)
}

// Facts 营养 API 返回的第一个匹配食物
// 指针为 nil 表示 API 未返回该字段
type Facts struct {
	FoodName      string
	ServingQty    *float64
	ServingUnit   string
	ServingWeight *float64 // g

	SaturatedFat *float64 // g
	Sugars       *float64 // g
	Fiber        *float64 // g
	Protein      *float64 // g
	Potassium    *float64 // mg
	Calcium      *float64 // mg
	Iron         *float64 // mg
	VitaminC     *float64 // mg
}

type effectRule struct {
	per100g float64
	value   func(*Facts) *float64
	label   string
	ill     bool
}

// 阈值按每 100g 给出，按份量重量缩放后比较
var effectRules = []effectRule{
	{2.0, func(f *Facts) *float64 { return f.SaturatedFat }, "High in saturated fat relative to serving size.", true},
	{5, func(f *Facts) *float64 { return f.Sugars }, "High sugar content relative to serving size.", true},
	{2, func(f *Facts) *float64 { return f.Fiber }, "Good source of dietary fiber for digestive health.", false},
	{5, func(f *Facts) *float64 { return f.Protein }, "Contains protein for muscle building and repair.", false},
	{200, func(f *Facts) *float64 { return f.Potassium }, "Rich in potassium for heart and muscle function.", false},
	{100, func(f *Facts) *float64 { return f.Calcium }, "Contains calcium for bone and teeth health.", false},
	{1, func(f *Facts) *float64 { return f.Iron }, "Source of iron for blood and oxygen transport.", false},
	{10, func(f *Facts) *float64 { return f.VitaminC }, "Contains vitamin C for immune system support.", false},
}

// Analyze 根据营养数据生成份量描述及好/坏效应标签
func Analyze(f *Facts) model.FoodNutritionInfo {
	info := model.UnknownNutrition()
	if f == nil {
		return info
	}

	if s := servingSize(f); s != "" {
		info.ServingSize = s
	}

	weight := valueOf(f.ServingWeight)
	if weight == 0 {
		weight = 1
	}

	for _, r := range effectRules {
		if valueOf(r.value(f)) <= r.per100g*weight/100 {
			continue
		}
		if r.ill {
			info.IllEffects = append(info.IllEffects, r.label)
		} else {
			info.GoodEffects = append(info.GoodEffects, r.label)
		}
	}
	return info
}

// Lookup 查询单个食物，任何失败都只记录日志并返回默认值
func Lookup(ctx context.Context, p Provider, food string) model.FoodNutritionInfo {
	facts, err := p.Fetch(ctx, food)
	if err != nil {
		logger.Log.Warnf("获取营养信息失败 [%s]: %v", food, err)
		return model.UnknownNutrition()
	}
	return Analyze(facts)
}

func servingSize(f *Facts) string {
	var qty string
	if f.ServingQty != nil {
		qty = model.FormatNumber(*f.ServingQty)
	}
	return strings.TrimSpace(qty + " " + f.ServingUnit)
}

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
