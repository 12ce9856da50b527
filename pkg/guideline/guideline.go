// Package guideline 保存各国膳食指南阈值，并据此评估一餐的宏量营养素
package guideline

import (
	"fmt"

	"github.com/iWorld-y/meal_annotator/pkg/model"
)

// GuidelineSet 单个国家的阈值 (g / kcal)
type GuidelineSet struct {
	CarbMin    float64
	CarbMax    float64
	FatMin     float64
	FatMax     float64
	ProteinMin float64
	EnergyMax  float64
}

var guidelines = map[string]GuidelineSet{
	"US":  {CarbMin: 45, CarbMax: 130, FatMin: 5, FatMax: 20, ProteinMin: 10, EnergyMax: 800},
	"UK":  {CarbMin: 50, CarbMax: 260, FatMin: 10, FatMax: 70, ProteinMin: 15, EnergyMax: 800},
	"ZMB": {CarbMin: 40, CarbMax: 100, FatMin: 8, FatMax: 25, ProteinMin: 12, EnergyMax: 700},
}

// Lookup 返回国家对应的阈值以及实际采用的国家代码，未知国家回退到 US
func Lookup(country string) (GuidelineSet, string) {
	if g, ok := guidelines[country]; ok {
		return g, country
	}
	return guidelines[model.DefaultCountry], model.DefaultCountry
}

// Evaluate 按碳水、脂肪、蛋白质、能量的顺序检查阈值
// 评语中的国家代码是实际采用的指南，未知国家与 US 的结果完全一致
func Evaluate(carb, fat, energy, protein float64, country string) model.EvaluationResult {
	g, country := Lookup(country)

	var comments []string
	healthy := true

	if carb < g.CarbMin {
		comments = append(comments, fmt.Sprintf("Low carbohydrate content for %s guidelines, which might not provide enough energy.", country))
		healthy = false
	} else if carb > g.CarbMax {
		comments = append(comments, fmt.Sprintf("High carbohydrate content for %s guidelines, which may lead to excess calorie intake.", country))
		healthy = false
	}

	if fat < g.FatMin {
		comments = append(comments, fmt.Sprintf("Low fat content for %s guidelines, which might lack essential fatty acids.", country))
		healthy = false
	} else if fat > g.FatMax {
		comments = append(comments, fmt.Sprintf("High fat content for %s guidelines, which might be unhealthy if mostly saturated or trans fats.", country))
		healthy = false
	}

	if protein < g.ProteinMin {
		comments = append(comments, fmt.Sprintf("Low protein content for %s guidelines, which may not support muscle and cell repair.", country))
		healthy = false
	}

	if energy > g.EnergyMax {
		comments = append(comments, fmt.Sprintf("High calorie content for %s guidelines; consider portion control.", country))
		healthy = false
	}

	if healthy {
		comments = append(comments, fmt.Sprintf("Meal aligns with balanced nutrition for %s guidelines.", country))
	}

	return model.EvaluationResult{Comments: comments, Healthy: healthy}
}
