package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/iWorld-y/meal_annotator/pkg/encyclopedia"
	"github.com/iWorld-y/meal_annotator/pkg/extractor"
	"github.com/iWorld-y/meal_annotator/pkg/guideline"
	"github.com/iWorld-y/meal_annotator/pkg/model"
	"github.com/iWorld-y/meal_annotator/pkg/nutrition"
)

const noFoodData = "No API data available."

// Assembler 将评估、食物分析与百科说明组合成报告
type Assembler struct {
	nutrition    nutrition.Provider
	encyclopedia encyclopedia.Encyclopedia
}

func NewAssembler(np nutrition.Provider, enc encyclopedia.Encyclopedia) *Assembler {
	return &Assembler{nutrition: np, encyclopedia: enc}
}

// Build 为一条餐食生成展示文本与结构化记录，外部服务失败只会体现为占位文本
func (a *Assembler) Build(ctx context.Context, meal model.MealRecord) (string, model.AnalysisRecord) {
	macros := encyclopedia.MacronutrientInfo(ctx, a.encyclopedia)
	summary := NutrientSummary(meal)
	eval := guideline.Evaluate(meal.Carb, meal.Fat, meal.Energy, meal.Protein, meal.Country)

	foods := make([]model.FoodAnalysis, 0)
	for _, food := range extractor.Extract(meal.Description) {
		foods = append(foods, model.FoodAnalysis{
			Food:              food,
			FoodNutritionInfo: nutrition.Lookup(ctx, a.nutrition, food),
		})
	}

	record := model.AnalysisRecord{
		MealDescription: meal.Description,
		Country:         meal.Country,
		Carb:            meal.Carb,
		Fat:             meal.Fat,
		Energy:          meal.Energy,
		Protein:         meal.Protein,
		NutrientSummary: summary,
		Evaluation:      eval.Comment(),
		IsHealthy:       eval.Healthy,
		Foods:           foods,
		Macronutrients:  macros,
	}
	return Render(record), record
}

// NutrientSummary "Carbohydrates: 100g, Fat: 15g, Energy: 600kcal, Protein: 20g."
func NutrientSummary(meal model.MealRecord) string {
	return fmt.Sprintf("Carbohydrates: %sg, Fat: %sg, Energy: %skcal, Protein: %sg.",
		model.FormatNumber(meal.Carb),
		model.FormatNumber(meal.Fat),
		model.FormatNumber(meal.Energy),
		model.FormatNumber(meal.Protein))
}

// Render 生成展示给用户的推理文本
func Render(record model.AnalysisRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Nutritional summary: %s\n\n", record.NutrientSummary)

	sb.WriteString("What these nutrients do:")
	for _, m := range encyclopedia.Macronutrients {
		fmt.Fprintf(&sb, "\n• %s", record.Macronutrients[m.Name])
	}

	fmt.Fprintf(&sb, "\n\nFood analysis: %s", foodAnalysisText(record.Foods))
	fmt.Fprintf(&sb, "\n\nMeal evaluation: %s", record.Evaluation)
	return sb.String()
}

func foodAnalysisText(foods []model.FoodAnalysis) string {
	if len(foods) == 0 {
		return noFoodData
	}
	parts := make([]string, 0, len(foods))
	for _, f := range foods {
		parts = append(parts, fmt.Sprintf("%s: Serving size: %s, Benefits: %s, Concerns: %s",
			f.Food, f.ServingSize, joinOrNone(f.GoodEffects), joinOrNone(f.IllEffects)))
	}
	return strings.Join(parts, "; ")
}

func joinOrNone(effects []string) string {
	if len(effects) == 0 {
		return "None"
	}
	return strings.Join(effects, " ")
}
