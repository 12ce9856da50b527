// Package extractor 从自由文本的餐食描述中提取食物名称
package extractor

import (
	"regexp"
	"strings"
)

var mealPrefixes = []string{
	"For breakfast, I ate",
	"For lunch, I ate",
	"For dinner, I had",
	"For a quick snack, I opted for",
}

// 按顺序执行
var quantityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+g`),
	regexp.MustCompile(`\(\d+g\)`),
}

// 字面子串删除，不区分单词边界，"grand" 中的 "and" 也会被删掉
var fillerTerms = []string{"along with", "and", "boiled", "raw", "large", "ripe", "medium fat"}

var multipleSpaces = regexp.MustCompile(`\s+`)

// Extract 返回描述中出现的食物名称，保持原有顺序，不去重
func Extract(description string) []string {
	for _, prefix := range mealPrefixes {
		description = strings.TrimSpace(strings.ReplaceAll(description, prefix, ""))
	}

	var foods []string
	for _, segment := range strings.Split(description, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if food := clean(segment); food != "" {
			foods = append(foods, food)
		}
	}
	return foods
}

func clean(food string) string {
	for _, p := range quantityPatterns {
		food = strings.TrimSpace(p.ReplaceAllString(food, ""))
	}
	for _, term := range fillerTerms {
		food = strings.TrimSpace(strings.ReplaceAll(food, term, ""))
	}
	return strings.TrimSpace(multipleSpaces.ReplaceAllString(food, " "))
}
