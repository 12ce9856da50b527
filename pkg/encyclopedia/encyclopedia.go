package encyclopedia

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/meal_annotator/pkg/logger"
)

// SummarySentences 摘要句数
const SummarySentences = 2

// Encyclopedia 定义通用的百科检索接口
type Encyclopedia interface {
	// Search 返回按相关度排序的词条标题
	Search(ctx context.Context, term string, limit int) ([]string, error)
	// Summary 返回词条前 sentences 句摘要，歧义词条返回 *DisambiguationError
	Summary(ctx context.Context, title string, sentences int) (string, error)
}

// DisambiguationError 词条指向多个不同主题
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("%q may refer to: %s", e.Title, strings.Join(e.Options, ", "))
}

// Macronutrient 宏量营养素类别及其检索词
type Macronutrient struct {
	Name       string
	SearchTerm string
}

// Macronutrients 固定的四个类别，与具体餐食无关
var Macronutrients = []Macronutrient{
	{Name: "Carbohydrates", SearchTerm: "carbohydrate nutrition"},
	{Name: "Protein", SearchTerm: "protein nutrition"},
	{Name: "Fat", SearchTerm: "dietary fat"},
	{Name: "Energy", SearchTerm: "food energy"},
}

// Explain 检索 term 并返回 "<term>: <摘要>"，失败时返回对应的占位文本，从不返回错误
func Explain(ctx context.Context, enc Encyclopedia, term string) string {
	results, err := enc.Search(ctx, term, 1)
	if err != nil {
		return unavailable(term, err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("%s: No information available.", term)
	}

	summary, err := enc.Summary(ctx, results[0], SummarySentences)
	if err == nil {
		return fmt.Sprintf("%s: %s", term, summary)
	}

	var dis *DisambiguationError
	if !errors.As(err, &dis) {
		return unavailable(term, err)
	}

	// 歧义时用第一个候选主题重试一次
	logger.Log.Debugf("词条存在歧义 [%s]: %v", term, dis)
	if len(dis.Options) > 0 {
		summary, err = enc.Summary(ctx, dis.Options[0], SummarySentences)
		if err == nil {
			return fmt.Sprintf("%s: %s", term, summary)
		}
	}
	return fmt.Sprintf("%s: Multiple topics found, information unclear.", term)
}

// MacronutrientInfo 依次获取四个宏量营养素的说明，key 为类别名
func MacronutrientInfo(ctx context.Context, enc Encyclopedia) map[string]string {
	info := make(map[string]string, len(Macronutrients))
	for _, m := range Macronutrients {
		info[m.Name] = Explain(ctx, enc, m.SearchTerm)
	}
	return info
}

func unavailable(term string, err error) string {
	logger.Log.Warnf("获取百科信息失败 [%s]: %v", term, err)
	return fmt.Sprintf("%s: Unable to retrieve information (%v).", term, err)
}
