package nutritionix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/nutrition"
)

const nutrientsPath = "/v2/natural/nutrients"

// Client Nutritionix 自然语言营养 API 客户端
type Client struct {
	baseURL string
	appID   string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient 创建一个新的 Nutritionix 客户端，limiter 可以为 nil
func NewClient(cfg config.NutritionixConfig, limiter *rate.Limiter) *Client {
	t := time.Duration(cfg.Timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appID:   cfg.AppID,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: t},
		limiter: limiter,
	}
}

// Ensure Client implements nutrition.Provider
var _ nutrition.Provider = (*Client)(nil)

// NutrientsRequest natural/nutrients 请求体
type NutrientsRequest struct {
	Query string `json:"query"`
}

// NutrientsResponse natural/nutrients 响应
type NutrientsResponse struct {
	Foods []Food `json:"foods"`
}

// Food 单个匹配食物，字段可能为 null
type Food struct {
	FoodName           string   `json:"food_name"`
	ServingQty         *float64 `json:"serving_qty"`
	ServingUnit        string   `json:"serving_unit"`
	ServingWeightGrams *float64 `json:"serving_weight_grams"`
	SaturatedFat       *float64 `json:"nf_saturated_fat"`
	Sugars             *float64 `json:"nf_sugars"`
	DietaryFiber       *float64 `json:"nf_dietary_fiber"`
	Protein            *float64 `json:"nf_protein"`
	Potassium          *float64 `json:"nf_potassium"`
	Calcium            *float64 `json:"nf_calcium"`
	Iron               *float64 `json:"nf_iron"`
	VitaminC           *float64 `json:"nf_vitamin_c"`
}

// Fetch implements nutrition.Provider，只取第一个匹配结果
func (c *Client) Fetch(ctx context.Context, food string) (*nutrition.Facts, error) {
	resp, err := c.doNutrients(ctx, NutrientsRequest{Query: food})
	if err != nil {
		return nil, err
	}
	if len(resp.Foods) == 0 {
		return nil, fmt.Errorf("no valid food data returned for %q", food)
	}

	f := resp.Foods[0]
	return &nutrition.Facts{
		FoodName:      f.FoodName,
		ServingQty:    f.ServingQty,
		ServingUnit:   f.ServingUnit,
		ServingWeight: f.ServingWeightGrams,
		SaturatedFat:  f.SaturatedFat,
		Sugars:        f.Sugars,
		Fiber:         f.DietaryFiber,
		Protein:       f.Protein,
		Potassium:     f.Potassium,
		Calcium:       f.Calcium,
		Iron:          f.Iron,
		VitaminC:      f.VitaminC,
	}, nil
}

func (c *Client) doNutrients(ctx context.Context, req NutrientsRequest) (*NutrientsResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("limiter wait error: %w", err)
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+nutrientsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	httpReq.Header.Set("x-app-id", c.appID)
	httpReq.Header.Set("x-app-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("nutritionix api error (status %d): %s", res.StatusCode, string(body))
	}

	var nutrientsResp NutrientsResponse
	if err := json.Unmarshal(body, &nutrientsResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &nutrientsResp, nil
}
