package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/dataset"
)

// Client Hugging Face datasets-server 客户端
type Client struct {
	baseURL string
	name    string
	config  string
	split   string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient 创建一个新的 datasets-server 客户端，limiter 可以为 nil
func NewClient(cfg config.DatasetConfig, limiter *rate.Limiter) *Client {
	t := time.Duration(cfg.Timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		name:    cfg.Name,
		config:  cfg.Config,
		split:   cfg.Split,
		token:   cfg.Token,
		client:  &http.Client{Timeout: t},
		limiter: limiter,
	}
}

// Ensure Client implements dataset.Source
var _ dataset.Source = (*Client)(nil)

// RowsResponse /rows 接口响应
type RowsResponse struct {
	Rows []struct {
		RowIdx int         `json:"row_idx"`
		Row    dataset.Row `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Load implements dataset.Source，从第 0 行开始读取
func (c *Client) Load(ctx context.Context, limit int) ([]dataset.Row, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("limiter wait error: %w", err)
		}
	}

	u, err := url.Parse(c.baseURL + "/rows")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("dataset", c.name)
	q.Set("config", c.config)
	q.Set("split", c.split)
	q.Set("offset", "0")
	q.Set("length", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("datasets-server error (status %d): %s", res.StatusCode, string(body))
	}

	var rowsResp RowsResponse
	if err := json.NewDecoder(res.Body).Decode(&rowsResp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	rows := make([]dataset.Row, 0, len(rowsResp.Rows))
	for _, r := range rowsResp.Rows {
		rows = append(rows, r.Row)
		if len(rows) >= limit {
			break
		}
	}
	return rows, nil
}
