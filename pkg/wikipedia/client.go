package wikipedia

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

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/encyclopedia"
)

const apiPath = "/w/api.php"

var (
	liSelector     = cascadia.MustCompile("li")
	anchorSelector = cascadia.MustCompile("a")
)

// Client MediaWiki Action API 客户端
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewClient 创建一个新的 Wikipedia 客户端，limiter 可以为 nil
func NewClient(cfg config.WikipediaConfig, limiter *rate.Limiter) *Client {
	t := time.Duration(cfg.Timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: t},
		limiter:   limiter,
	}
}

// Ensure Client implements encyclopedia.Encyclopedia
var _ encyclopedia.Encyclopedia = (*Client)(nil)

// apiError MediaWiki 在 200 响应中返回的错误
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type searchResponse struct {
	Error *apiError `json:"error"`
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type page struct {
	Title     string            `json:"title"`
	Missing   bool              `json:"missing"`
	Invalid   bool              `json:"invalid"`
	Extract   string            `json:"extract"`
	PageProps map[string]string `json:"pageprops"`
}

type extractResponse struct {
	Error *apiError `json:"error"`
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

type parseResponse struct {
	Error *apiError `json:"error"`
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
}

// Search 执行全文检索，返回词条标题
func (c *Client) Search(ctx context.Context, term string, limit int) ([]string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", term)
	q.Set("srlimit", strconv.Itoa(limit))
	q.Set("srprop", "")

	var resp searchResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("wikipedia api error (%s): %s", resp.Error.Code, resp.Error.Info)
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

// Summary 返回词条导言的前 sentences 句纯文本
func (c *Client) Summary(ctx context.Context, title string, sentences int) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts|pageprops")
	q.Set("ppprop", "disambiguation")
	q.Set("explaintext", "1")
	q.Set("exintro", "1")
	q.Set("exsentences", strconv.Itoa(sentences))
	q.Set("redirects", "1")
	q.Set("titles", title)

	var resp extractResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("wikipedia api error (%s): %s", resp.Error.Code, resp.Error.Info)
	}
	if len(resp.Query.Pages) == 0 {
		return "", fmt.Errorf("page id %q does not match any pages", title)
	}

	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid {
		return "", fmt.Errorf("page id %q does not match any pages", title)
	}
	if _, ok := p.PageProps["disambiguation"]; ok {
		options, err := c.disambiguationOptions(ctx, p.Title)
		if err != nil {
			return "", err
		}
		return "", &encyclopedia.DisambiguationError{Title: p.Title, Options: options}
	}

	return strings.TrimSpace(p.Extract), nil
}

// disambiguationOptions 解析消歧义页面，取每个列表项的第一个链接文本
func (c *Client) disambiguationOptions(ctx context.Context, title string) ([]string, error) {
	q := url.Values{}
	q.Set("action", "parse")
	q.Set("page", title)
	q.Set("prop", "text")
	q.Set("redirects", "1")

	var resp parseResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("wikipedia api error (%s): %s", resp.Error.Code, resp.Error.Info)
	}
	return parseOptions(resp.Parse.Text)
}

func parseOptions(fragment string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse disambiguation html failed: %w", err)
	}

	var options []string
	for _, li := range liSelector.MatchAll(doc) {
		if strings.Contains(attr(li, "class"), "tocsection") {
			continue
		}
		a := anchorSelector.MatchFirst(li)
		if a == nil {
			continue
		}
		if text := strings.TrimSpace(textContent(a)); text != "" {
			options = append(options, text)
		}
	}
	return options, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

func (c *Client) get(ctx context.Context, q url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("limiter wait error: %w", err)
		}
	}

	q.Set("format", "json")
	q.Set("formatversion", "2")

	u, err := url.Parse(c.baseURL + apiPath)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("wikipedia api error (status %d): %s", res.StatusCode, string(body))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}
