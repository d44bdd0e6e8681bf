// Package catalogapi talks to the third-party parts-catalog HTTP API. The
// upstream exposes article info, brand suggestions and search tips; it
// authenticates every request with login/password query parameters.
package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ImageCDN is where the upstream publishes article photos.
const ImageCDN = "https://pubimg.nodacdn.net/images/"

// Config carries the upstream endpoint and credentials.
type Config struct {
	Host     string
	Login    string
	Password string
}

// Client is a thin wrapper over the upstream catalog API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a Client. A nil httpClient falls back to a client with a sane
// timeout.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// ArticleImage is one photo attached to an article.
type ArticleImage struct {
	Name string `json:"name"`
}

// CrossItem is one upstream cross-reference entry.
type CrossItem struct {
	Brand     string `json:"brand"`
	Number    string `json:"number"`
	NumberFix string `json:"numberFix"`
	CrossType int    `json:"crossType"`
	Reliable  bool   `json:"reliable"`
}

// ArticleInfoResponse mirrors the upstream article info payload.
type ArticleInfoResponse struct {
	Brand      string            `json:"brand"`
	Number     string            `json:"number"`
	NumberFix  string            `json:"numberFix"`
	Descr      string            `json:"descr"`
	Properties map[string]string `json:"properties"`
	Images     []ArticleImage    `json:"images"`
	Crosses    []CrossItem       `json:"crosses"`
}

// ImageURLs maps the image names onto the public CDN.
func (r ArticleInfoResponse) ImageURLs() []string {
	urls := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		if img.Name == "" {
			continue
		}
		urls = append(urls, ImageCDN+img.Name)
	}
	return urls
}

// BrandSuggestion is one brand candidate for an article number.
type BrandSuggestion struct {
	Brand         string `json:"brand"`
	Number        string `json:"number"`
	NumberFix     string `json:"numberFix"`
	Description   string `json:"description"`
	AvailableInfo bool   `json:"availiability,omitempty"`
}

// Tip is one typeahead search suggestion.
type Tip struct {
	Brand       string `json:"brand"`
	Number      string `json:"number"`
	Description string `json:"description"`
}

// ArticleInfo fetches properties, images and cross references for one
// brand+number. An upstream 404 yields a zero-valued response, not an error.
func (c *Client) ArticleInfo(ctx context.Context, brand, number string) (ArticleInfoResponse, error) {
	var out ArticleInfoResponse
	params := url.Values{
		"brand":  {brand},
		"number": {number},
		"format": {"bnphic"},
		"locale": {"ru_RU"},
	}
	err := c.get(ctx, "/search/articles/info", params, &out)
	return out, err
}

// SearchBrands lists brands that produce a part with the given number.
func (c *Client) SearchBrands(ctx context.Context, number string) ([]BrandSuggestion, error) {
	var out []BrandSuggestion
	err := c.get(ctx, "/search/brands", url.Values{"number": {number}}, &out)
	return out, err
}

// SearchTips returns typeahead suggestions for a partial article number.
func (c *Client) SearchTips(ctx context.Context, query string) ([]Tip, error) {
	var out []Tip
	err := c.get(ctx, "/search/tips", url.Values{"number": {query}}, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("userlogin", c.cfg.Login)
	params.Set("userpsw", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Host+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog api: %w", err)
	}
	defer resp.Body.Close()

	// The upstream reports "article unknown" as 404; callers treat that as an
	// empty result rather than a failure.
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog api: %s returned %d: %s", path, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
