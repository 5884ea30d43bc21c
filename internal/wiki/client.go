package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nao1215/mathglossary/internal/model"
)

// DefaultUserAgent identifies the harvester to the wiki operators.
const DefaultUserAgent = "mathglossary/1.0 (+https://github.com/nao1215/mathglossary)"

// maxResponseSize limits how much of a single API response is read.
const maxResponseSize = 32 * 1024 * 1024

// Client talks to a MediaWiki Action API endpoint.
// It implements the repository interface used by the crawler.
type Client struct {
	// endpoint is the api.php URL.
	endpoint *url.URL

	// httpClient performs the requests.
	httpClient *http.Client

	// userAgent is sent with every request, as required by most wikis.
	userAgent string

	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client. Use NewHTTPClient to build one with
// a proxy, cookie or custom headers.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the given api.php URL.
func NewClient(apiURL string, opts ...ClientOption) (*Client, error) {
	endpoint, err := url.Parse(apiURL)
	if err != nil || !endpoint.IsAbs() || (endpoint.Scheme != "http" && endpoint.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, apiURL)
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// apiResponse is the subset of an Action API response the client reads.
type apiResponse struct {
	Continue map[string]string `json:"continue"`
	Error    *apiError         `json:"error"`
	Query    *struct {
		Pages           []apiPage   `json:"pages"`
		CategoryMembers []apiMember `json:"categorymembers"`
	} `json:"query"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type apiPage struct {
	Title      string      `json:"title"`
	Missing    bool        `json:"missing"`
	Invalid    bool        `json:"invalid"`
	Redirect   bool        `json:"redirect"`
	Extract    string      `json:"extract"`
	Categories []apiMember `json:"categories"`
}

type apiMember struct {
	Title string `json:"title"`
}

// CategoryMembers lists the members of category of the given kind, in the
// order the wiki returns them. limit is the page size of each request;
// all pages are fetched. Subcategory titles are returned without the
// "Category:" prefix.
func (c *Client) CategoryMembers(ctx context.Context, category string, limit int, kind model.MemberKind) ([]string, error) {
	params := url.Values{
		"action":  {"query"},
		"list":    {"categorymembers"},
		"cmtitle": {model.CategoryNamespace + category},
		"cmtype":  {string(kind)},
		"cmlimit": {strconv.Itoa(limit)},
	}

	var titles []string
	err := c.queryAll(ctx, params, func(resp *apiResponse) error {
		if resp.Query == nil {
			return nil
		}
		for _, m := range resp.Query.CategoryMembers {
			if kind == model.MemberSubcategory {
				titles = append(titles, model.TrimCategoryNamespace(m.Title))
			} else {
				titles = append(titles, m.Title)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %q: %w", category, err)
	}

	return titles, nil
}

// Page fetches a page with its categories and plain-text sections.
// Redirects are not followed: a redirect page yields ErrRedirect.
// The returned page carries the canonical title, which may differ from title.
func (c *Client) Page(ctx context.Context, title string) (*model.Page, error) {
	params := url.Values{
		"action":          {"query"},
		"titles":          {title},
		"prop":            {"info|categories|extracts"},
		"cllimit":         {"max"},
		"explaintext":     {"1"},
		"exsectionformat": {"wiki"},
	}

	var (
		page    *model.Page
		extract string
	)
	err := c.queryAll(ctx, params, func(resp *apiResponse) error {
		p, err := singlePage(resp, title)
		if err != nil {
			return err
		}
		if page == nil {
			page = &model.Page{Title: p.Title}
		}
		if p.Extract != "" {
			extract = p.Extract
		}
		for _, cat := range p.Categories {
			page.Categories = append(page.Categories, model.TrimCategoryNamespace(cat.Title))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	page.Sections = splitSections(extract)
	return page, nil
}

// ParentCategories returns the categories that category itself belongs to.
// A category without a description page has no parents.
func (c *Client) ParentCategories(ctx context.Context, category string) ([]string, error) {
	params := url.Values{
		"action":  {"query"},
		"titles":  {model.CategoryNamespace + category},
		"prop":    {"categories"},
		"cllimit": {"max"},
	}

	var parents []string
	err := c.queryAll(ctx, params, func(resp *apiResponse) error {
		p, err := singlePage(resp, category)
		if err != nil {
			return err
		}
		for _, cat := range p.Categories {
			parents = append(parents, model.TrimCategoryNamespace(cat.Title))
		}
		return nil
	})
	if err != nil {
		if isMissing(err) {
			c.logger.Debug("category has no page", "category", category)
			return nil, nil
		}
		return nil, err
	}

	return parents, nil
}

// singlePage extracts the only page of a titles= query and maps its flags
// to errors.
func singlePage(resp *apiResponse, title string) (*apiPage, error) {
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingPage, title)
	}
	p := &resp.Query.Pages[0]
	switch {
	case p.Invalid:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTitle, title)
	case p.Missing:
		return nil, fmt.Errorf("%w: %s", ErrMissingPage, title)
	case p.Redirect:
		return nil, fmt.Errorf("%w: %s", ErrRedirect, title)
	}
	return p, nil
}

// queryAll runs a query and follows continuation until the result is complete.
func (c *Client) queryAll(ctx context.Context, params url.Values, handle func(*apiResponse) error) error {
	cont := map[string]string{}
	for {
		req := url.Values{}
		for k, v := range params {
			req[k] = v
		}
		for k, v := range cont {
			req.Set(k, v)
		}

		resp, err := c.get(ctx, req)
		if err != nil {
			return err
		}
		if err := handle(resp); err != nil {
			return err
		}
		if len(resp.Continue) == 0 {
			return nil
		}
		cont = resp.Continue
	}
}

// get performs a single API request.
func (c *Client) get(ctx context.Context, params url.Values) (*apiResponse, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	u := *c.endpoint
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("wiki request", "url", u.String())

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, httpResp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrAPI, resp.Error.Code, resp.Error.Info)
	}

	return &resp, nil
}
