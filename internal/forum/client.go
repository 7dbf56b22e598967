package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PageFetcher fetches thread-detail pages. Implemented by *Client and by
// test fakes in the session package.
type PageFetcher interface {
	FetchPage(ctx context.Context, q PageQuery) (*PageResponse, error)
}

// Mutator performs user-triggered write calls. Implemented by *Client and
// by test fakes in the social package.
type Mutator interface {
	Agree(ctx context.Context, req AgreeRequest) error
	AddFavorite(ctx context.Context, threadID, markPostID int64) error
	RemoveFavorite(ctx context.Context, threadID, forumID int64, tbs string) error
}

var (
	_ PageFetcher = (*Client)(nil)
	_ Mutator     = (*Client)(nil)
)

// Client talks to the forum HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "tealeaf/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given base URL (host:port or full URL).
func NewClient(base string) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchPage retrieves one page of a thread.
func (c *Client) FetchPage(ctx context.Context, q PageQuery) (*PageResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if q.ThreadID <= 0 {
		return nil, fmt.Errorf("thread id required")
	}
	values := url.Values{}
	values.Set("tid", strconv.FormatInt(q.ThreadID, 10))
	values.Set("page", strconv.Itoa(q.Page))
	if q.PostID > 0 {
		values.Set("pid", strconv.FormatInt(q.PostID, 10))
	}
	if q.ForumID > 0 {
		values.Set("fid", strconv.FormatInt(q.ForumID, 10))
	}
	if q.SeeAuthorOnly {
		values.Set("see_author", "1")
	}
	if q.Sort != SortAsc {
		values.Set("sort", strconv.Itoa(int(q.Sort)))
	}
	if q.Backward {
		values.Set("back", "1")
	}
	if tag := strings.TrimSpace(q.SourceTag); tag != "" {
		values.Set("st_type", tag)
	}
	if q.Mark {
		values.Set("mark", "1")
	}
	if q.LastPostID > 0 {
		values.Set("last_pid", strconv.FormatInt(q.LastPostID, 10))
	}
	rel := &url.URL{Path: "/api/thread/page", RawQuery: values.Encode()}
	var payload PageResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	if payload.ErrorCode != 0 {
		return nil, &APIError{Code: payload.ErrorCode, Msg: payload.ErrorMsg}
	}
	return &payload, nil
}

// Agree toggles the agree state of a thread or post.
func (c *Client) Agree(ctx context.Context, req AgreeRequest) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	form := url.Values{}
	form.Set("thread_id", req.ThreadID)
	form.Set("post_id", req.PostID)
	form.Set("has_agree", strconv.Itoa(req.HasAgreed))
	form.Set("obj_type", strconv.Itoa(req.ObjType))
	return c.postForm(ctx, "/api/agree", form)
}

// AddFavorite bookmarks a thread, anchored at markPostID.
func (c *Client) AddFavorite(ctx context.Context, threadID, markPostID int64) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	form := url.Values{}
	form.Set("tid", strconv.FormatInt(threadID, 10))
	form.Set("pid", strconv.FormatInt(markPostID, 10))
	return c.postForm(ctx, "/api/store/add", form)
}

// RemoveFavorite removes a thread bookmark. tbs is the anti-spam token from
// the most recent page fetch.
func (c *Client) RemoveFavorite(ctx context.Context, threadID, forumID int64, tbs string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	form := url.Values{}
	form.Set("tid", strconv.FormatInt(threadID, 10))
	form.Set("fid", strconv.FormatInt(forumID, 10))
	if tbs != "" {
		form.Set("tbs", tbs)
	}
	return c.postForm(ctx, "/api/store/remove", form)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	var payload MutationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if payload.ErrorCode != 0 {
		return &APIError{Code: payload.ErrorCode, Msg: payload.ErrorMsg}
	}
	return nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", base, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
