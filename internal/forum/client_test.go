package forum

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	if _, err := parseBaseURL(""); err == nil {
		t.Fatalf("empty base url should fail")
	}

	u, err := parseBaseURL("example.com:1234")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:1234" {
		t.Fatalf("url = %q, want http scheme added", u.String())
	}

	u, err = parseBaseURL("https://example.com/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchPageEncodesQuery(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		title := "t"
		_ = json.NewEncoder(w).Encode(PageResponse{Data: &PageData{
			Page:   &PageInfo{CurrentPage: 2, TotalPages: 9, HasMore: 1},
			Thread: &ThreadInfo{ID: 77, Title: &title, Author: &UserInfo{ID: 9}},
			Forum:  &ForumBlock{ID: 5},
			Anti:   &AntiBlock{TBS: "tok"},
			Posts:  []PostInfo{{ID: 100, Floor: 1}},
		}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	resp, err := c.FetchPage(ctx, PageQuery{
		ThreadID:      77,
		Page:          2,
		PostID:        100,
		ForumID:       5,
		SeeAuthorOnly: true,
		Sort:          SortDesc,
		Backward:      true,
		SourceTag:     SourceMention,
		Mark:          true,
		LastPostID:    99,
	})
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if resp.Data.Page.CurrentPage != 2 || resp.Data.Anti.TBS != "tok" {
		t.Fatalf("payload = %#v", resp.Data)
	}
	if gotQuery.Get("tid") != "77" ||
		gotQuery.Get("page") != "2" ||
		gotQuery.Get("pid") != "100" ||
		gotQuery.Get("fid") != "5" ||
		gotQuery.Get("see_author") != "1" ||
		gotQuery.Get("sort") != "1" ||
		gotQuery.Get("back") != "1" ||
		gotQuery.Get("st_type") != "mention" ||
		gotQuery.Get("mark") != "1" ||
		gotQuery.Get("last_pid") != "99" {
		t.Fatalf("query = %v, want params encoded", gotQuery)
	}
	if gotUserAgent != defaultUserAgent {
		t.Fatalf("user agent = %q", gotUserAgent)
	}
}

func TestClient_FetchPageSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PageResponse{ErrorCode: 110, ErrorMsg: "need login"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchPage(context.Background(), PageQuery{ThreadID: 77})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Code != 110 {
		t.Fatalf("code = %d, want 110", apiErr.Code)
	}
}

func TestClient_FetchPageRequiresThreadID(t *testing.T) {
	t.Parallel()
	c, err := NewClient("example.com")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchPage(context.Background(), PageQuery{}); err == nil {
		t.Fatalf("expected error for missing thread id")
	}
}

func TestClient_MutationsPostForms(t *testing.T) {
	t.Parallel()

	forms := map[string]url.Values{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		forms[r.URL.Path] = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(MutationResponse{})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	if err := c.Agree(ctx, AgreeRequest{ThreadID: "77", PostID: "100", HasAgreed: 1, ObjType: ObjTypeThread}); err != nil {
		t.Fatalf("Agree returned error: %v", err)
	}
	if err := c.AddFavorite(ctx, 77, 100); err != nil {
		t.Fatalf("AddFavorite returned error: %v", err)
	}
	if err := c.RemoveFavorite(ctx, 77, 5, "tok"); err != nil {
		t.Fatalf("RemoveFavorite returned error: %v", err)
	}

	agree := forms["/api/agree"]
	if agree.Get("thread_id") != "77" || agree.Get("post_id") != "100" ||
		agree.Get("has_agree") != "1" || agree.Get("obj_type") != "3" {
		t.Fatalf("agree form = %v", agree)
	}
	add := forms["/api/store/add"]
	if add.Get("tid") != "77" || add.Get("pid") != "100" {
		t.Fatalf("add form = %v", add)
	}
	remove := forms["/api/store/remove"]
	if remove.Get("tid") != "77" || remove.Get("fid") != "5" || remove.Get("tbs") != "tok" {
		t.Fatalf("remove form = %v", remove)
	}
}

func TestClient_MutationSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(MutationResponse{ErrorCode: 230, ErrorMsg: "tbs expired"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	err = c.Agree(context.Background(), AgreeRequest{ThreadID: "77", PostID: "100", ObjType: ObjTypePost})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Code != 230 {
		t.Fatalf("code = %d, want 230", apiErr.Code)
	}
}

func TestClient_ServerErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchPage(context.Background(), PageQuery{ThreadID: 77}); err == nil {
		t.Fatalf("expected error on 502")
	}
}
