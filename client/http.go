package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// HTTPClient implements API over HTTP.
type HTTPClient struct {
	BaseURL string
	// Token is the bearer token attached to every request when non-empty.
	Token string
	// Client defaults to a client with a 10s timeout.
	Client *http.Client
}

// NewHTTPClient creates an API client for the given base URL.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HTTPClient) ListPosts(ctx context.Context, q Query) (*PostsResult, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if len(q.Tags) > 0 {
		values.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.AuthorID != 0 {
		values.Set("authorId", strconv.FormatUint(uint64(q.AuthorID), 10))
	}

	path := "/api/posts"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result PostsResult
	if err := h.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (h *HTTPClient) GetPost(ctx context.Context, id uint) (*Post, error) {
	var resp struct {
		Post *Post `json:"post"`
	}
	if err := h.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Post, nil
}

func (h *HTTPClient) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	var resp struct {
		Post *Post `json:"post"`
	}
	if err := h.do(ctx, http.MethodPost, "/api/posts", input, &resp); err != nil {
		return nil, err
	}
	return resp.Post, nil
}

func (h *HTTPClient) UpdatePost(ctx context.Context, id uint, patch PostPatch) (*Post, error) {
	var resp struct {
		Post *Post `json:"post"`
	}
	if err := h.do(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), patch, &resp); err != nil {
		return nil, err
	}
	return resp.Post, nil
}

func (h *HTTPClient) DeletePost(ctx context.Context, id uint) error {
	return h.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}

func (h *HTTPClient) ToggleLike(ctx context.Context, id uint) (*LikeResult, error) {
	var result LikeResult
	if err := h.do(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (h *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	httpClient := h.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil {
			apiErr.Message = payload.Error
			apiErr.Code = payload.Code
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
