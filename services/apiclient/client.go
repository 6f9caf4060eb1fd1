// Package apiclient is a Go client of the Profe Web JSON API.
//
// Transport failures are returned as *core.NetworkError and are never retried.
// A 409 response becomes a *core.DomainError, a 400 a *core.ValidationError and any other
// non-success status a *core.StatusError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
)

const maxErrorBody = 1 << 16

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the API served at baseURL, authenticated with a session token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("apiclient: invalid base URL %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ListCourses(ctx context.Context, ordering ...string) ([]course.Course, error) {
	path := "/api/courses"
	if len(ordering) > 0 {
		path += "?ordering=" + url.QueryEscape(strings.Join(ordering, ","))
	}
	var crss []course.Course
	err := c.do(ctx, http.MethodGet, path, nil, &crss)
	return crss, err
}

func (c *Client) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var crs course.Course
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/courses/%d", id), nil, &crs)
	return crs, err
}

func (c *Client) CreateCourse(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	var crs course.Course
	err := c.do(ctx, http.MethodPost, "/api/courses", nc, &crs)
	return crs, err
}

func (c *Client) UpdateCourse(ctx context.Context, id int, uc course.UpdateCourse) (course.Course, error) {
	var crs course.Course
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/courses/%d", id), uc, &crs)
	return crs, err
}

func (c *Client) DeleteCourse(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/courses/%d", id), nil, nil)
}

func (c *Client) CreateLesson(ctx context.Context, courseID int, nl course.NewLesson) (course.Lesson, error) {
	var lsn course.Lesson
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/courses/%d/lessons", courseID), nl, &lsn)
	return lsn, err
}

func (c *Client) GetLesson(ctx context.Context, id int) (course.Lesson, error) {
	var lsn course.Lesson
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/lessons/%d", id), nil, &lsn)
	return lsn, err
}

func (c *Client) UpdateLesson(ctx context.Context, id int, ul course.UpdateLesson) (course.Lesson, error) {
	var lsn course.Lesson
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/lessons/%d", id), ul, &lsn)
	return lsn, err
}

func (c *Client) DeleteLesson(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/lessons/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "apiclient: encoding request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "apiclient: building request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &core.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &core.NetworkError{Op: op, Err: errors.Wrap(err, "decoding response")}
		}
		return nil
	}
	return responseError(resp)
}

// responseError decodes the API's error body: either {"error": "message"} or {"field": "message", ...}.
func responseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var fields map[string]string
	_ = json.Unmarshal(raw, &fields)
	message, isMessage := fields["error"]
	if isMessage && len(fields) == 1 {
		fields = nil
	}

	switch resp.StatusCode {
	case http.StatusConflict:
		return &core.DomainError{Message: message}
	case http.StatusBadRequest:
		if len(fields) == 0 {
			return &core.ValidationError{Err: errors.New(message)}
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		verr := &core.ValidationError{}
		for _, k := range keys {
			verr.Fields = append(verr.Fields, core.FieldError{Field: k, Error: fields[k]})
		}
		return verr
	default:
		return &core.StatusError{Code: resp.StatusCode, Message: message}
	}
}
