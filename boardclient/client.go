// Package boardclient is the client side of the board: an HTTP API client,
// a reducer-driven Store holding the board snapshot, and pure selectors.
package boardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"businessboard/backend/models"
)

// APIError is a non-2xx response from the board API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("board api: status %d", e.Status)
	}
	return e.Message
}

// FieldErrors flattens Fields in field order for display.
func (e *APIError) FieldErrors() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		out = append(out, e.Fields[k]...)
	}
	return out
}

type Client struct {
	base string
	http *http.Client
}

// NewClient targets baseURL, e.g. http://localhost:8080/api. A nil hc uses a
// client with a 10s timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) Board(ctx context.Context) (models.Board, error) {
	var b models.Board
	err := c.do(ctx, http.MethodGet, "/board", nil, &b)
	return b, err
}

func (c *Client) CreateBusiness(ctx context.Context, in models.BusinessInput) (models.Business, error) {
	var b models.Business
	err := c.do(ctx, http.MethodPost, "/businesses", in, &b)
	return b, err
}

func (c *Client) UpdateBusiness(ctx context.Context, id int64, in models.BusinessInput) (models.Business, error) {
	var b models.Business
	err := c.do(ctx, http.MethodPut, "/businesses/"+strconv.FormatInt(id, 10), in, &b)
	return b, err
}

func (c *Client) DeleteBusiness(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/businesses/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) CreateState(ctx context.Context, name string) (models.State, error) {
	var res models.StateResponse
	err := c.do(ctx, http.MethodPost, "/states", models.StateRequest{Name: name}, &res)
	return res.State, err
}

func (c *Client) RenameState(ctx context.Context, id int64, name string) (models.StateResponse, error) {
	var res models.StateResponse
	err := c.do(ctx, http.MethodPut, "/states/"+strconv.FormatInt(id, 10), models.StateRequest{Name: name}, &res)
	return res, err
}

func (c *Client) DeleteState(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/states/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/users", req, &u)
	return u, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	e := &APIError{Status: status}
	if json.Unmarshal(data, &body) == nil {
		e.Message, e.Fields = body.Message, body.Errors
		if e.Message == "" {
			e.Message = body.Error
		}
	}
	return e
}
