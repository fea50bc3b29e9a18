// Package client talks to the quill HTTP API. It is the networked DraftAPI
// used by the editing lifecycle.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/pkg/errors"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. with httptest.Server.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

type draftBody struct {
	Draft *model.Draft `json:"draft"`
}

type draftsBody struct {
	Drafts []model.Draft `json:"drafts"`
}

type postBody struct {
	Post *model.Post `json:"post"`
}

func draftPath(id model.DraftID) string {
	return "/drafts/" + url.PathEscape(string(id))
}

// do sends one request and decodes a 2xx JSON body into out. Transport
// failures are NetworkFailure; error responses keep the server's message.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if in != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}
	if token != "" {
		req.Header.Set(config.HAuthorization, config.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.NetworkFailure(config.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.NetworkFailure(config.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return apperr.FromStatus(resp.StatusCode, eb.Error, eb.Details...)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.NetworkFailure(config.ErrNetwork, errors.Wrap(err, "decoding response"))
	}
	return nil
}

// SaveDraft creates the draft when req has no DraftID and updates it otherwise.
func (c *Client) SaveDraft(ctx context.Context, token string, req model.SaveDraftRequest) (*model.Draft, error) {
	var out draftBody
	if err := c.do(ctx, http.MethodPost, "/drafts", token, req, &out); err != nil {
		return nil, err
	}
	if out.Draft == nil {
		return nil, apperr.NetworkFailure(config.ErrNetwork, errors.New("response without draft"))
	}
	return out.Draft, nil
}

func (c *Client) GetDraft(ctx context.Context, token string, id model.DraftID) (*model.Draft, error) {
	var out draftBody
	if err := c.do(ctx, http.MethodGet, draftPath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Draft, nil
}

func (c *Client) ListDrafts(ctx context.Context, token string, page, limit int) ([]model.Draft, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/drafts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out draftsBody
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Drafts, nil
}

func (c *Client) DeleteDraft(ctx context.Context, token string, id model.DraftID) error {
	return c.do(ctx, http.MethodDelete, draftPath(id), token, nil, nil)
}

func (c *Client) PublishDraft(ctx context.Context, token string, id model.DraftID) (*model.Post, error) {
	var out postBody
	if err := c.do(ctx, http.MethodPost, draftPath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Post, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", model.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
