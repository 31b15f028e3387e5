// Package emisapi is a client for the EMIS REST API.
//
// Authenticate exchanges the configured username and password for a bearer
// token (OAuth2 password grant against /api/token); every later request
// carries it. Collections are paged with PageSize/PageNo and walked with
// internal/paging.
package emisapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/pacific-emis/emisctl/internal/logging"
	"github.com/pacific-emis/emisctl/internal/paging"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// ErrNotAuthenticated is returned by calls made before Authenticate.
var ErrNotAuthenticated = errors.New("not authenticated")

// StatusError is a non-200 response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to one EMIS deployment.
type Client struct {
	baseURL  string
	username string
	password string
	logger   emis.Logger

	httpClient *http.Client
	authed     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the base HTTP client used for the token request and as
// the transport under the bearer token.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInsecureTLS disables certificate verification, for deployments with self-signed certificates.
func WithInsecureTLS() Option {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		c.httpClient = &http.Client{Transport: transport}
	}
}

func WithLogger(l emis.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL (e.g. https://emis.example.org).
func New(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		logger:     logging.NewNullLogger(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate obtains a bearer token with the password grant.
func (c *Client) Authenticate(ctx context.Context) error {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/api/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := conf.PasswordCredentialsToken(ctx, c.username, c.password)
	if err != nil {
		return fmt.Errorf("token request for %s: %w: %w", c.username, emis.ErrAuthenticationFailed, err)
	}
	c.authed = oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	c.logger.Verbose("Authenticated to %s as %s", c.baseURL, c.username)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if c.authed == nil {
		return nil, ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			Method:     method,
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// collection pages through GET {path}?PageSize=&PageNo=.
func collection[T any](c *Client, path string, pageSize int) *paging.Pager[T] {
	if pageSize <= 0 {
		pageSize = emis.DefaultPageSize
	}
	return paging.New(func(ctx context.Context, pageNo int) (paging.Page[T], error) {
		q := url.Values{}
		q.Set("PageSize", strconv.Itoa(pageSize))
		q.Set("PageNo", strconv.Itoa(pageNo))

		var env Envelope[T]
		if err := c.getJSON(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &env); err != nil {
			return paging.Page[T]{}, err
		}
		c.logger.Verbose("%s page %d: %d records (last=%v)", path, pageNo, len(env.ResultSet), env.Last())
		return paging.Page[T]{Items: env.ResultSet, Last: env.Last()}, nil
	})
}
