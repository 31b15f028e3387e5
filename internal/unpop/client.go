// Package unpop reads the UN Population Division data portal API.
package unpop

import (
	"context"
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

// APIError is a non-200 response from the data portal.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GET %s: %d %s: %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// envelope wraps every paged data portal response.
type envelope[T any] struct {
	Data       []T    `json:"data"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
	NextPage   string `json:"nextPage"`
}

// Indicator is one entry of /indicators.
type Indicator struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// Location is one entry of /locations.
type Location struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	ISO3 string `json:"iso3"`
}

// DataPoint is one observation of an indicator.
type DataPoint struct {
	LocationID       int     `json:"locationId"`
	Location         string  `json:"location"`
	IndicatorID      int     `json:"indicatorId"`
	VariantID        int     `json:"variantId"`
	Variant          string  `json:"variant"`
	VariantShortName string  `json:"variantShortName"`
	VariantLabel     string  `json:"variantLabel"`
	TimeLabel        string  `json:"timeLabel"`
	Sex              string  `json:"sex"`
	AgeLabel         string  `json:"ageLabel"`
	Value            float64 `json:"value"`
}

// DataQuery selects indicator values for one location over a year range.
type DataQuery struct {
	Indicator int
	Location  int
	StartYear int
	EndYear   int
}

// Client is a bearer-token client for the data portal.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     emis.Logger
	// MaxPages bounds every paged walk. Zero means unbounded.
	MaxPages int
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the transport placed under the bearer token.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l emis.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client sending token as a bearer token. An empty token sends
// anonymous requests, which the portal accepts for metadata endpoints.
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    emis.UNDataPortalURL,
		httpClient: http.DefaultClient,
		logger:     logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	}
	return c
}

// Indicators lists every indicator.
func (c *Client) Indicators(ctx context.Context) ([]Indicator, error) {
	return pager[Indicator](c, "/indicators", nil).Collect(ctx)
}

// Locations lists every location sorted by id.
func (c *Client) Locations(ctx context.Context) ([]Location, error) {
	return pager[Location](c, "/locations", url.Values{"sort": {"id"}}).Collect(ctx)
}

// Data returns every observation matching q.
func (c *Client) Data(ctx context.Context, q DataQuery) ([]DataPoint, error) {
	path := fmt.Sprintf("/data/indicators/%d/locations/%d/start/%d/end/%d", q.Indicator, q.Location, q.StartYear, q.EndYear)
	return pager[DataPoint](c, path, nil).Collect(ctx)
}

func pager[T any](c *Client, path string, params url.Values) *paging.Pager[T] {
	p := paging.New(func(ctx context.Context, pageNo int) (paging.Page[T], error) {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("pageNumber", strconv.Itoa(pageNo))
		target := c.baseURL + path + "?" + q.Encode()
		c.logger.Verbose("Retrieving from %s", target)

		var env envelope[T]
		if err := c.get(ctx, target, &env); err != nil {
			return paging.Page[T]{}, err
		}
		return paging.Page[T]{Items: env.Data, Last: env.NextPage == ""}, nil
	})
	p.MaxPages = c.MaxPages
	return p
}

func (c *Client) get(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{URL: target, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}
