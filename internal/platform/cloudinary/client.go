// Package cloudinary is a small client for the Cloudinary Admin and Search
// APIs: folder listing, paginated resource search, resource details with
// embedded metadata, and deletion.
//
// Requests are rate limited and pass through a circuit breaker. Nothing is
// retried here; a failed call is reported to the caller, and an import run is
// simply re-run.
package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Randallflagg19/travel/internal/logging"
	"github.com/Randallflagg19/travel/internal/metrics"
)

// Breaker groups. Each group trips on its own, so failing metadata fetches
// never block listing.
const (
	groupListing  = "listing"
	groupMetadata = "metadata"
	groupDelete   = "delete"
)

var breakerGroups = []string{groupListing, groupMetadata, groupDelete}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	RPS       int
	Timeout   time.Duration
}

type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	breakers   map[string]*gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RPS <= 0 {
		cfg.RPS = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker[[]byte], len(breakerGroups))
	for _, g := range breakerGroups {
		name := "cloudinary_" + g
		metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
		breakers[g] = newBreaker(name)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.RPS)), 1),
		breakers:   breakers,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors are answers and cancellations are the caller's doing;
		// neither says anything about the provider.
		IsSuccessful: func(err error) bool {
			var cancelled *callerCancelledError
			if err == nil || errors.As(err, &cancelled) {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && !apiErr.Temporary()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// CloudName is used to build delivery URLs.
func (c *Client) CloudName() string {
	return c.cfg.CloudName
}

// ListResources returns one page of resources of the given kind whose asset
// folder is exactly folder.
func (c *Client) ListResources(ctx context.Context, folder string, kind ResourceKind, maxResults int, cursor string) (*ResourcePage, error) {
	body := searchRequest{
		Expression: fmt.Sprintf(`asset_folder="%s" AND resource_type:%s`, escapeQuoted(folder), kind),
		MaxResults: maxResults,
		NextCursor: cursor,
		SortBy:     []map[string]string{{"public_id": "asc"}},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var page ResourcePage
	if err := c.do(ctx, groupListing, "search", http.MethodPost, c.endpoint("resources", "search"), raw, &page); err != nil {
		return nil, fmt.Errorf("list %s resources in %q: %w", kind, folder, err)
	}
	return &page, nil
}

// ListSubfolders returns the full paths of the direct children of folder,
// following the endpoint's own continuation tokens.
func (c *Client) ListSubfolders(ctx context.Context, folder string) ([]string, error) {
	segments := []string{"folders"}
	if f := strings.Trim(folder, "/"); f != "" {
		segments = append(segments, strings.Split(f, "/")...)
	}
	base := c.endpoint(segments...)

	var out []string
	cursor := ""
	for {
		q := url.Values{"max_results": {"500"}}
		if cursor != "" {
			q.Set("next_cursor", cursor)
		}

		var page folderPage
		if err := c.do(ctx, groupListing, "folders", http.MethodGet, base+"?"+q.Encode(), nil, &page); err != nil {
			return nil, fmt.Errorf("list subfolders of %q: %w", folder, err)
		}
		for _, f := range page.Folders {
			out = append(out, f.Path)
		}
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// GetResource fetches a single uploaded resource with its embedded metadata.
func (c *Client) GetResource(ctx context.Context, publicID string, kind ResourceKind) (*ResourceDetails, error) {
	segments := append([]string{"resources", string(kind), "upload"}, strings.Split(publicID, "/")...)
	u := c.endpoint(segments...) + "?media_metadata=true"

	var details ResourceDetails
	if err := c.do(ctx, groupMetadata, "resource", http.MethodGet, u, nil, &details); err != nil {
		return nil, fmt.Errorf("get %s %q: %w", kind, publicID, err)
	}
	return &details, nil
}

// DeleteResource removes an uploaded resource. A resource that is already gone
// is not an error.
func (c *Client) DeleteResource(ctx context.Context, publicID string, kind ResourceKind) error {
	q := url.Values{"public_ids[]": {publicID}}
	u := c.endpoint("resources", string(kind), "upload") + "?" + q.Encode()

	var res struct {
		Deleted map[string]string `json:"deleted"`
	}
	if err := c.do(ctx, groupDelete, "delete", http.MethodDelete, u, nil, &res); err != nil {
		return fmt.Errorf("delete %s %q: %w", kind, publicID, err)
	}
	return nil
}

func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.cfg.BaseURL)
	b.WriteString("/v1_1/")
	b.WriteString(url.PathEscape(c.cfg.CloudName))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, group, operation, method, u string, body []byte, target any) error {
	start := time.Now()
	raw, err := c.breakers[group].Execute(func() ([]byte, error) {
		raw, err := c.send(ctx, method, u, body)
		if err != nil && ctx.Err() != nil {
			return nil, &callerCancelledError{err: err}
		}
		return raw, err
	})
	metrics.DAMRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.DAMRequests.WithLabelValues(operation, outcome).Inc()
		return err
	}
	metrics.DAMRequests.WithLabelValues(operation, "ok").Inc()

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}
	return data, nil
}

// callerCancelledError marks a failure caused by the caller's context rather
// than by the provider. The http client's own timeout is not one.
type callerCancelledError struct {
	err error
}

func (e *callerCancelledError) Error() string { return e.err.Error() }

func (e *callerCancelledError) Unwrap() error { return e.err }

func errorMessage(body []byte, fallback string) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return fallback
}

func escapeQuoted(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
