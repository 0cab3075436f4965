// Package statsbomb fetches match lists and event streams from the StatsBomb
// open-data tree (matches/{competition}/{season}.json, events/{match}.json).
package statsbomb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/pitchmap/internal/domain/model"
	"github.com/okian/pitchmap/pkg/logger"
	"github.com/okian/pitchmap/pkg/metrics"
)

// Client defaults.
const (
	DefaultBaseURL = "https://raw.githubusercontent.com/statsbomb/open-data/master/data"

	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 64 << 20
	userAgent          = "pitchmap/1.0"
)

// Client talks to the open-data host. Requests are sequential and paced by a
// token bucket with burst 1.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBody    int64
	logger     logger.Logger
	metrics    *metrics.Manager
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at another mirror of the data tree.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRequestsPerSecond paces requests; rps <= 0 disables pacing.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxBodySize caps how much of a response is read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New constructs a Client. The global logger must be initialized unless
// WithLogger is given.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout, Transport: newTransport()},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		maxBody:    defaultMaxBodySize,
		metrics:    metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("statsbomb")
	}
	return c
}

// newTransport serves http(s) as usual and file:// URLs from the local
// filesystem, so a copy of the data tree on disk works as a base URL.
func newTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	return t
}

// FetchTeamMatches returns the matches of a competition/season in which team
// played home or away, in provider order.
func (c *Client) FetchTeamMatches(ctx context.Context, team string, competitionID, seasonID int) ([]model.Match, error) {
	path := fmt.Sprintf("/matches/%d/%d.json", competitionID, seasonID)
	body, err := c.get(ctx, "matches", path)
	if err != nil {
		return nil, fmt.Errorf("fetch matches competition_id=%d season_id=%d: %w", competitionID, seasonID, err)
	}
	all, err := decodeMatches(body)
	if err != nil {
		return nil, fmt.Errorf("fetch matches competition_id=%d season_id=%d: %w", competitionID, seasonID, err)
	}

	out := make([]model.Match, 0, len(all)/8)
	for _, m := range all {
		if m.CompetitionID == 0 {
			m.CompetitionID = competitionID
		}
		if m.SeasonID == 0 {
			m.SeasonID = seasonID
		}
		if m.Involves(team) {
			out = append(out, m)
		}
	}
	c.logger.Info(ctx, "matches fetched",
		logger.String("team", team),
		logger.Int("season_matches", len(all)),
		logger.Int("team_matches", len(out)))
	c.metrics.RecordMatchesFetched(len(out))
	return out, nil
}

// FetchEvents downloads the event stream of every match and concatenates
// them in match order.
func (c *Client) FetchEvents(ctx context.Context, matches []model.Match) ([]model.Event, error) {
	var out []model.Event
	for i, m := range matches {
		path := fmt.Sprintf("/events/%d.json", m.MatchID)
		body, err := c.get(ctx, "events", path)
		if err != nil {
			return nil, fmt.Errorf("fetch events match_id=%d: %w", m.MatchID, err)
		}
		events, err := decodeEvents(m.MatchID, body)
		if err != nil {
			return nil, fmt.Errorf("fetch events match_id=%d: %w", m.MatchID, err)
		}
		out = append(out, events...)
		c.metrics.RecordEventsFetched(len(events))
		c.logger.Info(ctx, "match events fetched",
			logger.Any("match_id", m.MatchID),
			logger.String("fixture", m.HomeTeam+" vs "+m.AwayTeam),
			logger.Int("events", len(events)),
			logger.String("progress", fmt.Sprintf("%d/%d", i+1, len(matches))))
	}
	return out, nil
}

// FetchTeamEvents returns the team's matches and their concatenated events.
func (c *Client) FetchTeamEvents(ctx context.Context, team string, competitionID, seasonID int) ([]model.Match, []model.Event, error) {
	matches, err := c.FetchTeamMatches(ctx, team, competitionID, seasonID)
	if err != nil {
		return nil, nil, err
	}
	events, err := c.FetchEvents(ctx, matches)
	if err != nil {
		return nil, nil, err
	}
	return matches, events, nil
}

func (c *Client) get(ctx context.Context, resource, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	url := c.baseURL + path
	start := time.Now()
	body, err := c.do(ctx, url)
	c.metrics.RecordRequest(resource, float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		return nil, err
	}
	c.logger.Debug(ctx, "provider request",
		logger.String("url", url),
		logger.Int("bytes", len(body)),
		logger.String("took", time.Since(start).String()))
	return body, nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w %d for %s: %s", ErrUnexpectedStatus, resp.StatusCode, url, strings.TrimSpace(string(preview)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, c.maxBody)
	}
	return body, nil
}
