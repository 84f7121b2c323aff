package sheets

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/Devansh171021/swpl/internal/domain/player"
	"github.com/Devansh171021/swpl/internal/domain/team"
	"github.com/Devansh171021/swpl/internal/platform/cache"
	"github.com/Devansh171021/swpl/internal/platform/logging"
	"github.com/Devansh171021/swpl/internal/platform/resilience"
	"github.com/Devansh171021/swpl/internal/usecase"
)

const (
	valuesAPIBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	gvizBaseURL      = "https://docs.google.com/spreadsheets/d"

	rosterCacheKey = "sheets:roster"
	teamsCacheKey  = "sheets:teams"
)

var apiKeyParamRegex = regexp.MustCompile(`key=[^&\s"']+`)
var errSheetsTransient = crerr.New("sheets transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	CSVURL         string
	TeamsCSVURL    string
	APIKey         string
	SheetID        string
	ValuesRange    string
	TeamsRange     string
	GvizIndex      int
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Cache          *cache.Store
}

// Client imports the auction roster from a published spreadsheet. Three
// source shapes are supported: a plain CSV publish URL, the Sheets values
// API, and the gviz JSON export. The first configured source wins.
type Client struct {
	httpClient     *http.Client
	csvURL         string
	teamsCSVURL    string
	apiKey         string
	sheetID        string
	valuesRange    string
	teamsRange     string
	gvizIndex      int
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	cache          *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		csvURL:         strings.TrimSpace(cfg.CSVURL),
		teamsCSVURL:    strings.TrimSpace(cfg.TeamsCSVURL),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		sheetID:        strings.TrimSpace(cfg.SheetID),
		valuesRange:    strings.TrimSpace(cfg.ValuesRange),
		teamsRange:     strings.TrimSpace(cfg.TeamsRange),
		gvizIndex:      maxInt(cfg.GvizIndex, 0),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		cache:          cfg.Cache,
	}
}

// Configured reports whether any roster source is set. An unconfigured
// client is valid; callers fall back to the built-in seed roster.
func (c *Client) Configured() bool {
	return c.csvURL != "" || (c.apiKey != "" && c.sheetID != "" && c.valuesRange != "") || c.sheetID != ""
}

// FetchAll loads the players tab and the optional teams tab concurrently.
// A teams failure is logged and yields nil teams; only the players fetch
// decides the returned error.
func (c *Client) FetchAll(ctx context.Context) ([]player.Player, []team.Team, error) {
	var (
		players    []player.Player
		teams      []team.Team
		playersErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		players, playersErr = c.FetchRoster(ctx)
	})
	wg.Go(func() {
		fetched, err := c.FetchTeams(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "fetch teams tab failed, keeping seed teams", "error", err)
			return
		}
		teams = fetched
	})
	wg.Wait()

	if playersErr != nil {
		return nil, nil, playersErr
	}
	return players, teams, nil
}

// FetchRoster returns all players from the configured source, or nil when
// no source is configured.
func (c *Client) FetchRoster(ctx context.Context) ([]player.Player, error) {
	load := func(ctx context.Context) (any, error) {
		rows, err := c.fetchRosterRows(ctx)
		if err != nil {
			return nil, err
		}
		return mapRowsToPlayers(rows), nil
	}

	if c.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.([]player.Player), nil
	}

	out, err := c.cache.GetOrLoad(ctx, rosterCacheKey, load)
	if err != nil {
		return nil, err
	}

	players, ok := out.([]player.Player)
	if !ok {
		return nil, fmt.Errorf("unexpected roster cache payload type %T", out)
	}
	return players, nil
}

// FetchTeams returns the franchises from the teams tab, or nil when no
// teams source is configured.
func (c *Client) FetchTeams(ctx context.Context) ([]team.Team, error) {
	load := func(ctx context.Context) (any, error) {
		rows, err := c.fetchTeamRows(ctx)
		if err != nil {
			return nil, err
		}
		return mapRowsToTeams(rows), nil
	}

	if c.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.([]team.Team), nil
	}

	out, err := c.cache.GetOrLoad(ctx, teamsCacheKey, load)
	if err != nil {
		return nil, err
	}

	teams, ok := out.([]team.Team)
	if !ok {
		return nil, fmt.Errorf("unexpected teams cache payload type %T", out)
	}
	return teams, nil
}

// InvalidateCache drops any cached roster and teams rows so the next fetch
// hits the source again.
func (c *Client) InvalidateCache(ctx context.Context) {
	if c.cache == nil {
		return
	}
	c.cache.Delete(ctx, rosterCacheKey)
	c.cache.Delete(ctx, teamsCacheKey)
}

func (c *Client) fetchRosterRows(ctx context.Context) ([][]string, error) {
	switch {
	case c.csvURL != "":
		raw, err := c.fetchDocument(ctx, c.csvURL)
		if err != nil {
			return nil, fmt.Errorf("fetch roster csv: %w", err)
		}
		return parseCSVTable(raw)
	case c.apiKey != "" && c.sheetID != "" && c.valuesRange != "":
		raw, err := c.fetchDocument(ctx, c.valuesAPIURL(c.valuesRange))
		if err != nil {
			return nil, fmt.Errorf("fetch roster values: %w", err)
		}
		return parseValuesTable(raw)
	case c.sheetID != "":
		raw, err := c.fetchDocument(ctx, c.gvizURL())
		if err != nil {
			return nil, fmt.Errorf("fetch roster gviz: %w", err)
		}
		return parseGvizTable(raw)
	default:
		return nil, nil
	}
}

func (c *Client) fetchTeamRows(ctx context.Context) ([][]string, error) {
	switch {
	case c.teamsCSVURL != "":
		raw, err := c.fetchDocument(ctx, c.teamsCSVURL)
		if err != nil {
			return nil, fmt.Errorf("fetch teams csv: %w", err)
		}
		return parseCSVTable(raw)
	case c.apiKey != "" && c.sheetID != "" && c.teamsRange != "":
		raw, err := c.fetchDocument(ctx, c.valuesAPIURL(c.teamsRange))
		if err != nil {
			return nil, fmt.Errorf("fetch teams values: %w", err)
		}
		return parseValuesTable(raw)
	default:
		return nil, nil
	}
}

func (c *Client) valuesAPIURL(valuesRange string) string {
	return fmt.Sprintf("%s/%s/values/%s?key=%s",
		valuesAPIBaseURL,
		url.PathEscape(c.sheetID),
		url.PathEscape(valuesRange),
		url.QueryEscape(c.apiKey),
	)
}

func (c *Client) gvizURL() string {
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:json&gid=%d", gvizBaseURL, url.PathEscape(c.sheetID), c.gvizIndex)
}

func (c *Client) fetchDocument(ctx context.Context, fullURL string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sheets circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: spreadsheet source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isSheetsCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errSheetsTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errSheetsTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: source status=%d body=%s", errSheetsTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("source status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("spreadsheet request failed")
	}
	c.logger.WarnContext(ctx, "sheets request failed", "url", redactSourceURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	value = apiKeyParamRegex.ReplaceAllString(value, "key=REDACTED")
	return value
}

func isSheetsCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSheetsTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactSourceURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("key") {
		query.Set("key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
