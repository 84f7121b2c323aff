package sheetwriter

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"

	"github.com/Devansh171021/swpl/internal/domain/transaction"
	"github.com/Devansh171021/swpl/internal/platform/logging"
	"github.com/Devansh171021/swpl/internal/platform/resilience"
	"github.com/Devansh171021/swpl/internal/usecase"
)

const (
	// ModeQuery sends one disposition as GET query parameters, matching
	// Apps-Script web apps that read e.parameter. ModeJSON posts a JSON body.
	ModeQuery = "query"
	ModeJSON  = "json"
)

var errWriterTransient = crerr.New("sheet writer transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Mode           string
	SheetID        string
	Timeout        time.Duration
	Workers        int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client pushes dispositions back to the spreadsheet endpoint. Calls are
// best-effort: the auction flow never waits on, or fails because of, a
// write-back.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	mode           string
	sheetID        string
	workers        int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

type writeResponse struct {
	Success  bool   `json:"success"`
	RowIndex int    `json:"rowIndex"`
	Error    string `json:"error"`
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
		httpClient.Timeout = 10 * time.Second
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode != ModeQuery {
		mode = ModeJSON
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		mode:           mode,
		sheetID:        strings.TrimSpace(cfg.SheetID),
		workers:        workers,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Configured reports whether a write-back endpoint is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Notify writes one disposition to the endpoint. rowIndex <= 0 means
// append; a positive rowIndex targets an existing row (resync).
func (c *Client) Notify(ctx context.Context, record transaction.Record, rowIndex int) error {
	if !c.Configured() {
		return nil
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sheet writer circuit breaker rejected write", "state", c.breaker.State())
			return fmt.Errorf("sheet writer is temporarily unavailable")
		}
	}

	err := c.write(ctx, record, rowIndex)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errWriterTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return err
}

// SyncAll replays the whole history through a bounded worker pool. Row
// indexes are positional: record i targets sheet row i+1.
func (c *Client) SyncAll(ctx context.Context, records []transaction.Record) (usecase.ResyncResult, error) {
	result := usecase.ResyncResult{Total: len(records)}
	if !c.Configured() {
		return result, fmt.Errorf("sheet writer url is not configured")
	}
	if len(records) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return result, fmt.Errorf("create writer pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	for i, record := range records {
		i, record := i, record
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			writeErr := c.Notify(ctx, record, i+1)
			mu.Lock()
			if writeErr != nil {
				result.Failed++
			} else {
				result.Success++
			}
			mu.Unlock()
			if writeErr != nil {
				c.logger.WarnContext(ctx, "resync row failed", "row_index", i+1, "player", record.PlayerName, "error", writeErr)
			}
		}); err != nil {
			workers.Done()
			mu.Lock()
			result.Failed++
			mu.Unlock()
		}
	}
	workers.Wait()

	if result.Failed > 0 {
		return result, fmt.Errorf("resync wrote %d/%d rows", result.Success, result.Total)
	}
	return result, nil
}

func (c *Client) write(ctx context.Context, record transaction.Record, rowIndex int) error {
	var (
		req *http.Request
		err error
	)
	if c.mode == ModeQuery {
		req, err = c.buildQueryRequest(ctx, record, rowIndex)
	} else {
		req, err = c.buildJSONRequest(ctx, record, rowIndex)
	}
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send write-back: %v", errWriterTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read write-back response: %v", errWriterTransient, err)
	}
	if resp.StatusCode/100 != 2 {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: endpoint status=%d body=%s", errWriterTransient, resp.StatusCode, abbreviateBody(raw))
		}
		return fmt.Errorf("endpoint status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	var parsed writeResponse
	if err := sonic.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode write-back response: %w", err)
	}
	if !parsed.Success {
		return fmt.Errorf("%w: endpoint rejected row: %s", errWriterTransient, firstNonEmpty(parsed.Error, "unknown error"))
	}
	return nil
}

func (c *Client) buildQueryRequest(ctx context.Context, record transaction.Record, rowIndex int) (*http.Request, error) {
	values := url.Values{}
	if c.sheetID != "" {
		values.Set("sheetId", c.sheetID)
	}
	if rowIndex > 0 {
		values.Set("rowIndex", strconv.Itoa(rowIndex))
	}
	values.Set("playerName", record.PlayerName)
	values.Set("status", record.Status)
	if record.Team != "" {
		values.Set("team", record.Team)
	}
	if record.Amount > 0 {
		values.Set("amount", strconv.FormatInt(record.Amount, 10))
	}
	values.Set("round", strconv.Itoa(record.Round))
	values.Set("timestamp", record.Timestamp.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build write-back request: %w", err)
	}
	return req, nil
}

func (c *Client) buildJSONRequest(ctx context.Context, record transaction.Record, rowIndex int) (*http.Request, error) {
	payload := map[string]any{
		"playerName": record.PlayerName,
		"status":     record.Status,
		"round":      record.Round,
		"timestamp":  record.Timestamp.UTC().Format(time.RFC3339),
	}
	if c.sheetID != "" {
		payload["sheetId"] = c.sheetID
	}
	if rowIndex > 0 {
		payload["rowIndex"] = rowIndex
	}
	if record.Team != "" {
		payload["team"] = record.Team
	}
	if record.Amount > 0 {
		payload["amount"] = record.Amount
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("marshal write-back payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(buf.String()))
	if err != nil {
		return nil, fmt.Errorf("build write-back request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
