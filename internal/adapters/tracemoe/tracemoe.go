package tracemoe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/ports"
)

const (
	DefaultBaseURL = "https://api.trace.moe"
	keyHeader      = "x-trace-key"
	maxBodyBytes   = 4 << 20
)

// Client implements ports.RecognitionBackend against the trace.moe search API.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	policy    RetryPolicy
	searchLog ports.SearchLog
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewClient creates a trace.moe client. An empty apiKey sends anonymous
// requests; a nil searchLog disables attempt logging.
func NewClient(baseURL, apiKey string, client *http.Client, policy RetryPolicy, searchLog ports.SearchLog, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		client:    client,
		policy:    policy,
		searchLog: searchLog,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// -- API response types (internal) ------------------------------------------

type searchResponse struct {
	FrameCount int            `json:"frameCount"`
	Error      string         `json:"error"`
	Result     *[]searchResult `json:"result"`
}

type searchResult struct {
	Anilist    anilistRef `json:"anilist"`
	Filename   string     `json:"filename"`
	From       float64    `json:"from"`
	To         float64    `json:"to"`
	Similarity float64    `json:"similarity"`
	Video      string     `json:"video"`
}

// anilistRef accepts both the bare id and the expanded object the API returns
// when anilistInfo is requested.
type anilistRef int

func (a *anilistRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*a = anilistRef(obj.ID)
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*a = anilistRef(id)
	return nil
}

// attempt is the observed result of one submission. status is 0 when no
// response was obtained.
type attempt struct {
	status int
	body   []byte
	err    error
}

// -- RecognitionBackend implementation ---------------------------------------

func (c *Client) Search(ctx context.Context, imageURL string, userID int64, opts domain.SearchOptions) (domain.SearchMatch, error) {
	endpoint := c.searchURL(imageURL, opts)

	var last attempt
	attempts := 0
	for {
		attempts++
		last = c.submit(ctx, endpoint)
		if last.err == nil {
			c.record(ctx, userID, last.status)
		}
		c.logger.Debug("search attempt",
			zap.Int("attempt", attempts),
			zap.Int("status", last.status),
			zap.Error(last.err),
		)

		retry, wait := c.policy.Next(attempts, last.status)
		if !retry {
			break
		}
		if err := c.sleep(ctx, wait); err != nil {
			c.logger.Warn("search retry aborted", zap.Int("attempt", attempts), zap.Error(err))
			break
		}
	}

	return c.classify(last, attempts)
}

func (c *Client) searchURL(imageURL string, opts domain.SearchOptions) string {
	params := url.Values{}
	params.Set("url", imageURL)
	if !opts.NoCrop {
		params.Set("cutBorders", "1")
	}
	return fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
}

func (c *Client) submit(ctx context.Context, endpoint string) attempt {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return attempt{err: err}
	}
	if c.apiKey != "" {
		req.Header.Set(keyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return attempt{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		// The status line arrived, so the attempt still counts as answered.
		c.logger.Warn("failed to read search response body", zap.Int("status", resp.StatusCode), zap.Error(err))
	}
	return attempt{status: resp.StatusCode, body: body}
}

func (c *Client) record(ctx context.Context, userID int64, status int) {
	if c.searchLog == nil {
		return
	}
	if err := c.searchLog.Record(ctx, userID, status); err != nil {
		c.logger.Warn("failed to record search attempt",
			zap.Int64("user_id", userID),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
}

func (c *Client) classify(last attempt, attempts int) (domain.SearchMatch, error) {
	fail := func(kind domain.ErrorKind, message string, cause error) (domain.SearchMatch, error) {
		return domain.SearchMatch{}, &domain.SearchError{
			Kind:     kind,
			Status:   last.status,
			Attempts: attempts,
			Message:  message,
			Cause:    cause,
		}
	}

	switch status := last.status; {
	case last.err != nil:
		return fail(domain.ErrorKindUnavailable, "", fmt.Errorf("tracemoe: request failed: %w", last.err))
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return fail(domain.ErrorKindBusy, "", nil)
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		return fail(domain.ErrorKindRateLimited, "", nil)
	case status >= http.StatusBadRequest:
		c.logger.Error("trace.moe returned an error status",
			zap.Int("status", status),
			zap.String("body", string(last.body)),
		)
		return fail(domain.ErrorKindBadStatus, "", nil)
	}

	var resp searchResponse
	if err := json.Unmarshal(last.body, &resp); err != nil {
		return fail(domain.ErrorKindMalformed, "", fmt.Errorf("tracemoe: failed to parse search response: %w", err))
	}
	if resp.Error != "" {
		return fail(domain.ErrorKindUpstream, resp.Error, nil)
	}
	if resp.Result == nil {
		return fail(domain.ErrorKindMalformed, "", errors.New("tracemoe: response has no result list"))
	}
	results := *resp.Result
	if len(results) == 0 {
		return fail(domain.ErrorKindNoResults, "", nil)
	}
	if err := results[0].validate(); err != nil {
		return fail(domain.ErrorKindMalformed, "", fmt.Errorf("tracemoe: invalid top result: %w", err))
	}

	return toMatch(results[0]), nil
}

// -- Helpers -----------------------------------------------------------------

func (r searchResult) validate() error {
	if r.Filename == "" {
		return errors.New("missing filename")
	}
	if r.Similarity < 0 || r.Similarity > 1 {
		return fmt.Errorf("similarity %v out of range", r.Similarity)
	}
	return nil
}

func toMatch(r searchResult) domain.SearchMatch {
	return domain.SearchMatch{
		AnimeID:      int(r.Anilist),
		Similarity:   r.Similarity,
		Filename:     r.Filename,
		SegmentStart: r.From,
		SegmentEnd:   r.To,
		VideoURL:     r.Video,
	}
}
