package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
)

// DefaultEndpoint is the AniList mirror hosted by trace.moe, which extends the
// title object with a chinese field.
const DefaultEndpoint = "https://trace.moe/anilist/"

const mediaQuery = `query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    title {
      native
      romaji
      english
      chinese
    }
    isAdult
  }
}`

// Client implements ports.MetadataService with the AniList GraphQL API.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewClient creates a metadata client. If client is nil, http.DefaultClient is used.
func NewClient(endpoint string, client *http.Client, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{endpoint: endpoint, client: client, logger: logger}
}

// -- API types (internal) ---------------------------------------------------

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   mediaData      `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type mediaData struct {
	Media *media `json:"Media"`
}

type media struct {
	ID      int        `json:"id"`
	Title   mediaTitle `json:"title"`
	IsAdult bool       `json:"isAdult"`
}

type mediaTitle struct {
	Native  string `json:"native"`
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Chinese string `json:"chinese"`
}

// -- MetadataService implementation -----------------------------------------

func (c *Client) Fetch(ctx context.Context, animeID int) (domain.MediaInfo, error) {
	payload, err := json.Marshal(graphQLRequest{
		Query:     mediaQuery,
		Variables: map[string]any{"id": animeID},
	})
	if err != nil {
		return domain.MediaInfo{}, fmt.Errorf("anilist: failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.MediaInfo{}, fmt.Errorf("anilist: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.MediaInfo{}, fmt.Errorf("anilist: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.MediaInfo{}, fmt.Errorf("anilist: failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("anilist returned an error status",
			zap.Int("anime_id", animeID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return domain.MediaInfo{}, &domain.MetadataError{Status: resp.StatusCode}
	}

	var gql graphQLResponse
	if err := json.Unmarshal(body, &gql); err != nil {
		return domain.MediaInfo{}, &domain.MetadataError{
			Status: resp.StatusCode,
			Cause:  fmt.Errorf("anilist: failed to parse response: %w", err),
		}
	}
	if len(gql.Errors) > 0 && gql.Data.Media == nil {
		messages := make([]string, 0, len(gql.Errors))
		for _, e := range gql.Errors {
			messages = append(messages, e.Message)
		}
		return domain.MediaInfo{}, &domain.MetadataError{
			Status: resp.StatusCode,
			Cause:  fmt.Errorf("anilist: %s", strings.Join(messages, "; ")),
		}
	}
	if gql.Data.Media == nil {
		return domain.MediaInfo{}, nil
	}

	return toMediaInfo(*gql.Data.Media), nil
}

// -- Helpers -----------------------------------------------------------------

func toMediaInfo(m media) domain.MediaInfo {
	return domain.MediaInfo{
		Titles: domain.Titles{
			Native:  mo.EmptyableToOption(m.Title.Native),
			Romaji:  mo.EmptyableToOption(m.Title.Romaji),
			English: mo.EmptyableToOption(m.Title.English),
			Chinese: mo.EmptyableToOption(m.Title.Chinese),
		},
		IsAdult: m.IsAdult,
	}
}
