package telegram

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

	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
)

const DefaultAPIURL = "https://api.telegram.org"

// Client implements ports.Messenger with the Telegram Bot API.
type Client struct {
	apiURL string
	token  string
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a Bot API client. If client is nil, http.DefaultClient is used.
func NewClient(apiURL, token string, client *http.Client, logger *zap.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		client: client,
		logger: logger,
	}
}

// -- API types (internal) ---------------------------------------------------

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

type replyParameters struct {
	MessageID int64 `json:"message_id"`
}

type sendMessageRequest struct {
	domain.OutgoingMessage
	ReplyParameters *replyParameters `json:"reply_parameters,omitempty"`
}

type sendVideoRequest struct {
	domain.OutgoingVideo
	ReplyParameters *replyParameters `json:"reply_parameters,omitempty"`
}

type sendChatActionRequest struct {
	ChatID int64  `json:"chat_id"`
	Action string `json:"action"`
}

type reactionType struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

type setMessageReactionRequest struct {
	ChatID    int64          `json:"chat_id"`
	MessageID int64          `json:"message_id"`
	Reaction  []reactionType `json:"reaction"`
}

type file struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// -- Messenger implementation -----------------------------------------------

func (c *Client) SendMessage(ctx context.Context, msg domain.OutgoingMessage) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		OutgoingMessage: msg,
		ReplyParameters: replyTo(msg.ReplyTo),
	}, nil)
}

func (c *Client) SendVideo(ctx context.Context, video domain.OutgoingVideo) error {
	return c.call(ctx, "sendVideo", sendVideoRequest{
		OutgoingVideo:   video,
		ReplyParameters: replyTo(video.ReplyTo),
	}, nil)
}

func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	return c.call(ctx, "sendChatAction", sendChatActionRequest{ChatID: chatID, Action: action}, nil)
}

func (c *Client) SetReaction(ctx context.Context, chatID, messageID int64, emoji string) error {
	reaction := []reactionType{}
	if emoji != "" {
		reaction = append(reaction, reactionType{Type: "emoji", Emoji: emoji})
	}
	return c.call(ctx, "setMessageReaction", setMessageReactionRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Reaction:  reaction,
	}, nil)
}

// -- Bot management ----------------------------------------------------------

// SetWebhook points the bot's updates at webhookURL.
func (c *Client) SetWebhook(ctx context.Context, webhookURL string) error {
	params := url.Values{}
	params.Set("url", webhookURL)
	params.Set("max_connections", "100")
	return c.call(ctx, "setWebhook?"+params.Encode(), nil, nil)
}

// GetMe returns the identity of the bot account.
func (c *Client) GetMe(ctx context.Context) (domain.BotIdentity, error) {
	var me domain.BotIdentity
	if err := c.call(ctx, "getMe", nil, &me); err != nil {
		return domain.BotIdentity{}, err
	}
	return me, nil
}

// FileURL resolves a file id into a downloadable URL. It returns an empty
// string when Telegram reports no path for the file.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	var f file
	if err := c.call(ctx, "getFile?file_id="+url.QueryEscape(fileID), nil, &f); err != nil {
		return "", err
	}
	if f.FilePath == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.apiURL, c.token, f.FilePath), nil
}

// -- HTTP helpers ------------------------------------------------------------

// call invokes a Bot API method. A nil payload issues a GET.
func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
	name, _, _ := strings.Cut(method, "?")

	httpMethod := http.MethodGet
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("telegram: failed to encode %s: %w", name, err)
		}
		httpMethod = http.MethodPost
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, body)
	if err != nil {
		return fmt.Errorf("telegram: failed to build %s request: %w", name, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// The URL carries the token; never surface it.
		return fmt.Errorf("telegram: %s failed: %w", name, redactURLError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: failed to read %s response: %w", name, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("telegram: failed to parse %s response (status %d): %w", name, resp.StatusCode, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram: %s returned %d: %s", name, apiResp.ErrorCode, apiResp.Description)
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("telegram: failed to parse %s result: %w", name, err)
		}
	}
	c.logger.Debug("bot api call", zap.String("method", name))
	return nil
}

func replyTo(messageID int64) *replyParameters {
	if messageID == 0 {
		return nil
	}
	return &replyParameters{MessageID: messageID}
}

func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
