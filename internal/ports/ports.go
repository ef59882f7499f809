package ports

import (
	"context"
	"time"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
)

// RecognitionBackend submits an image to the reverse-image-search service.
// Failures are reported as *domain.SearchError.
type RecognitionBackend interface {
	// Search returns the top match for the image at imageURL. userID is only
	// used to attribute attempts in the search log.
	Search(ctx context.Context, imageURL string, userID int64, opts domain.SearchOptions) (domain.SearchMatch, error)
}

// MetadataService looks up canonical titles for an anime id.
type MetadataService interface {
	Fetch(ctx context.Context, animeID int) (domain.MediaInfo, error)
}

// VideoProber checks that a preview clip is ready to be sent.
type VideoProber interface {
	IsAvailable(ctx context.Context, videoURL string) bool
}

// SearchLog is the optional sink recording each backend attempt.
type SearchLog interface {
	Record(ctx context.Context, userID int64, code int) error
	// CountSuccess returns how many searches with code 200 the user made since the given time.
	CountSuccess(ctx context.Context, userID int64, since time.Time) (int, error)
	// Enabled reports whether a real store backs this log.
	Enabled() bool
	Close() error
}

// Messenger delivers replies through the chat platform.
type Messenger interface {
	SendMessage(ctx context.Context, msg domain.OutgoingMessage) error
	SendVideo(ctx context.Context, video domain.OutgoingVideo) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
	// SetReaction replaces the bot's reaction on a message; an empty emoji clears it.
	SetReaction(ctx context.Context, chatID, messageID int64, emoji string) error
}

// ImageResolver finds a fetchable image URL in a message. ok is false when
// the message carries nothing searchable.
type ImageResolver interface {
	ImageURL(ctx context.Context, msg *domain.Message) (url string, ok bool)
}

// SearchService is the driving port for the search pipeline. It never returns
// an error: every failure is rendered into the outcome.
type SearchService interface {
	Submit(ctx context.Context, imageURL string, userID int64, opts domain.SearchOptions) domain.SearchOutcome
}

// UpdateHandler processes a webhook update from the chat platform.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update domain.Update) error
}

// TaskQueue runs tasks serially per key.
type TaskQueue interface {
	Do(key int64, task func())
}
