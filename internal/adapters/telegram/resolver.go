package telegram

import (
	"context"

	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
)

// smallVideoBytes is the largest video sent to the search backend as is;
// bigger ones are searched by their cover or thumbnail.
const smallVideoBytes = 300 * 1024

type fileURLResolver interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}

// Resolver implements ports.ImageResolver for Telegram messages.
type Resolver struct {
	files  fileURLResolver
	logger *zap.Logger
}

// NewResolver creates an image resolver backed by the Bot API getFile method.
func NewResolver(files fileURLResolver, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{files: files, logger: logger}
}

// ImageURL checks, in order: the largest photo, an animation, a video (the
// file itself when small, else its cover or thumbnail), a sticker, a document
// thumbnail, the link preview URL, and finally url/text_link entities.
func (r *Resolver) ImageURL(ctx context.Context, msg *domain.Message) (string, bool) {
	if msg == nil {
		return "", false
	}

	if n := len(msg.Photo); n > 0 {
		return r.fileURL(ctx, msg.Photo[n-1].FileID)
	}
	if msg.Animation != nil {
		return r.fileURL(ctx, msg.Animation.FileID)
	}
	if v := msg.Video; v != nil {
		switch {
		case v.FileSize > 0 && v.FileSize <= smallVideoBytes:
			return r.fileURL(ctx, v.FileID)
		case len(v.Cover) > 0:
			return r.fileURL(ctx, v.Cover[len(v.Cover)-1].FileID)
		case v.Thumbnail != nil:
			return r.fileURL(ctx, v.Thumbnail.FileID)
		}
	}
	if msg.Sticker != nil {
		return r.fileURL(ctx, msg.Sticker.FileID)
	}
	if msg.Document != nil && msg.Document.Thumbnail != nil {
		return r.fileURL(ctx, msg.Document.Thumbnail.FileID)
	}
	if msg.LinkPreviewOptions != nil && msg.LinkPreviewOptions.URL != "" {
		return msg.LinkPreviewOptions.URL, true
	}
	if msg.Text != "" {
		// Only the first link entity is considered.
		for _, entity := range msg.Entities {
			switch entity.Type {
			case domain.EntityURL:
				u := entity.Text(msg.Text)
				return u, u != ""
			case domain.EntityTextLink:
				return entity.URL, entity.URL != ""
			}
		}
	}
	return "", false
}

func (r *Resolver) fileURL(ctx context.Context, fileID string) (string, bool) {
	if fileID == "" {
		return "", false
	}
	u, err := r.files.FileURL(ctx, fileID)
	if err != nil {
		r.logger.Warn("failed to resolve file", zap.String("file_id", fileID), zap.Error(err))
		return "", false
	}
	return u, u != ""
}
