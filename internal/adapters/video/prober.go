// Package video checks whether a preview clip is ready before it is attached to a reply.
package video

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Prober implements ports.VideoProber with a HEAD request.
type Prober struct {
	client *http.Client
	logger *zap.Logger
}

// NewProber creates a prober. If client is nil, http.DefaultClient is used.
func NewProber(client *http.Client, logger *zap.Logger) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{client: client, logger: logger}
}

// IsAvailable is true only for a 2xx answer with a positive Content-Length.
// Clips that are still rendering come back empty.
func (p *Prober) IsAvailable(ctx context.Context, videoURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, videoURL, nil)
	if err != nil {
		p.logger.Warn("invalid video url", zap.String("url", videoURL), zap.Error(err))
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("video probe failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300 && resp.ContentLength > 0
	p.logger.Debug("video probe",
		zap.Int("status", resp.StatusCode),
		zap.Int64("content_length", resp.ContentLength),
		zap.Bool("available", ok),
	)
	return ok
}
