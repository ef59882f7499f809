package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/ports"
)

// User facing failure texts.
const (
	TextAPIError      = "`trace.moe API error, please try again later.`"
	TextBusy          = "`trace.moe server is busy, please try again later.`"
	TextLimitExceeded = "`You exceeded the search limit, please try again later`"
	TextNoResults     = "Cannot find any results from trace.moe"
	TextMetadataError = "`Metadata service error, please try again later.`"
)

const tokenPlaceholder = "TELEGRAM_TOKEN"

// Redactor scrubs the bot token placeholder, and the token itself when known,
// from upstream messages.
type Redactor struct {
	replacer *strings.Replacer
}

// NewRedactor creates a redactor. An empty token only scrubs the placeholder.
func NewRedactor(token string) *Redactor {
	pairs := []string{tokenPlaceholder, "{" + tokenPlaceholder + "}"}
	if token != "" {
		pairs = append(pairs, token, "{"+tokenPlaceholder+"}")
	}
	return &Redactor{replacer: strings.NewReplacer(pairs...)}
}

func (r *Redactor) Redact(s string) string {
	return r.replacer.Replace(s)
}

// SearchConfig tunes the search pipeline.
type SearchConfig struct {
	// Timeout bounds a whole submission including retries. Zero means no deadline.
	Timeout time.Duration
	// StrictMetadata makes a metadata lookup failure fail the search instead
	// of replying without titles.
	StrictMetadata         bool
	LowConfidenceThreshold float64
	// Token is scrubbed from upstream error messages.
	Token string
}

// SearchService implements ports.SearchService: submit, enrich, compose.
type SearchService struct {
	backend  ports.RecognitionBackend
	metadata ports.MetadataService
	composer Composer
	redactor *Redactor
	cfg      SearchConfig
	logger   *zap.Logger
}

// NewSearchService wires the pipeline. metadata may be nil, in which case
// replies carry no titles.
func NewSearchService(backend ports.RecognitionBackend, metadata ports.MetadataService, cfg SearchConfig, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		backend:  backend,
		metadata: metadata,
		composer: Composer{LowConfidenceThreshold: cfg.LowConfidenceThreshold},
		redactor: NewRedactor(cfg.Token),
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *SearchService) Submit(ctx context.Context, imageURL string, userID int64, opts domain.SearchOptions) domain.SearchOutcome {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	match, err := s.backend.Search(ctx, imageURL, userID, opts)
	if err != nil {
		return s.failure(userID, err)
	}

	var info domain.MediaInfo
	if match.AnimeID != 0 && s.metadata != nil {
		info, err = s.metadata.Fetch(ctx, match.AnimeID)
		if err != nil {
			s.logger.Warn("metadata lookup failed",
				zap.Int64("user_id", userID),
				zap.Int("anime_id", match.AnimeID),
				zap.Error(err),
			)
			if s.cfg.StrictMetadata {
				return domain.Failure(TextMetadataError)
			}
			info = domain.MediaInfo{}
		}
	}

	s.logger.Info("search matched",
		zap.Int64("user_id", userID),
		zap.Int("anime_id", match.AnimeID),
		zap.Float64("similarity", match.Similarity),
	)
	return s.composer.Compose(match, info)
}

func (s *SearchService) failure(userID int64, err error) domain.SearchOutcome {
	var searchErr *domain.SearchError
	if !errors.As(err, &searchErr) {
		s.logger.Error("unexpected search error", zap.Int64("user_id", userID), zap.Error(err))
		return domain.Failure(TextAPIError)
	}

	s.logger.Info("search failed",
		zap.Int64("user_id", userID),
		zap.String("kind", string(searchErr.Kind)),
		zap.Int("status", searchErr.Status),
		zap.Int("attempts", searchErr.Attempts),
		zap.Error(searchErr.Cause),
	)

	switch searchErr.Kind {
	case domain.ErrorKindBusy:
		return domain.Failure(TextBusy)
	case domain.ErrorKindRateLimited:
		return domain.Failure(TextLimitExceeded)
	case domain.ErrorKindUpstream:
		return domain.Failure(verbatim(s.redactor.Redact(searchErr.Message)))
	case domain.ErrorKindNoResults:
		return domain.Failure(TextNoResults)
	default:
		return domain.Failure(TextAPIError)
	}
}
