package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
	"github.com/jpp0ca/tracemoe-telegram-bot/internal/ports"
)

// Chat replies.
const (
	TextPrivateHint = "You can Send or Forward anime screenshots to me"
	TextGroupHint   = "Mention me in an anime screenshot, I will tell you what anime is that"
	TextAdultResult = "I've found an adult result 😳\nPlease forward it to me via Private Chat 😏"
)

const (
	reactionSearching = "👌"
	reactionDone      = "👍"
	actionTyping      = "typing"
	helpCommand       = "/help"
	searchCountWindow = 30 * 24 * time.Hour
)

// BotInfo is what the help message reports about the running bot.
type BotInfo struct {
	// Name is the bot username without the leading @.
	Name       string
	Revision   string
	UsesAPIKey bool
	Homepage   string
}

// BotService implements ports.UpdateHandler for private and group chats.
type BotService struct {
	search    ports.SearchService
	images    ports.ImageResolver
	messenger ports.Messenger
	prober    ports.VideoProber
	queue     ports.TaskQueue
	searchLog ports.SearchLog
	info      BotInfo
	logger    *zap.Logger
	now       func() time.Time
}

// NewBotService creates the update handler. searchLog may be nil.
func NewBotService(
	search ports.SearchService,
	images ports.ImageResolver,
	messenger ports.Messenger,
	prober ports.VideoProber,
	queue ports.TaskQueue,
	searchLog ports.SearchLog,
	info BotInfo,
	logger *zap.Logger,
) *BotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotService{
		search:    search,
		images:    images,
		messenger: messenger,
		prober:    prober,
		queue:     queue,
		searchLog: searchLog,
		info:      info,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleUpdate answers private messages and group messages that mention the
// bot. Other updates are ignored. The returned error only reports a failed
// reply delivery.
func (b *BotService) HandleUpdate(ctx context.Context, update domain.Update) error {
	msg := update.IncomingMessage()
	if msg == nil {
		return nil
	}

	var err error
	switch msg.Chat.Type {
	case domain.ChatTypePrivate:
		err = b.handleMessage(ctx, msg, false)
	case domain.ChatTypeGroup, domain.ChatTypeSupergroup:
		if !b.mentionsBot(msg) {
			return nil
		}
		err = b.handleMessage(ctx, msg, true)
	default:
		return nil
	}

	b.react(ctx, msg, "")
	return err
}

func (b *BotService) handleMessage(ctx context.Context, msg *domain.Message, group bool) error {
	userID := msg.SenderID()
	opts := MessageOptions(msg)

	target := msg
	switch {
	case msg.ReplyToMessage != nil:
		target = msg.ReplyToMessage
	case msg.ExternalReply != nil:
		target = msg.ExternalReply
	}
	replyID := target.MessageID
	if msg.ExternalReply != nil {
		replyID = msg.MessageID
	}

	imageURL, ok := b.images.ImageURL(ctx, target)
	if !ok {
		return b.replyWithoutImage(ctx, msg, group)
	}

	outcome := b.searchQueued(ctx, msg, userID, imageURL, opts)

	if group && outcome.IsAdult {
		return b.messenger.SendMessage(ctx, domain.OutgoingMessage{
			ChatID:  msg.Chat.ID,
			Text:    TextAdultResult,
			ReplyTo: replyID,
		})
	}

	if outcome.HasVideo() && !opts.Skip {
		videoURL := outcome.VideoURL
		if opts.Mute {
			videoURL += "&mute"
		}
		if b.prober.IsAvailable(ctx, videoURL) {
			return b.messenger.SendVideo(ctx, domain.OutgoingVideo{
				ChatID:     msg.Chat.ID,
				Video:      videoURL,
				Caption:    EscapeMarkdownV2(outcome.Text),
				ParseMode:  ParseModeMarkdownV2,
				HasSpoiler: group && target.HasMediaSpoiler,
				ReplyTo:    replyID,
			})
		}
		b.logger.Info("preview clip not ready, replying with text", zap.Int64("user_id", userID))
	}

	return b.messenger.SendMessage(ctx, domain.OutgoingMessage{
		ChatID:    msg.Chat.ID,
		Text:      EscapeMarkdownV2(outcome.Text),
		ParseMode: ParseModeMarkdownV2,
		ReplyTo:   replyID,
	})
}

// searchQueued runs the search behind the sender's queue so one user's
// searches never overlap.
func (b *BotService) searchQueued(ctx context.Context, msg *domain.Message, userID int64, imageURL string, opts domain.SearchOptions) domain.SearchOutcome {
	var outcome domain.SearchOutcome
	b.queue.Do(userID, func() {
		b.react(ctx, msg, reactionSearching)
		outcome = b.search.Submit(ctx, imageURL, userID, opts)
		if err := b.messenger.SendChatAction(ctx, msg.Chat.ID, actionTyping); err != nil {
			b.logger.Debug("failed to send chat action", zap.Error(err))
		}
		b.react(ctx, msg, reactionDone)
	})
	return outcome
}

func (b *BotService) replyWithoutImage(ctx context.Context, msg *domain.Message, group bool) error {
	out := domain.OutgoingMessage{ChatID: msg.Chat.ID, Text: TextPrivateHint}
	if group {
		out.Text = TextGroupHint
		out.ReplyTo = msg.MessageID
	}
	if strings.Contains(strings.ToLower(msg.Text), helpCommand) {
		out.Text = EscapeMarkdownV2(b.helpMessage(ctx, msg.SenderID()))
		out.ParseMode = ParseModeMarkdownV2
	}
	return b.messenger.SendMessage(ctx, out)
}

func (b *BotService) helpMessage(ctx context.Context, userID int64) string {
	name := "(unknown)"
	if b.info.Name != "" {
		name = "@" + b.info.Name
	}
	revision := b.info.Revision
	if len(revision) > 7 {
		revision = revision[:7]
	}

	lines := []string{
		"Bot Name: " + name,
		"Revision: `" + revision + "`",
		fmt.Sprintf("Use trace.moe with API Key? `%t`", b.info.UsesAPIKey),
		"Homepage: " + b.info.Homepage,
	}
	if b.searchLog != nil && b.searchLog.Enabled() {
		count, err := b.searchLog.CountSuccess(ctx, userID, b.now().Add(-searchCountWindow))
		if err != nil {
			b.logger.Warn("failed to count searches", zap.Int64("user_id", userID), zap.Error(err))
		} else {
			lines = append(lines, fmt.Sprintf("Your search count (last 30 days): %d", count))
		}
	}
	return strings.Join(lo.Compact(lines), "\n")
}

// mentionsBot reports whether a mention entity in the text or caption names
// this bot.
func (b *BotService) mentionsBot(msg *domain.Message) bool {
	if b.info.Name == "" {
		return false
	}
	handle := "@" + b.info.Name
	mentioned := func(text string, entities []domain.MessageEntity) bool {
		return lo.SomeBy(entities, func(e domain.MessageEntity) bool {
			return e.Type == domain.EntityMention && strings.EqualFold(e.Text(text), handle)
		})
	}
	return mentioned(msg.Text, msg.Entities) || mentioned(msg.Caption, msg.CaptionEntities)
}

func (b *BotService) react(ctx context.Context, msg *domain.Message, emoji string) {
	if err := b.messenger.SetReaction(ctx, msg.Chat.ID, msg.MessageID, emoji); err != nil {
		b.logger.Debug("failed to set reaction", zap.String("emoji", emoji), zap.Error(err))
	}
}
