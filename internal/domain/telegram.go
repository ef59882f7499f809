package domain

import "unicode/utf16"

// Update is the subset of a Telegram webhook update the bot reacts to.
type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

// IncomingMessage returns the message carried by the update, preferring a new
// message over an edited one.
func (u Update) IncomingMessage() *Message {
	if u.Message != nil {
		return u.Message
	}
	return u.EditedMessage
}

// Chat types.
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
)

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username,omitempty"`
}

// PhotoSize also stands in for any Telegram object that only needs a file id
// to be downloaded (animations, stickers, thumbnails).
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

type Video struct {
	FileID    string      `json:"file_id"`
	FileSize  int64       `json:"file_size,omitempty"`
	Cover     []PhotoSize `json:"cover,omitempty"`
	Thumbnail *PhotoSize  `json:"thumbnail,omitempty"`
}

type Document struct {
	FileID    string     `json:"file_id"`
	Thumbnail *PhotoSize `json:"thumbnail,omitempty"`
}

// Entity types used by the bot.
const (
	EntityMention  = "mention"
	EntityURL      = "url"
	EntityTextLink = "text_link"
)

type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	URL    string `json:"url,omitempty"`
}

// Text returns the part of s covered by the entity. Telegram measures offsets
// in UTF-16 code units; out-of-range entities yield an empty string.
func (e MessageEntity) Text(s string) string {
	units := utf16.Encode([]rune(s))
	end := e.Offset + e.Length
	if e.Offset < 0 || e.Length < 0 || end > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset:end]))
}

type LinkPreviewOptions struct {
	URL string `json:"url,omitempty"`
}

// Message models both a regular message and the external reply info Telegram
// attaches to cross-chat replies; the latter simply leaves text fields empty.
type Message struct {
	MessageID          int64               `json:"message_id"`
	From               *User               `json:"from,omitempty"`
	Chat               Chat                `json:"chat"`
	Text               string              `json:"text,omitempty"`
	Caption            string              `json:"caption,omitempty"`
	Entities           []MessageEntity     `json:"entities,omitempty"`
	CaptionEntities    []MessageEntity     `json:"caption_entities,omitempty"`
	Photo              []PhotoSize         `json:"photo,omitempty"`
	Animation          *PhotoSize          `json:"animation,omitempty"`
	Video              *Video              `json:"video,omitempty"`
	Sticker            *PhotoSize          `json:"sticker,omitempty"`
	Document           *Document           `json:"document,omitempty"`
	LinkPreviewOptions *LinkPreviewOptions `json:"link_preview_options,omitempty"`
	HasMediaSpoiler    bool                `json:"has_media_spoiler,omitempty"`
	ReplyToMessage     *Message            `json:"reply_to_message,omitempty"`
	ExternalReply      *Message            `json:"external_reply,omitempty"`
}

// SenderID returns the id of the sending user, or 0 for anonymous senders.
func (m *Message) SenderID() int64 {
	if m.From == nil {
		return 0
	}
	return m.From.ID
}

// OutgoingMessage is a text reply.
type OutgoingMessage struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
	ReplyTo   int64  `json:"-"`
}

// OutgoingVideo is a video reply with a caption.
type OutgoingVideo struct {
	ChatID     int64  `json:"chat_id"`
	Video      string `json:"video"`
	Caption    string `json:"caption,omitempty"`
	ParseMode  string `json:"parse_mode,omitempty"`
	HasSpoiler bool   `json:"has_spoiler,omitempty"`
	ReplyTo    int64  `json:"-"`
}

// BotIdentity is what getMe reports about the bot account.
type BotIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
