package domain

import "github.com/samber/mo"

// SearchOptions are the behaviour flags a user can put in the message text.
type SearchOptions struct {
	Mute   bool `json:"mute"`
	NoCrop bool `json:"no_crop"`
	Skip   bool `json:"skip"`
}

// SearchMatch is the top candidate returned by the recognition backend.
type SearchMatch struct {
	AnimeID      int     `json:"anilist"`
	Similarity   float64 `json:"similarity"`
	Filename     string  `json:"filename"`
	SegmentStart float64 `json:"from"`
	SegmentEnd   float64 `json:"to"`
	VideoURL     string  `json:"video"`
}

// Titles holds the localized titles of a media entry. Any of them may be absent.
type Titles struct {
	Native  mo.Option[string]
	Romaji  mo.Option[string]
	English mo.Option[string]
	Chinese mo.Option[string]
}

// MediaInfo is the metadata looked up for a matched anime.
type MediaInfo struct {
	Titles  Titles
	IsAdult bool
}

// SearchOutcome is the only value handed back from the search pipeline to the
// messaging layer. Exactly one of the two shapes is populated: when Failed is
// true only Text is meaningful.
type SearchOutcome struct {
	Text     string
	VideoURL string
	IsAdult  bool
	Failed   bool
}

// Success builds a successful outcome.
func Success(text, videoURL string, isAdult bool) SearchOutcome {
	return SearchOutcome{Text: text, VideoURL: videoURL, IsAdult: isAdult}
}

// Failure builds a failed outcome carrying a user-safe message.
func Failure(text string) SearchOutcome {
	return SearchOutcome{Text: text, Failed: true}
}

// HasVideo reports whether a preview clip can be offered for this outcome.
func (o SearchOutcome) HasVideo() bool {
	return !o.Failed && o.VideoURL != ""
}
