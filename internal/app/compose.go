package app

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
)

const lowConfidenceText = "I have low confidence in this, wild guess:\n"

// FormatTime renders a seconds offset as HH:MM:SS. Fractions are truncated and
// negative offsets are treated as zero.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// DedupeTitles returns the non-empty titles in the order native, chinese,
// romaji, english, keeping the first of any case-insensitive duplicates.
func DedupeTitles(t domain.Titles) []string {
	candidates := []string{
		t.Native.OrEmpty(),
		t.Chinese.OrEmpty(),
		t.Romaji.OrEmpty(),
		t.English.OrEmpty(),
	}
	present := lo.Filter(candidates, func(title string, _ int) bool {
		return strings.TrimSpace(title) != ""
	})
	return lo.UniqBy(present, strings.ToLower)
}

// Composer renders a match and its metadata into the reply text.
type Composer struct {
	// LowConfidenceThreshold prefixes a disclaimer to matches whose similarity
	// is below it. Zero disables the disclaimer.
	LowConfidenceThreshold float64
}

// Compose builds the successful outcome for a match. It is a pure function of
// its inputs.
func (c Composer) Compose(match domain.SearchMatch, info domain.MediaInfo) domain.SearchOutcome {
	var b strings.Builder

	if c.LowConfidenceThreshold > 0 && match.Similarity < c.LowConfidenceThreshold {
		b.WriteString(lowConfidenceText)
	}

	titles := DedupeTitles(info.Titles)
	if len(titles) > 0 {
		b.WriteString(strings.Join(lo.Map(titles, func(title string, _ int) string {
			return verbatim(title)
		}), "\n"))
		b.WriteString("\n")
	}

	b.WriteString(verbatim(match.Filename))
	b.WriteString("\n")

	from, to := FormatTime(match.SegmentStart), FormatTime(match.SegmentEnd)
	if from == to {
		b.WriteString(verbatim(from))
	} else {
		b.WriteString(verbatim(from) + " - " + verbatim(to))
	}
	b.WriteString("\n")

	b.WriteString(verbatim(fmt.Sprintf("%.1f%% similarity", match.Similarity*100)))
	b.WriteString("\n")

	return domain.Success(b.String(), largePreview(match.VideoURL), info.IsAdult)
}

// verbatim wraps s in a code span, doubling any backtick inside it.
func verbatim(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// largePreview forces size=l on the preview URL. Unparseable URLs yield no video.
func largePreview(videoURL string) string {
	if videoURL == "" {
		return ""
	}
	u, err := url.Parse(videoURL)
	if err != nil || u.Host == "" {
		return ""
	}
	q := u.Query()
	q.Set("size", "l")
	u.RawQuery = q.Encode()
	return u.String()
}
