package app

import (
	"strings"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{59.99, "00:00:59"},
		{61.2, "00:01:01"},
		{3600, "01:00:00"},
		{3725.9, "01:02:05"},
		{100 * 3600, "100:00:00"},
		{-4, "00:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.in), "FormatTime(%v)", tt.in)
	}
}

func TestDedupeTitles(t *testing.T) {
	tests := []struct {
		name   string
		titles domain.Titles
		want   []string
	}{
		{
			name:   "none",
			titles: domain.Titles{},
			want:   []string{},
		},
		{
			name: "priority order",
			titles: domain.Titles{
				English: mo.Some("Your Name."),
				Romaji:  mo.Some("Kimi no Na wa."),
				Chinese: mo.Some("你的名字。"),
				Native:  mo.Some("君の名は。"),
			},
			want: []string{"君の名は。", "你的名字。", "Kimi no Na wa.", "Your Name."},
		},
		{
			name: "case-insensitive duplicates keep first occurrence",
			titles: domain.Titles{
				Native:  mo.Some("K-On!"),
				Chinese: mo.Some("轻音少女"),
				Romaji:  mo.Some("k-on!"),
				English: mo.Some("K-ON!"),
			},
			want: []string{"K-On!", "轻音少女"},
		},
		{
			name: "empty values are skipped",
			titles: domain.Titles{
				Native:  mo.Some(""),
				English: mo.Some("Your Name"),
			},
			want: []string{"Your Name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeTitles(tt.titles))
		})
	}
}

func TestCompose_SingleEnglishTitle(t *testing.T) {
	match := domain.SearchMatch{
		AnimeID:      21519,
		Similarity:   0.95,
		Filename:     "Kimi no Na wa.mp4",
		SegmentStart: 62.4,
		SegmentEnd:   62.9,
		VideoURL:     "https://api.trace.moe/video/21519/x.mp4?t=62&token=abc",
	}
	info := domain.MediaInfo{Titles: domain.Titles{English: mo.Some("Your Name")}}

	out := Composer{}.Compose(match, info)

	require.False(t, out.Failed)
	assert.Equal(t, "`Your Name`\n`Kimi no Na wa.mp4`\n`00:01:02`\n`95.0% similarity`\n", out.Text)
	assert.Equal(t, 1, countLines(out.Text, "`Your Name`"))
	assert.Equal(t, "https://api.trace.moe/video/21519/x.mp4?size=l&t=62&token=abc", out.VideoURL)
	assert.False(t, out.IsAdult)
}

func TestCompose_Range(t *testing.T) {
	match := domain.SearchMatch{Similarity: 0.8763, Filename: "a`b.mkv", SegmentStart: 10, SegmentEnd: 15}

	out := Composer{}.Compose(match, domain.MediaInfo{IsAdult: true})

	assert.Equal(t, "`a``b.mkv`\n`00:00:10` - `00:00:15`\n`87.6% similarity`\n", out.Text)
	assert.True(t, out.IsAdult)
	assert.Empty(t, out.VideoURL)
}

func TestCompose_TitleBackticksDoubled(t *testing.T) {
	match := domain.SearchMatch{Similarity: 0.9, Filename: "a.mkv", SegmentStart: 1, SegmentEnd: 1}
	info := domain.MediaInfo{Titles: domain.Titles{Romaji: mo.Some("K`ON!")}}

	out := Composer{}.Compose(match, info)

	assert.Equal(t, "`K``ON!`\n`a.mkv`\n`00:00:01`\n`90.0% similarity`\n", out.Text)
}

func TestCompose_ForcesLargeSize(t *testing.T) {
	match := domain.SearchMatch{VideoURL: "https://media.trace.moe/video/1/a.mp4?size=s&now=1"}

	out := Composer{}.Compose(match, domain.MediaInfo{})

	assert.Equal(t, "https://media.trace.moe/video/1/a.mp4?now=1&size=l", out.VideoURL)
}

func TestCompose_LowConfidence(t *testing.T) {
	c := Composer{LowConfidenceThreshold: 0.92}

	low := c.Compose(domain.SearchMatch{Similarity: 0.85, Filename: "f"}, domain.MediaInfo{})
	high := c.Compose(domain.SearchMatch{Similarity: 0.95, Filename: "f"}, domain.MediaInfo{})
	disabled := Composer{}.Compose(domain.SearchMatch{Similarity: 0.5, Filename: "f"}, domain.MediaInfo{})

	assert.True(t, strings.HasPrefix(low.Text, lowConfidenceText))
	assert.False(t, strings.HasPrefix(high.Text, lowConfidenceText))
	assert.False(t, strings.HasPrefix(disabled.Text, lowConfidenceText))
}

func TestCompose_Idempotent(t *testing.T) {
	match := domain.SearchMatch{
		AnimeID: 1, Similarity: 0.9, Filename: "x.mp4", SegmentStart: 1, SegmentEnd: 100,
		VideoURL: "https://media.trace.moe/v?b=2&a=1",
	}
	info := domain.MediaInfo{Titles: domain.Titles{
		Native: mo.Some("ネイティブ"), Romaji: mo.Some("Natibu"), English: mo.Some("natibu"),
	}}
	c := Composer{LowConfidenceThreshold: 0.92}

	assert.Equal(t, c.Compose(match, info), c.Compose(match, info))
}

// -- Helpers -----------------------------------------------------------------

func countLines(text, line string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if l == line {
			n++
		}
	}
	return n
}
