// Package overlay plans emoji placements over a video from its transcript.
package overlay

import "strings"

// keywordEmojis maps spoken keywords to overlay emojis. Order matters: the
// first keyword contained in a word wins.
var keywordEmojis = []struct {
	Keyword string
	Emoji   string
}{
	{"happy", "😊"},
	{"sad", "😢"},
	{"angry", "😠"},
	{"surprise", "😲"},
	{"laugh", "😂"},
	{"love", "❤️"},
	{"congratulations", "🎉"},
	{"good", "👍"},
	{"bad", "👎"},
	{"money", "💰"},
	{"idea", "💡"},
	{"music", "🎵"},
	{"movie", "🎬"},
	{"book", "📚"},
	{"computer", "💻"},
	{"phone", "📱"},
	{"time", "⏰"},
	{"food", "🍔"},
	{"drink", "🍹"},
	{"car", "🚗"},
	{"home", "🏠"},
}

const (
	wordsPerSecond = 2.5
	displaySeconds = 1.0
	clockStride    = 3
)

// Placement is one emoji shown over the frame for a fixed window. Word
// keeps the transcript word that triggered it, punctuation and all.
type Placement struct {
	Emoji    string  `json:"emoji"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Word     string  `json:"word"`
}

// Plan scans the transcript word stream against the keyword table. The
// clock advances one stride (3 words at 2.5 words/s) after every third
// word, which paces placements a little more naturally than a per-word
// tick.
func Plan(transcript string) []Placement {
	var (
		out   []Placement
		clock float64
	)
	for i, word := range strings.Fields(transcript) {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:\"'()"))
		for _, ke := range keywordEmojis {
			if strings.Contains(cleaned, ke.Keyword) {
				out = append(out, Placement{
					Emoji:    ke.Emoji,
					Time:     clock,
					Duration: displaySeconds,
					Word:     word,
				})
				break
			}
		}
		if i%clockStride == 0 {
			clock += clockStride / wordsPerSecond
		}
	}
	return out
}
