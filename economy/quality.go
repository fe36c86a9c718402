package economy

import (
	"regexp"
	"unicode/utf8"

	"guardian-bot/model"
)

var (
	emojiRe     = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]`)
	digitRe     = regexp.MustCompile(`\d`)
	punctRe     = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	onlyEmojiRe = regexp.MustCompile(`^[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]+$`)
	onlyPunctRe = regexp.MustCompile(`^[!@#$%^&*(),.?":{}|<>]+$`)
)

// uniquenessBaseline is a flat score granted until real duplicate detection
// against message history exists.
const uniquenessBaseline = 15

// QualityScore rates a message 0-100 from cheap content heuristics: length
// tiers, content richness, a uniqueness baseline, and engagement signals.
func QualityScore(ev model.ActivityEvent) int {
	text := ev.Content
	score := 0

	// Length tiers (0-30)
	length := utf8.RuneCountInString(text)
	switch {
	case length > 50:
		score += 30
	case length > 20:
		score += 20
	case length > 10:
		score += 10
	}

	// Content richness (0-25)
	if emojiRe.MatchString(text) {
		score += 10
	}
	if digitRe.MatchString(text) {
		score += 5
	}
	if punctRe.MatchString(text) {
		score += 10
	}

	score += uniquenessBaseline

	// Engagement (0-30)
	if ev.IsReply {
		score += 20
	}
	if ev.HasEntities {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
