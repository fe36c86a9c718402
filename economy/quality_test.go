package economy

import (
	"strings"
	"testing"

	"guardian-bot/model"

	"github.com/stretchr/testify/assert"
)

func TestQualityScore(t *testing.T) {
	assert := assert.New(t)

	longText := strings.Repeat("a", 60)

	testCases := []struct {
		name     string
		ev       model.ActivityEvent
		expected int
	}{
		{"short plain text", model.ActivityEvent{Content: "hi"}, 15},
		{"medium text", model.ActivityEvent{Content: "hello there my friend"}, 35},
		{"long text", model.ActivityEvent{Content: longText}, 45},
		{"long emoji reply", model.ActivityEvent{Content: longText + "😀", IsReply: true}, 75},
		{"digits and punctuation", model.ActivityEvent{Content: "call me at 555, ok?"}, 40},
		{"everything capped at 100", model.ActivityEvent{
			Content:     longText + " 😀 42!",
			IsReply:     true,
			HasEntities: true,
		}, 100},
	}

	for _, c := range testCases {
		assert.Equal(c.expected, QualityScore(c.ev), c.name)
	}
}

func TestQualityScoreCountsRunesNotBytes(t *testing.T) {
	// 25 CJK characters are well past the >20 tier even though each is
	// multiple bytes.
	ev := model.ActivityEvent{Content: strings.Repeat("好", 25)}
	assert.Equal(t, 35, QualityScore(ev))
}
