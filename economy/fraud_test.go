package economy

import (
	"testing"

	"guardian-bot/model"

	"github.com/stretchr/testify/assert"
)

func TestValidatorRejectsSpam(t *testing.T) {
	assert := assert.New(t)
	v := NewValidator(0)

	user := &model.User{ID: 1, LastMessage: "same thing again"}

	testCases := []struct {
		name    string
		content string
		reason  string
	}{
		{"duplicate of previous message", "same thing again", model.RejectSpam},
		{"too short", "ok", model.RejectSpam},
		{"emoji only", "😀😀😀", model.RejectSpam},
		{"punctuation only", "!!!???", model.RejectSpam},
	}

	for _, c := range testCases {
		ok, reason := v.Check(model.ActivityEvent{UserID: 1, Content: c.content}, user)
		assert.False(ok, c.name)
		assert.Equal(c.reason, reason, c.name)
	}

	ok, reason := v.Check(model.ActivityEvent{UserID: 1, Content: "a perfectly normal message"}, user)
	assert.True(ok)
	assert.Empty(reason)
}

func TestValidatorThrottles(t *testing.T) {
	assert := assert.New(t)
	v := NewValidator(2)
	user := &model.User{ID: 7}

	ev := func(content string) model.ActivityEvent {
		return model.ActivityEvent{UserID: 7, Content: content}
	}

	ok, _ := v.Check(ev("first message"), user)
	assert.True(ok)
	ok, _ = v.Check(ev("second message"), user)
	assert.True(ok)

	ok, reason := v.Check(ev("third message"), user)
	assert.False(ok)
	assert.Equal(model.RejectThrottled, reason)

	// A different user has their own window.
	other := &model.User{ID: 8}
	ok, _ = v.Check(model.ActivityEvent{UserID: 8, Content: "unrelated message"}, other)
	assert.True(ok)
}

func TestValidatorDisabledThrottle(t *testing.T) {
	v := NewValidator(0)
	user := &model.User{ID: 9}

	for i := 0; i < 50; i++ {
		ok, _ := v.Check(model.ActivityEvent{UserID: 9, Content: "message number whatever"}, user)
		assert.True(t, ok)
	}
}
