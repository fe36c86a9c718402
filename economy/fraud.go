package economy

import (
	"sync"
	"time"
	"unicode/utf8"

	"guardian-bot/model"

	"github.com/RussellLuo/slidingwindow"
)

func windowFunc() (slidingwindow.Window, slidingwindow.StopFunc) {
	return slidingwindow.NewLocalWindow()
}

// Validator is the anti-fraud gate in front of reward computation. A message
// that fails any check earns nothing and increments no counters.
type Validator struct {
	perMinute int64

	mu       sync.Mutex
	limiters map[int64]*slidingwindow.Limiter
}

// NewValidator builds the gate. perMinute of 0 disables the frequency check.
func NewValidator(perMinute int64) *Validator {
	return &Validator{
		perMinute: perMinute,
		limiters:  make(map[int64]*slidingwindow.Limiter),
	}
}

// Check validates one event against the user's recent behavior. The returned
// reason is one of the model.Reject* constants when ok is false.
func (v *Validator) Check(ev model.ActivityEvent, user *model.User) (ok bool, reason string) {
	text := ev.Content

	// Repeated content: identical to the user's immediately preceding message.
	if text != "" && text == user.LastMessage {
		return false, model.RejectSpam
	}

	if utf8.RuneCountInString(text) < 3 {
		return false, model.RejectSpam
	}

	if onlyEmojiRe.MatchString(text) || onlyPunctRe.MatchString(text) {
		return false, model.RejectSpam
	}

	if !v.allow(ev.UserID) {
		return false, model.RejectThrottled
	}

	return true, ""
}

// allow consumes one slot from the user's per-minute sliding window.
func (v *Validator) allow(userID int64) bool {
	if v.perMinute <= 0 {
		return true
	}

	v.mu.Lock()
	lim, exists := v.limiters[userID]
	if !exists {
		lim, _ = slidingwindow.NewLimiter(time.Minute, v.perMinute, windowFunc)
		v.limiters[userID] = lim
	}
	v.mu.Unlock()

	return lim.Allow()
}
