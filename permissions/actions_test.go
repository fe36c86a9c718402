package permissions

import (
	"testing"

	"guardian-bot/model"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		level  model.PermissionLevel
		action model.Action
		want   bool
	}{
		{model.LevelMember, model.ActionProfile, true},
		{model.LevelMember, model.ActionLeaderboard, true},
		{model.LevelMember, model.ActionMute, false},
		{model.LevelMember, model.ActionHistory, false},
		{model.LevelMember, model.ActionGroupSettings, false},
		{model.LevelMember, model.ActionGlobalBan, false},

		{model.LevelAdmin, model.ActionMute, true},
		{model.LevelAdmin, model.ActionBan, true},
		{model.LevelAdmin, model.ActionWarn, true},
		{model.LevelAdmin, model.ActionHistory, true},
		{model.LevelAdmin, model.ActionGroupSettings, true},
		{model.LevelAdmin, model.ActionProfile, true},
		{model.LevelAdmin, model.ActionGlobalBan, false},
		{model.LevelAdmin, model.ActionAdjustTrust, false},

		{model.LevelOwner, model.ActionMute, true},
		{model.LevelOwner, model.ActionGlobalBan, true},
		{model.LevelOwner, model.ActionAdjustTrust, true},
		{model.LevelOwner, model.ActionBroadcast, true},
	}

	for _, c := range testCases {
		assert.Equal(c.want, Allowed(c.level, c.action), "%s %s", c.level, c.action)
	}
}

func TestAllowedUnknownActionDefaultsToMember(t *testing.T) {
	assert.True(t, Allowed(model.LevelMember, model.Action("something_new")))
}
