package permissions

import "guardian-bot/model"

// requiredLevel is the fixed permission table: the minimum tier each action
// needs. Actions not listed default to member.
var requiredLevel = map[model.Action]model.PermissionLevel{
	model.ActionMute:   model.LevelAdmin,
	model.ActionUnmute: model.LevelAdmin,
	model.ActionBan:    model.LevelAdmin,
	model.ActionUnban:  model.LevelAdmin,
	model.ActionKick:   model.LevelAdmin,
	model.ActionWarn:   model.LevelAdmin,

	model.ActionHistory:       model.LevelAdmin,
	model.ActionGroupSettings: model.LevelAdmin,

	model.ActionGlobalBan:    model.LevelOwner,
	model.ActionBroadcast:    model.LevelOwner,
	model.ActionOverallStats: model.LevelOwner,
	model.ActionAdjustTrust:  model.LevelOwner,

	model.ActionProfile:     model.LevelMember,
	model.ActionLeaderboard: model.LevelMember,
	model.ActionGroupStats:  model.LevelMember,
}

var levelOrder = map[model.PermissionLevel]int{
	model.LevelMember: 0,
	model.LevelAdmin:  1,
	model.LevelOwner:  2,
}

// Allowed reports whether a caller at the given tier may perform the action.
// Pure function over the fixed table; safe to call on every event.
func Allowed(level model.PermissionLevel, action model.Action) bool {
	required, ok := requiredLevel[action]
	if !ok {
		required = model.LevelMember
	}
	return levelOrder[level] >= levelOrder[required]
}
