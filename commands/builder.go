package commands

import (
	"guardian-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Mute,
		defs.Unmute,
		defs.Ban,
		defs.Unban,
		defs.Kick,
		defs.Warn,
		defs.GroupSettings,
		defs.Profile,
		defs.Leaderboard,
		defs.GroupStats,
		defs.History,
		defs.OverallStats,
		defs.GlobalBan,
		defs.Broadcast,
		defs.AdjustTrust,
	}
}
