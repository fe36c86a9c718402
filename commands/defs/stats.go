package defs

import "github.com/bwmarrin/discordgo"

var Profile = &discordgo.ApplicationCommand{
	Name:        "profile",
	Description: "Show a member's level, coins and achievements",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to look up (defaults to yourself)",
			Required:    false,
		},
	},
}

var Leaderboard = &discordgo.ApplicationCommand{
	Name:        "leaderboard",
	Description: "Show the most active members of this group",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "global",
			Description: "Rank across all groups instead of just this one",
			Required:    false,
		},
	},
}

var GroupStats = &discordgo.ApplicationCommand{
	Name:        "groupstats",
	Description: "Show activity statistics for this group",
}

var History = &discordgo.ApplicationCommand{
	Name:        "history",
	Description: "Show a member's moderation history in this group",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to look up",
			Required:    true,
		},
	},
}

var OverallStats = &discordgo.ApplicationCommand{
	Name:        "overallstats",
	Description: "Show totals across every group the bot manages (owner only)",
}
