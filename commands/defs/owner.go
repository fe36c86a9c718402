package defs

import "github.com/bwmarrin/discordgo"

var GlobalBan = &discordgo.ApplicationCommand{
	Name:        "globalban",
	Description: "Ban a user from every group the bot manages (owner only)",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user to ban everywhere",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the ban",
			Required:    false,
		},
	},
}

var Broadcast = &discordgo.ApplicationCommand{
	Name:        "broadcast",
	Description: "Send an announcement to every group the bot manages (owner only)",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message",
			Description: "The announcement text",
			Required:    true,
		},
	},
}

var AdjustTrust = &discordgo.ApplicationCommand{
	Name:        "trust",
	Description: "Set a user's trust score (owner only)",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user to adjust",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "score",
			Description: "New trust score, 0-100",
			Required:    true,
		},
	},
}
