package defs

import "github.com/bwmarrin/discordgo"

var Mute = &discordgo.ApplicationCommand{
	Name:        "mute",
	Description: "Mute a member for a duration",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to mute",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Mute duration, e.g. 30m, 2h, 1d (defaults to the group setting)",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the mute",
			Required:    false,
		},
	},
}

var Unmute = &discordgo.ApplicationCommand{
	Name:        "unmute",
	Description: "Lift a member's mute",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to unmute",
			Required:    true,
		},
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:        "ban",
	Description: "Ban a member from the group",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to ban",
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

var Unban = &discordgo.ApplicationCommand{
	Name:        "unban",
	Description: "Lift a member's ban",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to unban",
			Required:    true,
		},
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:        "kick",
	Description: "Remove a member from the group (they may rejoin)",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to kick",
			Required:    true,
		},
	},
}

var GroupSettings = &discordgo.ApplicationCommand{
	Name:        "groupsettings",
	Description: "Change this group's moderation settings",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "mute_hours",
			Description: "Default mute duration in hours",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "welcome",
			Description: "Welcome new members",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "antispam",
			Description: "Enable anti-spam checks",
			Required:    true,
		},
	},
}

var Warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Issue a warning to a member",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to warn",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    false,
		},
	},
}
