package handlers

import (
	"log"

	"guardian-bot/bot"
	"guardian-bot/model"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderationCmds := map[string]model.Action{
		"mute":   model.ActionMute,
		"unmute": model.ActionUnmute,
		"ban":    model.ActionBan,
		"unban":  model.ActionUnban,
		"kick":   model.ActionKick,
		"warn":   model.ActionWarn,
	}

	handlers := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	for name, action := range moderationCmds {
		action := action
		handlers[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleModerationCommand(s, i, b, action)
		}
	}

	handlers["profile"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleProfileCommand(s, i, b)
	}
	handlers["leaderboard"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleLeaderboardCommand(s, i, b)
	}
	handlers["groupstats"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleGroupStatsCommand(s, i, b)
	}
	handlers["history"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleHistoryCommand(s, i, b)
	}
	handlers["groupsettings"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleGroupSettingsCommand(s, i, b)
	}
	handlers["overallstats"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleOverallStatsCommand(s, i, b)
	}
	handlers["globalban"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleGlobalBanCommand(s, i, b)
	}
	handlers["broadcast"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleBroadcastCommand(s, i, b)
	}
	handlers["trust"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleAdjustTrustCommand(s, i, b)
	}
	return handlers
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessageCreate(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		HandleMemberAdd(s, e, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
		HandleMemberRemove(s, e, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
		HandleMemberUpdate(s, e, b)
	})
}
