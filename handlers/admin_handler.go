package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"guardian-bot/bot"
	"guardian-bot/model"
	"guardian-bot/permissions"
	"guardian-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleHistoryCommand lists the moderation record of one member. Admin only.
func HandleHistoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		return
	}
	actorID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		log.Printf("Bad actor id in history command: %v", err)
		return
	}
	groupID, err := parseSnowflake(i.GuildID)
	if err != nil {
		log.Printf("Bad guild id in history command: %v", err)
		return
	}

	targetOpt, found := optionMap(i)["user"]
	if !found {
		utils.SendErrorResponse(s, i, "No target user given.")
		return
	}
	target := targetOpt.UserValue(s)
	targetID, err := parseSnowflake(target.ID)
	if err != nil {
		log.Printf("Bad target id in history command: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	level := b.Resolver.Resolve(ctx, actorID, groupID)
	if !permissions.Allowed(level, model.ActionHistory) {
		utils.SendErrorResponse(s, i, "You do not have permission to view moderation history.")
		return
	}

	actions, err := b.Store.ModerationActionsByTarget(ctx, groupID, targetID, nil)
	if err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}
	if len(actions) == 0 {
		utils.SendErrorResponse(s, i, fmt.Sprintf("No moderation record for %s in this group.", target.Username))
		return
	}

	var sb strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&sb, "<t:%d:d> **%s** by <@%d>", a.CreatedAt, a.Action, a.ActorID)
		if a.DurationSeconds > 0 {
			fmt.Fprintf(&sb, " for %s", utils.FormatDuration(time.Duration(a.DurationSeconds)*time.Second))
		}
		if a.Reason != "" {
			fmt.Fprintf(&sb, " — %s", a.Reason)
		}
		sb.WriteString("\n")
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Moderation history: %s", target.Username),
		Color:       0xED4245,
		Description: sb.String(),
	})
}

// HandleGroupSettingsCommand updates the per-group moderation settings. Admin only.
func HandleGroupSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil {
		return
	}
	actorID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		log.Printf("Bad actor id in groupsettings command: %v", err)
		return
	}
	groupID, err := parseSnowflake(i.GuildID)
	if err != nil {
		log.Printf("Bad guild id in groupsettings command: %v", err)
		return
	}

	opts := optionMap(i)
	muteHoursOpt, ok1 := opts["mute_hours"]
	welcomeOpt, ok2 := opts["welcome"]
	antiSpamOpt, ok3 := opts["antispam"]
	if !ok1 || !ok2 || !ok3 {
		utils.SendErrorResponse(s, i, "Missing settings values.")
		return
	}
	muteHours := int(muteHoursOpt.IntValue())
	if muteHours < 1 {
		utils.SendErrorResponse(s, i, "Mute duration must be at least one hour.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	level := b.Resolver.Resolve(ctx, actorID, groupID)
	if !permissions.Allowed(level, model.ActionGroupSettings) {
		utils.SendErrorResponse(s, i, "You do not have permission to change group settings.")
		return
	}

	if err := b.Store.UpdateGroupSettings(ctx, groupID, muteHours, welcomeOpt.BoolValue(), antiSpamOpt.BoolValue()); err != nil {
		if isNotFound(err) {
			utils.SendErrorResponse(s, i, "No activity recorded in this group yet.")
			return
		}
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}

	utils.SendPublicResponse(s, i, fmt.Sprintf(
		"Settings updated: default mute %dh, welcome %s, anti-spam %s.",
		muteHours, onOff(welcomeOpt.BoolValue()), onOff(antiSpamOpt.BoolValue())))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
