package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"guardian-bot/bot"
	"guardian-bot/model"
	"guardian-bot/permissions"
	"guardian-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleGlobalBanCommand bans the target from every group the bot manages.
func HandleGlobalBanCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	actorID, targetID, target, ok := ownerCommandArgs(s, i)
	if !ok {
		return
	}

	var reason string
	if opt, found := optionMap(i)["reason"]; found {
		reason = opt.StringValue()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := b.Moderation.GlobalBan(ctx, actorID, targetID, reason); err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("🔨 %s has been banned from all groups.", target.Username))
}

// HandleAdjustTrustCommand sets a user's trust score. Owner only.
func HandleAdjustTrustCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	actorID, targetID, target, ok := ownerCommandArgs(s, i)
	if !ok {
		return
	}

	scoreOpt, found := optionMap(i)["score"]
	if !found {
		utils.SendErrorResponse(s, i, "No score given.")
		return
	}
	score := int(scoreOpt.IntValue())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	level := b.Resolver.Resolve(ctx, actorID, 0)
	if !permissions.Allowed(level, model.ActionAdjustTrust) {
		utils.SendErrorResponse(s, i, "Only the bot owner can adjust trust scores.")
		return
	}

	if err := b.Store.SetTrustScore(ctx, targetID, score); err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Trust score of %s set to %d.", target.Username, score))
}

// HandleBroadcastCommand sends an announcement to every group with a
// configured broadcast channel. Owner only.
func HandleBroadcastCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	invoker := i.User
	if i.Member != nil {
		invoker = i.Member.User
	}
	actorID, err := parseSnowflake(invoker.ID)
	if err != nil {
		log.Printf("Bad actor id in broadcast command: %v", err)
		return
	}

	msgOpt, found := optionMap(i)["message"]
	if !found {
		utils.SendErrorResponse(s, i, "No message given.")
		return
	}
	message := msgOpt.StringValue()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	level := b.Resolver.Resolve(ctx, actorID, 0)
	if !permissions.Allowed(level, model.ActionBroadcast) {
		utils.SendErrorResponse(s, i, "Only the bot owner can broadcast.")
		return
	}

	groups, err := b.Store.AllGroups(ctx)
	if err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}
	channels := broadcastChannels(groups, b.GetConfig().ServerConfigs)
	if len(channels) == 0 {
		utils.SendErrorResponse(s, i, "No groups have a broadcast channel configured.")
		return
	}

	var sent int
	for _, channelID := range channels {
		if _, err := s.ChannelMessageSend(channelID, "📢 "+message); err != nil {
			log.Printf("Broadcast: failed to send to channel %s: %v", channelID, err)
			continue
		}
		sent++
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Broadcast delivered to %d of %d groups.", sent, len(channels)))
}

// broadcastChannels maps known groups to their configured broadcast channels,
// skipping groups without one.
func broadcastChannels(groups []model.Group, servers map[string]model.ServerConfig) []string {
	var out []string
	for _, g := range groups {
		cfg, ok := servers[strconv.FormatInt(g.ID, 10)]
		if !ok || cfg.BroadcastChannelID == "" {
			continue
		}
		out = append(out, cfg.BroadcastChannelID)
	}
	return out
}

// HandleOverallStatsCommand summarizes activity across every group. Owner only.
func HandleOverallStatsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	invoker := i.User
	if i.Member != nil {
		invoker = i.Member.User
	}
	actorID, err := parseSnowflake(invoker.ID)
	if err != nil {
		log.Printf("Bad actor id in overallstats command: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	level := b.Resolver.Resolve(ctx, actorID, 0)
	if !permissions.Allowed(level, model.ActionOverallStats) {
		utils.SendErrorResponse(s, i, "Only the bot owner can view overall stats.")
		return
	}

	groups, err := b.Store.AllGroups(ctx)
	if err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}
	if len(groups) == 0 {
		utils.SendErrorResponse(s, i, "No groups recorded yet.")
		return
	}

	var members, total, daily int64
	fields := make([]*discordgo.MessageEmbedField, 0, len(groups)+1)
	for _, g := range groups {
		members += g.MemberCount
		total += g.TotalMessages
		daily += g.DailyMessages
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  g.Title,
			Value: fmt.Sprintf("%d members, %d messages (%d today)", g.MemberCount, g.TotalMessages, g.DailyMessages),
		})
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:  "Total",
		Value: fmt.Sprintf("%d groups, %d members, %d messages (%d today)", len(groups), members, total, daily),
	})

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:  "Overall stats",
		Color:  0x57F287,
		Fields: fields,
	})
}

func ownerCommandArgs(s *discordgo.Session, i *discordgo.InteractionCreate) (actorID, targetID int64, target *discordgo.User, ok bool) {
	invoker := i.User
	if i.Member != nil {
		invoker = i.Member.User
	}
	actorID, err := parseSnowflake(invoker.ID)
	if err != nil {
		log.Printf("Bad actor id in owner command: %v", err)
		return 0, 0, nil, false
	}

	targetOpt, found := optionMap(i)["user"]
	if !found {
		utils.SendErrorResponse(s, i, "No target user given.")
		return 0, 0, nil, false
	}
	target = targetOpt.UserValue(s)
	targetID, err = parseSnowflake(target.ID)
	if err != nil {
		log.Printf("Bad target id in owner command: %v", err)
		return 0, 0, nil, false
	}
	return actorID, targetID, target, true
}
