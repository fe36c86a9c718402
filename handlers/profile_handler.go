package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"guardian-bot/bot"
	"guardian-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleProfileCommand shows a member's level, coins and achievements.
func HandleProfileCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	target := i.Member.User
	if opt, ok := optionMap(i)["user"]; ok {
		target = opt.UserValue(s)
	}

	userID, err := parseSnowflake(target.ID)
	if err != nil {
		log.Printf("Bad user id in profile command: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := b.Store.GetUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			utils.SendErrorResponse(s, i, "No activity recorded for that user yet.")
			return
		}
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}

	achievements, err := b.Store.ListAchievements(ctx, userID)
	if err != nil {
		log.Printf("Could not list achievements of user %d: %v", userID, err)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Level", Value: fmt.Sprintf("%d (%s)", user.Level, user.Rank), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d", user.XP), Inline: true},
		{Name: "Coins", Value: fmt.Sprintf("%d", user.Coins), Inline: true},
		{Name: "Messages", Value: fmt.Sprintf("%d total / %d today", user.TotalMessages, user.DailyMessages), Inline: true},
		{Name: "Trust", Value: fmt.Sprintf("%d/100", user.TrustScore), Inline: true},
	}
	if len(achievements) > 0 {
		names := make([]string, 0, len(achievements))
		for _, a := range achievements {
			names = append(names, a.Name)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Achievements",
			Value: strings.Join(names, ", "),
		})
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Profile: %s", user.DisplayName()),
		Color:  0x5865F2,
		Fields: fields,
	})
}

// HandleLeaderboardCommand lists the most active members of the group.
func HandleLeaderboardCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	groupID, err := parseSnowflake(i.GuildID)
	if err != nil {
		log.Printf("Bad guild id in leaderboard command: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if opt, ok := optionMap(i)["global"]; ok && opt.BoolValue() {
		handleGlobalLeaderboard(ctx, s, i, b)
		return
	}

	members, err := b.Store.TopMembers(ctx, groupID, 10)
	if err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}
	if len(members) == 0 {
		utils.SendErrorResponse(s, i, "No activity recorded in this group yet.")
		return
	}

	var sb strings.Builder
	for idx, m := range members {
		name := fmt.Sprintf("<@%d>", m.UserID)
		if user, err := b.Store.GetUser(ctx, m.UserID); err == nil {
			name = user.DisplayName()
		}
		fmt.Fprintf(&sb, "%d. %s — %d messages, %d XP\n", idx+1, name, m.MessagesCount, m.XPEarned)
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       "Leaderboard",
		Color:       0xFEE75C,
		Description: sb.String(),
	})
}

func handleGlobalLeaderboard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	users, err := b.Store.TopUsers(ctx, 10)
	if err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}
	if len(users) == 0 {
		utils.SendErrorResponse(s, i, "No activity recorded yet.")
		return
	}

	var sb strings.Builder
	for idx, u := range users {
		fmt.Fprintf(&sb, "%d. %s — level %d, %d XP\n", idx+1, u.DisplayName(), u.Level, u.XP)
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       "Global leaderboard",
		Color:       0xFEE75C,
		Description: sb.String(),
	})
}

// HandleGroupStatsCommand shows group-level activity counters.
func HandleGroupStatsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	groupID, err := parseSnowflake(i.GuildID)
	if err != nil {
		log.Printf("Bad guild id in groupstats command: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	group, err := b.Store.GetGroup(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			utils.SendErrorResponse(s, i, "No activity recorded in this group yet.")
			return
		}
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}

	// Recount directly rather than trusting the cached counter.
	memberCount, err := b.Store.ActiveMemberCount(ctx, groupID)
	if err != nil {
		log.Printf("Could not recount members of group %d: %v", groupID, err)
		memberCount = group.MemberCount
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Active members", Value: fmt.Sprintf("%d", memberCount), Inline: true},
		{Name: "Messages total", Value: fmt.Sprintf("%d", group.TotalMessages), Inline: true},
		{Name: "Messages today", Value: fmt.Sprintf("%d", group.DailyMessages), Inline: true},
	}

	since := time.Now().AddDate(0, 0, -7)
	if stats, err := b.Store.ModerationStatsByActor(ctx, groupID, since); err != nil {
		log.Printf("Could not load moderation stats for group %d: %v", groupID, err)
	} else if len(stats) > 0 {
		var sb strings.Builder
		for actorID, count := range stats {
			fmt.Fprintf(&sb, "<@%d>: %d actions\n", actorID, count)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Moderation this week",
			Value: sb.String(),
		})
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Stats: %s", group.Title),
		Color:  0x57F287,
		Fields: fields,
	})
}
