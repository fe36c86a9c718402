package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"guardian-bot/bot"
	"guardian-bot/model"

	"github.com/bwmarrin/discordgo"
)

// HandleMessageCreate turns a gateway message into an activity event and runs
// it through the reward pipeline.
func HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.GuildID == "" {
		return // ignore direct messages
	}
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	groupID, err := parseSnowflake(m.GuildID)
	if err != nil {
		log.Printf("Ignoring message with bad guild id %q: %v", m.GuildID, err)
		return
	}
	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		log.Printf("Ignoring message with bad author id %q: %v", m.Author.ID, err)
		return
	}

	title := m.GuildID
	if cfg, ok := b.GetConfig().ServerConfigs[m.GuildID]; ok && cfg.Name != "" {
		title = cfg.Name
	}

	ev := model.ActivityEvent{
		GroupID:     groupID,
		GroupTitle:  title,
		GroupType:   model.GroupTypeSupergroup,
		UserID:      userID,
		Username:    m.Author.Username,
		FirstName:   m.Author.GlobalName,
		IsBot:       m.Author.Bot,
		Content:     m.Content,
		IsReply:     m.MessageReference != nil,
		HasEntities: hasEntities(m),
		Timestamp:   m.Timestamp.Unix(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := b.Economy.ProcessActivity(ctx, ev)
	if err != nil {
		log.Printf("Failed to process activity from user %d in group %d: %v", userID, groupID, err)
		return
	}
	if !result.Accepted {
		return
	}

	announceProgress(s, m.ChannelID, m.Author, result)
}

func hasEntities(m *discordgo.MessageCreate) bool {
	return len(m.Mentions) > 0 ||
		len(m.Attachments) > 0 ||
		len(m.Embeds) > 0 ||
		strings.Contains(m.Content, "http://") ||
		strings.Contains(m.Content, "https://")
}

// announceProgress posts level-up and achievement notices to the channel the
// message appeared in. Send failures only get logged.
func announceProgress(s *discordgo.Session, channelID string, author *discordgo.User, result *model.RewardResult) {
	if result.LeveledUp {
		msg := fmt.Sprintf("🎉 %s reached level %d (%s)!", author.Username, result.NewLevel, result.NewRank)
		if _, err := s.ChannelMessageSend(channelID, msg); err != nil {
			log.Printf("Failed to send level-up notice: %v", err)
		}
	}
	for _, badge := range result.NewBadges {
		msg := fmt.Sprintf("🏅 %s earned the **%s** achievement (+%d coins)!", author.Username, badge.Name, badge.CoinsReward)
		if _, err := s.ChannelMessageSend(channelID, msg); err != nil {
			log.Printf("Failed to send achievement notice: %v", err)
		}
	}
}
