package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"guardian-bot/bot"
	"guardian-bot/model"
	"guardian-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleModerationCommand runs one of the member status transitions on behalf
// of the invoking admin.
func HandleModerationCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, action model.Action) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command only works inside a group.")
		return
	}

	actorID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		log.Printf("Bad actor id in %s command: %v", action, err)
		return
	}
	groupID, err := parseSnowflake(i.GuildID)
	if err != nil {
		log.Printf("Bad guild id in %s command: %v", action, err)
		return
	}

	opts := optionMap(i)
	targetOpt, ok := opts["user"]
	if !ok {
		utils.SendErrorResponse(s, i, "No target user given.")
		return
	}
	target := targetOpt.UserValue(s)
	targetID, err := parseSnowflake(target.ID)
	if err != nil {
		log.Printf("Bad target id in %s command: %v", action, err)
		return
	}

	var reason string
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	var durationSeconds int64
	if opt, ok := opts["duration"]; ok {
		d, err := utils.ParseDuration(opt.StringValue())
		if err != nil {
			utils.SendErrorResponse(s, i, "Invalid duration. Use forms like 30m, 2h, 1d.")
			return
		}
		durationSeconds = int64(d.Seconds())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if action == model.ActionWarn {
		warnings, err := b.Moderation.Warn(ctx, actorID, targetID, groupID, reason)
		if err != nil {
			utils.SendErrorResponse(s, i, userErrorMessage(err))
			return
		}
		utils.SendPublicResponse(s, i, fmt.Sprintf("⚠️ %s has been warned (%d warnings total).", target.Username, warnings))
		return
	}

	err = b.Moderation.Moderate(ctx, model.ModerationRequest{
		Action:          action,
		ActorID:         actorID,
		TargetID:        targetID,
		GroupID:         groupID,
		Reason:          reason,
		DurationSeconds: durationSeconds,
	})
	if err != nil {
		utils.SendErrorResponse(s, i, userErrorMessage(err))
		return
	}

	utils.SendPublicResponse(s, i, confirmation(action, target.Username, durationSeconds))
}

func confirmation(action model.Action, username string, durationSeconds int64) string {
	switch action {
	case model.ActionMute:
		if durationSeconds > 0 {
			return fmt.Sprintf("🔇 %s has been muted for %s.", username, utils.FormatDuration(time.Duration(durationSeconds)*time.Second))
		}
		return fmt.Sprintf("🔇 %s has been muted.", username)
	case model.ActionUnmute:
		return fmt.Sprintf("🔊 %s has been unmuted.", username)
	case model.ActionBan:
		return fmt.Sprintf("🔨 %s has been banned.", username)
	case model.ActionUnban:
		return fmt.Sprintf("✅ %s has been unbanned.", username)
	case model.ActionKick:
		return fmt.Sprintf("👢 %s has been kicked.", username)
	default:
		return fmt.Sprintf("Done: %s on %s.", action, username)
	}
}

// HandleMemberAdd registers a join or rejoin. Rejoining reactivates the old
// member record with its history intact; banned members stay inactive and get
// no welcome.
func HandleMemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd, b *bot.Bot) {
	if e.User == nil || e.User.Bot {
		return
	}
	groupID, err := parseSnowflake(e.GuildID)
	if err != nil {
		return
	}
	userID, err := parseSnowflake(e.User.ID)
	if err != nil {
		return
	}

	serverCfg := b.GetConfig().ServerConfigs[e.GuildID]

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	now := time.Now().Unix()
	ev := model.ActivityEvent{
		GroupID:    groupID,
		GroupTitle: serverCfg.Name,
		GroupType:  "supergroup",
		UserID:     userID,
		Username:   e.User.Username,
		FirstName:  e.User.GlobalName,
		Timestamp:  now,
	}

	if _, err := b.Store.GetOrCreateUser(ctx, ev, now); err != nil {
		log.Printf("Could not register joining user %d: %v", userID, err)
		return
	}
	group, err := b.Store.GetOrCreateGroup(ctx, ev, now)
	if err != nil {
		log.Printf("Could not register group %d on join: %v", groupID, err)
		return
	}
	member, err := b.Store.GetOrCreateMember(ctx, groupID, userID, now)
	if err != nil {
		log.Printf("Could not register member %d in group %d: %v", userID, groupID, err)
		return
	}

	if member.IsBanned || !group.WelcomeEnabled || serverCfg.WelcomeChannelID == "" {
		return
	}
	if _, err := s.ChannelMessageSend(serverCfg.WelcomeChannelID,
		fmt.Sprintf("👋 Welcome to %s, <@%s>!", group.Title, e.User.ID)); err != nil {
		log.Printf("Could not send welcome message in group %d: %v", groupID, err)
	}
}

// HandleMemberRemove marks a platform-reported departure. Bans issued through
// the bot also raise this event; the store keeps the ban flags in that case.
func HandleMemberRemove(s *discordgo.Session, e *discordgo.GuildMemberRemove, b *bot.Bot) {
	groupID, err := parseSnowflake(e.GuildID)
	if err != nil {
		return
	}
	userID, err := parseSnowflake(e.User.ID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := b.Moderation.MarkLeft(ctx, userID, groupID); err != nil {
		// ErrInvalidState here just means the member was already inactive.
		log.Printf("Could not mark user %d as left from group %d: %v", userID, groupID, err)
	}
}

// HandleMemberUpdate syncs role changes into the stored member record and
// drops the cached admin roster for the guild.
func HandleMemberUpdate(s *discordgo.Session, e *discordgo.GuildMemberUpdate, b *bot.Bot) {
	groupID, err := parseSnowflake(e.GuildID)
	if err != nil {
		return
	}
	userID, err := parseSnowflake(e.User.ID)
	if err != nil {
		return
	}

	serverCfg, ok := b.GetConfig().ServerConfigs[e.GuildID]
	if !ok {
		return
	}

	role := model.RoleMember
	for _, configured := range serverCfg.AdminRoleIDs {
		for _, held := range e.Roles {
			if held == configured {
				role = model.RoleAdmin
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := b.Store.SetRole(ctx, groupID, userID, role); err != nil {
		if !isNotFound(err) {
			log.Printf("Could not update role of user %d in group %d: %v", userID, groupID, err)
		}
		return
	}
	b.Resolver.InvalidateRoster(groupID)
}
