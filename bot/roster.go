package bot

import (
	"context"
	"fmt"
	"strconv"

	"guardian-bot/model"

	"github.com/bwmarrin/discordgo"
)

// GuildRoster answers "who are the platform admins of this group" by asking
// the gateway. Results are cached by the permission resolver, not here.
type GuildRoster struct {
	bot *Bot
}

// GetAdmins lists the guild owner and every member holding one of the
// configured admin roles.
func (g *GuildRoster) GetAdmins(ctx context.Context, groupID int64) ([]model.AdminEntry, error) {
	guildID := strconv.FormatInt(groupID, 10)

	serverCfg, ok := g.bot.GetConfig().ServerConfigs[guildID]
	if !ok {
		return nil, fmt.Errorf("no server config for guild %s", guildID)
	}

	guild, err := g.bot.Session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}

	var entries []model.AdminEntry
	ownerID, err := strconv.ParseInt(guild.OwnerID, 10, 64)
	if err == nil {
		entries = append(entries, model.AdminEntry{UserID: ownerID, Status: model.RoleCreator})
	}

	adminRoles := make(map[string]bool, len(serverCfg.AdminRoleIDs))
	for _, id := range serverCfg.AdminRoleIDs {
		adminRoles[id] = true
	}
	if len(adminRoles) == 0 {
		return entries, nil
	}

	after := ""
	for {
		members, err := g.bot.Session.GuildMembers(guildID, after, 1000, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch members of guild %s: %w", guildID, err)
		}
		if len(members) == 0 {
			break
		}
		for _, m := range members {
			after = m.User.ID
			if m.User.ID == guild.OwnerID {
				continue
			}
			for _, role := range m.Roles {
				if adminRoles[role] {
					uid, err := strconv.ParseInt(m.User.ID, 10, 64)
					if err == nil {
						entries = append(entries, model.AdminEntry{UserID: uid, Status: model.RoleAdmin})
					}
					break
				}
			}
		}
		if len(members) < 1000 {
			break
		}
	}
	return entries, nil
}
