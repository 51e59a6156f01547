package discord

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// AdminChecker answers "is this user a guild admin" from the gateway state.
// It implements service.AdminSource and also backs the router's own gating
// of the admin slash commands.
type AdminChecker struct {
	s       *discordgo.Session
	roleIDs []string
	log     *zap.Logger
}

func NewAdminChecker(s *discordgo.Session, roleIDs []string, log *zap.Logger) *AdminChecker {
	return &AdminChecker{s: s, roleIDs: roleIDs, log: log}
}

// IsGuildAdministrator: the guild owner, anyone holding a role with the
// Administrator bit, or anyone holding one of the configured admin roles.
func (a *AdminChecker) IsGuildAdministrator(guildID, userID string) bool {
	if g, _ := a.s.State.Guild(guildID); g != nil && g.OwnerID == userID {
		return true
	}

	member, err := a.s.State.Member(guildID, userID)
	if err != nil || member == nil {
		member, err = a.s.GuildMember(guildID, userID)
		if err != nil {
			a.log.Warn("member lookup failed", zap.String("user", userID), zap.Error(err))
			return false
		}
	}

	roles, _ := a.s.GuildRoles(guildID)
	var perms int64
outer:
	for _, rid := range member.Roles {
		for _, ro := range roles {
			if ro.ID == rid {
				perms |= ro.Permissions
				if (perms & discordgo.PermissionAdministrator) != 0 {
					break outer
				}
			}
		}
	}
	if (perms & discordgo.PermissionAdministrator) != 0 {
		return true
	}

	if len(a.roleIDs) > 0 {
		has := make(map[string]struct{}, len(member.Roles))
		for _, rid := range member.Roles {
			has[rid] = struct{}{}
		}
		for _, want := range a.roleIDs {
			if _, ok := has[want]; ok {
				return true
			}
		}
	}
	return false
}
