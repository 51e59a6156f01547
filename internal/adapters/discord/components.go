package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guildtools/party-bot/internal/app/service"
	"github.com/guildtools/party-bot/internal/domain"
)

var joinReplies = map[domain.Role]string{
	domain.RoleTank:       "🛡️ **Joined as Tank!**",
	domain.RoleHealer:     "💚 **Joined as Healer!**",
	domain.RoleDPS:        "⚔️ **Joined as DPS!**",
	domain.RoleCantAttend: "❌ **Marked as Can't Attend.**",
}

// handleComponent dispatches button clicks. Custom IDs are self-contained,
// `action[:role]:party-id` or `action:token`, so clicks keep working on
// messages rendered before the last restart.
func (r *Router) handleComponent(ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	actorID := ic.Member.User.ID

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in component", zap.String("custom_id", data.CustomID), zap.Any("panic", rec))
			r.ReplyEphemeral(ic, "⚠️ Something went wrong. Please try again.")
		}
	}()

	action, rest, _ := strings.Cut(data.CustomID, ":")

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	// The edit button answers with a modal, which has to be the initial
	// interaction response, so it cannot go through the deferred path.
	if action == "party_edit" {
		r.handleEditButton(ctx, ic, rest)
		return
	}

	_ = r.DeferEphemeral(ic)

	switch action {
	case "party_join":
		roleRaw, idRaw, ok := strings.Cut(rest, ":")
		if !ok {
			r.ReplyEphemeral(ic, "❌ Party not found!")
			return
		}
		if !r.clickLimiter.Allow(actorID) {
			r.ReplyEphemeral(ic, "⏳ Easy there, give it a second…")
			return
		}
		id, err := uuid.Parse(idRaw)
		if err != nil {
			r.ReplyEphemeral(ic, "❌ Party not found!")
			return
		}
		_, err = r.parties.Join(ctx, id, actorID, displayName(ic.Member), domain.Role(roleRaw))
		if err != nil {
			r.ReplyEphemeral(ic, userMessage(err))
			return
		}
		r.ReplyEphemeral(ic, joinReplies[domain.Role(roleRaw)])

	case "party_leave":
		if !r.clickLimiter.Allow(actorID) {
			r.ReplyEphemeral(ic, "⏳ Easy there, give it a second…")
			return
		}
		id, err := uuid.Parse(rest)
		if err != nil {
			r.ReplyEphemeral(ic, "❌ Party not found!")
			return
		}
		if _, err := r.parties.Leave(ctx, id, actorID); err != nil {
			r.ReplyEphemeral(ic, userMessage(err))
			return
		}
		r.ReplyEphemeral(ic, "🚪 **Left the party.** You're no longer signed up.")

	case "party_delete":
		id, err := uuid.Parse(rest)
		if err != nil {
			r.ReplyEphemeral(ic, "❌ Party not found!")
			return
		}
		token, p, err := r.parties.RequestDelete(ctx, id, actorID)
		if err != nil {
			r.ReplyEphemeral(ic, userMessage(err))
			return
		}
		r.ReplyEphemeral(ic,
			fmt.Sprintf("🗑️ Delete **%s**? This can't be undone.", p.Name),
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Delete",
					Style:    discordgo.DangerButton,
					CustomID: "party_delete_confirm:" + token,
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: "party_delete_cancel:" + token,
				},
			}},
		)

	case "party_delete_confirm":
		p, err := r.parties.ConfirmDelete(ctx, rest, actorID)
		if err != nil {
			r.ReplyEphemeral(ic, userMessage(err))
			return
		}
		r.ReplyEphemeral(ic, fmt.Sprintf("🗑️ **%s** was deleted.", p.Name))

	case "party_delete_cancel":
		if r.parties.CancelDelete(rest, actorID) {
			r.ReplyEphemeral(ic, "👍 Deletion cancelled.")
			return
		}
		r.ReplyEphemeral(ic, userMessage(service.ErrConfirmationExpired))

	default:
		r.log.Warn("unknown component", zap.String("custom_id", data.CustomID))
		r.ReplyEphemeral(ic, "🤷 That button is no longer wired up.")
	}
}

// displayName prefers the guild nick over the account name, like the member
// list in the client does.
func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
