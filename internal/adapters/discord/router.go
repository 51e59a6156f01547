package discord

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/guildtools/party-bot/internal/app/service"
	"github.com/guildtools/party-bot/internal/domain"
)

const clickWindow = 2 * time.Second

type Router struct {
	s       *discordgo.Session
	guildID string

	parties      *service.PartyService
	clickLimiter *clickLimiter
	admins       *AdminChecker
	log          *zap.Logger
}

func NewRouter(s *discordgo.Session, guildID string, parties *service.PartyService, admins *AdminChecker, log *zap.Logger) *Router {
	return &Router{
		s:            s,
		guildID:      guildID,
		parties:      parties,
		clickLimiter: newClickLimiter(clickWindow),
		admins:       admins,
		log:          log,
	}
}

// Register creates the slash commands for the configured guild.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.guildID, cmd); err != nil {
			return fmt.Errorf("register /%s: %w", cmd.Name, err)
		}
	}
	return nil
}

// Handlers wires the gateway events into the dispatch methods.
func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleCommand(ic)
		case discordgo.InteractionMessageComponent:
			r.handleComponent(ic)
		case discordgo.InteractionModalSubmit:
			r.handleModalSubmit(ic)
		}
	})

	r.s.AddHandler(func(s *discordgo.Session, _ *discordgo.Ready) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			n, err := r.parties.RestoreAll(ctx)
			if err != nil {
				r.log.Error("party restore failed", zap.Error(err))
				return
			}
			r.log.Info("party messages restored", zap.Int("count", n))
		}()
	})
}

func (r *Router) handleCommand(ic *discordgo.InteractionCreate) {
	data := ic.ApplicationCommandData()
	actorID := ic.Member.User.ID
	r.log.Info("slash command", zap.String("name", data.Name), zap.String("user", actorID), zap.String("guild", ic.GuildID))

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in slash command", zap.String("name", data.Name), zap.Any("panic", rec))
			r.ReplyEphemeral(ic, "⚠️ Something went wrong. Please try again.")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	// /party answers with the party message itself, so it must not be
	// deferred as ephemeral.
	if data.Name == "party" {
		r.handleCreateParty(ctx, ic, data)
		return
	}

	_ = r.DeferEphemeral(ic)

	switch data.Name {
	case "parties":
		r.handleListParties(ctx, ic)

	case "admin-party-stats":
		if !r.admins.IsGuildAdministrator(ic.GuildID, actorID) {
			r.ReplyEphemeral(ic, userMessage(service.ErrForbidden))
			return
		}
		r.handleStats(ctx, ic)

	case "admin-delete-party":
		prefix := optStr(data.Options, "party_id")
		p, err := r.parties.ForceDelete(ctx, ic.GuildID, prefix, actorID)
		if err != nil {
			r.ReplyEphemeral(ic, userMessage(err))
			return
		}
		r.ReplyEphemeral(ic, fmt.Sprintf("🗑️ Deleted **%s** (`%s`).", p.Name, shortID(p.ID.String())))

	case "admin-clear-parties":
		n, err := r.parties.ClearGuild(ctx, ic.GuildID, actorID)
		if err != nil {
			r.ReplyEphemeral(ic, userMessage(err))
			return
		}
		r.ReplyEphemeral(ic, fmt.Sprintf("🗑️ Cleared **%d** parties from this server.", n))

	default:
		r.ReplyEphemeral(ic, "🤷 Unknown command.")
	}
}

func (r *Router) handleCreateParty(ctx context.Context, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	name := optStr(data.Options, "name")
	start := optStr(data.Options, "starttime")

	p, err := r.parties.Create(ctx, ic.GuildID, ic.ChannelID, name, start, ic.Member.User.ID, displayName(ic.Member))
	if err != nil {
		_ = r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: userMessage(err),
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	err = r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{renderPartyEmbed(p)},
			Components: partyComponents(p, false),
		},
	})
	if err != nil {
		r.log.Error("party message send failed", zap.String("party", p.ID.String()), zap.Error(err))
		return
	}

	// The created row only becomes restorable once it knows its message.
	msg, err := r.s.InteractionResponse(ic.Interaction, discordgo.WithContext(ctx))
	if err == nil {
		err = r.parties.AttachMessage(ctx, p.ID, msg.ID)
	}
	if err != nil {
		r.log.Warn("party message attach failed", zap.String("party", p.ID.String()), zap.Error(err))
	}
}

func (r *Router) handleListParties(ctx context.Context, ic *discordgo.InteractionCreate) {
	parties, err := r.parties.List(ctx, ic.GuildID)
	if err != nil {
		r.ReplyEphemeral(ic, userMessage(err))
		return
	}
	if len(parties) == 0 {
		r.ReplyEphemeral(ic, "📭 No active parties. Start one with `/party`!")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📋 Active Parties (%d)", len(parties)),
		Color: embedColor,
	}
	for _, p := range parties {
		start := "not set"
		if p.StartAt != nil {
			start = fmt.Sprintf("<t:%d:R>", p.StartAt.Unix())
		} else if p.StartText != "" {
			start = p.StartText
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "⚔️ " + p.Name,
			Value: fmt.Sprintf("`%s` • %d/%d members • starts %s",
				shortID(p.ID.String()), p.AttendingCount(), p.Slots.Total(), start),
		})
	}
	r.ReplyEphemeralEmbed(ic, embed)
}

func (r *Router) handleStats(ctx context.Context, ic *discordgo.InteractionCreate) {
	stats, err := r.parties.Stats(ctx, ic.GuildID)
	if err != nil {
		r.ReplyEphemeral(ic, userMessage(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 Party Stats",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Parties", Value: fmt.Sprintf("%d", stats.TotalParties), Inline: true},
			{Name: "Signups", Value: fmt.Sprintf("%d", stats.TotalMembers), Inline: true},
			{Name: "By Role", Value: fmt.Sprintf("🛡️ %d • 💚 %d • ⚔️ %d • ❌ %d",
				stats.RoleCounts[domain.RoleTank],
				stats.RoleCounts[domain.RoleHealer],
				stats.RoleCounts[domain.RoleDPS],
				stats.RoleCounts[domain.RoleCantAttend]),
			},
		},
	}
	if top := topJoiners(stats.PartiesPerUser, 5); top != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Top Joiners", Value: top})
	}
	r.ReplyEphemeralEmbed(ic, embed)
}

func topJoiners(perUser map[string]int, limit int) string {
	type row struct {
		name string
		n    int
	}
	rows := make([]row, 0, len(perUser))
	for name, n := range perUser {
		rows = append(rows, row{name, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].name < rows[j].name
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	var b strings.Builder
	for _, rw := range rows {
		fmt.Fprintf(&b, "**%s** — %d\n", rw.name, rw.n)
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// userMessage turns service and domain errors into replies a member can act
// on; anything unexpected gets a generic line and a log entry upstream.
func userMessage(err error) string {
	var roleFull *domain.RoleFullError
	var noSlots *domain.NoSlotsError
	var invalid *service.ValidationError
	switch {
	case errors.As(err, &roleFull):
		return fmt.Sprintf("❌ %s slots are full! (%d/%d)", roleFull.Role.Label(), roleFull.Current, roleFull.Capacity)
	case errors.As(err, &noSlots):
		return fmt.Sprintf("❌ No %s slots available in this party!", noSlots.Role.Label())
	case errors.As(err, &invalid):
		return "❌ " + invalid.Error()
	case errors.Is(err, service.ErrNotFound):
		return "❌ Party not found!"
	case errors.Is(err, service.ErrForbidden):
		return "🔒 Only the party creator or an admin can do that."
	case errors.Is(err, service.ErrConfirmationExpired):
		return "⌛ That confirmation expired. Try again."
	case errors.Is(err, domain.ErrNotAMember):
		return "❌ You're not in this party!"
	case errors.Is(err, domain.ErrUnknownRole):
		return "❌ That role doesn't exist."
	default:
		return "⚠️ Something went wrong. Please try again."
	}
}
