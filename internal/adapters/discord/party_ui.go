package discord

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/guildtools/party-bot/internal/domain"
)

const embedColor = 0x5865F2

var roleEmoji = map[domain.Role]string{
	domain.RoleTank:       "🛡️",
	domain.RoleHealer:     "💚",
	domain.RoleDPS:        "⚔️",
	domain.RoleCantAttend: "❌",
}

// renderPartyEmbed builds the single message a party lives in.
func renderPartyEmbed(p *domain.Party) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "⚔️ " + p.Name,
		Color: embedColor,
	}

	start := "*Not set*"
	if p.StartAt != nil {
		ts := p.StartAt.Unix()
		start = fmt.Sprintf("<t:%d:F> (<t:%d:R>)", ts, ts)
	} else if p.StartText != "" {
		start = "**" + p.StartText + "**"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "🕐 Party Starts",
		Value: start,
	})

	counts := p.CountByRole()
	for _, role := range domain.CapacityRoles {
		limit := p.Slots.Of(role)
		name := fmt.Sprintf("%s %s (%d/%d)", roleEmoji[role], role.Label(), counts[role], limit)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  roleSection(p, role, limit),
			Inline: true,
		})
	}

	if lines := memberLines(p, domain.RoleCantAttend); len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s Can't Attend (%d)", roleEmoji[domain.RoleCantAttend], len(lines)),
			Value: strings.Join(lines, "\n"),
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s's Party • %d/%d members", p.CreatorName(), p.AttendingCount(), p.Slots.Total()),
	}
	return embed
}

func roleSection(p *domain.Party, role domain.Role, limit int) string {
	if limit == 0 {
		return fmt.Sprintf("*No %s Slots Set*", role.Label())
	}
	lines := memberLines(p, role)
	for len(lines) < limit {
		lines = append(lines, "*Empty*")
	}
	return strings.Join(lines, "\n")
}

// memberLines lists a role's members oldest-first, crowning the creator.
func memberLines(p *domain.Party, role domain.Role) []string {
	type entry struct {
		id string
		m  domain.Member
	}
	var entries []entry
	for id, m := range p.Members {
		if m.Role == role {
			entries = append(entries, entry{id, m})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].m.JoinedAt.Equal(entries[j].m.JoinedAt) {
			return entries[i].m.JoinedAt.Before(entries[j].m.JoinedAt)
		}
		return entries[i].id < entries[j].id
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.id == p.CreatedBy {
			lines = append(lines, "👑 **"+e.m.DisplayName+"**")
		} else {
			lines = append(lines, "**"+e.m.DisplayName+"**")
		}
	}
	return lines
}

func partyComponents(p *domain.Party, disabled bool) []discordgo.MessageComponent {
	id := p.ID.String()
	btn := func(label, customID string, style discordgo.ButtonStyle, emoji string) discordgo.Button {
		return discordgo.Button{
			Label:    label,
			Style:    style,
			CustomID: customID,
			Disabled: disabled,
			Emoji:    &discordgo.ComponentEmoji{Name: emoji},
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			btn("Join as Tank", "party_join:tank:"+id, discordgo.PrimaryButton, "🛡️"),
			btn("Join as Healer", "party_join:healer:"+id, discordgo.SuccessButton, "💚"),
			btn("Join as DPS", "party_join:dps:"+id, discordgo.DangerButton, "⚔️"),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			btn("Can't Attend", "party_join:cant_attend:"+id, discordgo.SecondaryButton, "❌"),
			btn("Leave Party", "party_leave:"+id, discordgo.SecondaryButton, "🚪"),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			btn("Edit Party", "party_edit:"+id, discordgo.SecondaryButton, "✏️"),
			btn("Delete Party", "party_delete:"+id, discordgo.SecondaryButton, "🗑️"),
		}},
	}
}

func (r *Router) editPartyMessage(ctx context.Context, p *domain.Party, disabled bool) error {
	embeds := []*discordgo.MessageEmbed{renderPartyEmbed(p)}
	comps := partyComponents(p, disabled)
	_, err := r.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    p.ChannelID,
		ID:         p.MessageID,
		Embeds:     &embeds,
		Components: &comps,
	}, discordgo.WithContext(ctx))
	return err
}

// Refresh repaints the party message after a roster or metadata change.
func (r *Router) Refresh(ctx context.Context, p *domain.Party) error {
	return r.editPartyMessage(ctx, p, false)
}

// Attach re-renders a party message found in storage after a restart. The
// button custom IDs carry the party ID, so repainting is all it takes to
// make the components live again.
func (r *Router) Attach(ctx context.Context, p *domain.Party) error {
	return r.editPartyMessage(ctx, p, false)
}

// Neutralize disables the buttons on a deleted party's message.
func (r *Router) Neutralize(ctx context.Context, p *domain.Party) error {
	embeds := []*discordgo.MessageEmbed{{
		Title:       "🗑️ " + p.Name,
		Description: "This party was deleted.",
		Color:       0x99AAB5,
	}}
	comps := partyComponents(p, true)
	_, err := r.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    p.ChannelID,
		ID:         p.MessageID,
		Embeds:     &embeds,
		Components: &comps,
	}, discordgo.WithContext(ctx))
	return err
}
