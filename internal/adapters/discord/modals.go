package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guildtools/party-bot/internal/app/service"
	"github.com/guildtools/party-bot/internal/domain"
)

// handleEditButton answers the edit click with a modal pre-filled from the
// current party state. Authorization is checked here to avoid showing a
// modal that can only fail, and again inside Edit on submit.
func (r *Router) handleEditButton(ctx context.Context, ic *discordgo.InteractionCreate, idRaw string) {
	id, err := uuid.Parse(idRaw)
	if err != nil {
		r.ReplyEphemeral(ic, "❌ Party not found!")
		return
	}
	p, err := r.parties.Get(ctx, id)
	if err != nil {
		r.ReplyEphemeral(ic, userMessage(err))
		return
	}
	if !r.parties.CanManage(p, ic.Member.User.ID) {
		r.ReplyEphemeral(ic, userMessage(service.ErrForbidden))
		return
	}

	text := func(customID, label, value string, maxLen int, required bool) discordgo.ActionsRow {
		return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:  customID,
				Label:     label,
				Style:     discordgo.TextInputShort,
				Value:     value,
				MaxLength: maxLen,
				Required:  required,
			},
		}}
	}

	err = r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "party_editmodal:" + p.ID.String(),
			Title:    "Edit Party",
			Components: []discordgo.MessageComponent{
				text("name", "Party Name", p.Name, domain.MaxNameLength, true),
				text("starttime", "Start Time", p.StartText, domain.MaxStartTimeLength, false),
				text("tank_slots", "Tank Slots", strconv.Itoa(p.Slots.Tank), 2, true),
				text("healer_slots", "Healer Slots", strconv.Itoa(p.Slots.Healer), 2, true),
				text("dps_slots", "DPS Slots", strconv.Itoa(p.Slots.DPS), 2, true),
			},
		},
	})
	if err != nil {
		r.log.Warn("edit modal open failed", zap.String("party", idRaw), zap.Error(err))
	}
}

func (r *Router) handleModalSubmit(ic *discordgo.InteractionCreate) {
	data := ic.ModalSubmitData()
	actorID := ic.Member.User.ID

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in modal submit", zap.String("custom_id", data.CustomID), zap.Any("panic", rec))
			r.ReplyEphemeral(ic, "⚠️ Something went wrong. Please try again.")
		}
	}()

	_ = r.DeferEphemeral(ic)

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	const prefix = "party_editmodal:"
	if !strings.HasPrefix(data.CustomID, prefix) {
		r.log.Warn("unknown modal", zap.String("custom_id", data.CustomID))
		return
	}
	id, err := uuid.Parse(strings.TrimPrefix(data.CustomID, prefix))
	if err != nil {
		r.ReplyEphemeral(ic, "❌ Party not found!")
		return
	}

	values := modalValues(data.Components)
	p, err := r.parties.Edit(ctx, id, actorID, service.EditInput{
		Name:      values["name"],
		StartRaw:  values["starttime"],
		TankRaw:   values["tank_slots"],
		HealerRaw: values["healer_slots"],
		DPSRaw:    values["dps_slots"],
	})
	if err != nil {
		r.ReplyEphemeral(ic, userMessage(err))
		return
	}
	r.ReplyEphemeral(ic, fmt.Sprintf("✅ **%s** updated.", p.Name))
}

func modalValues(rows []discordgo.MessageComponent) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if in, ok := c.(*discordgo.TextInput); ok {
				out[in.CustomID] = in.Value
			}
		}
	}
	return out
}
