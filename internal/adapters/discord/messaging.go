package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// DeferEphemeral acknowledges the interaction so we can take longer than 3s.
func (r *Router) DeferEphemeral(ic *discordgo.InteractionCreate) error {
	err := r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		r.log.Warn("defer ephemeral failed", zap.Error(err))
	}
	return err
}

// ReplyEphemeral sends an ephemeral followup, falling back to a fresh
// response when the interaction was never acknowledged (code 10015).
func (r *Router) ReplyEphemeral(ic *discordgo.InteractionCreate, content string, components ...discordgo.MessageComponent) {
	_, err := r.s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
		Content:    content,
		Components: components,
		Flags:      discordgo.MessageFlagsEphemeral,
	})
	if err == nil {
		return
	}
	var reqErr *discordgo.RESTError
	if errors.As(err, &reqErr) && reqErr.Message != nil && reqErr.Message.Code == 10015 {
		_ = r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    content,
				Flags:      discordgo.MessageFlagsEphemeral,
				Components: components,
			},
		})
		return
	}
	r.log.Warn("ephemeral followup failed", zap.Error(err))
}

// ReplyEphemeralEmbed is ReplyEphemeral for embed payloads.
func (r *Router) ReplyEphemeralEmbed(ic *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	_, err := r.s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		r.log.Warn("ephemeral embed followup failed", zap.Error(err))
	}
}
