package discord

import "github.com/bwmarrin/discordgo"

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "party",
		Description: "Create a party with join-up buttons",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Name of the party",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "starttime",
				Description: "When the party starts (e.g. 2026-09-05 20:00 UTC, or free text)",
				Required:    false,
			},
		},
	},
	{
		Name:        "parties",
		Description: "List the active parties in this server",
	},
	{
		Name:        "admin-party-stats",
		Description: "Show party statistics for this server (admins)",
	},
	{
		Name:        "admin-delete-party",
		Description: "Delete a party by ID without confirmation (admins)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "party_id",
			Description: "Party ID or a unique prefix of it",
			Required:    true,
		}},
	},
	{
		Name:        "admin-clear-parties",
		Description: "Delete ALL parties in this server (admins)",
	},
}

func optStr(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue()
		}
	}
	return ""
}
