package discord

import (
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildtools/party-bot/internal/domain"
)

func testParty(t *testing.T) *domain.Party {
	t.Helper()
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	return &domain.Party{
		ID:        uuid.MustParse("a2f1c9de-0b67-44d0-9c11-3a7f25c0be01"),
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		MessageID: "msg-1",
		Name:      "ZvZ Friday",
		Slots:     domain.Capacities{Tank: 2, Healer: 1, DPS: 4},
		CreatedBy: "creator",
		Members: map[string]domain.Member{
			"creator": {DisplayName: "Ana", Role: domain.RoleTank, JoinedAt: base},
			"u2":      {DisplayName: "Bo", Role: domain.RoleTank, JoinedAt: base.Add(time.Minute)},
			"u3":      {DisplayName: "Cy", Role: domain.RoleDPS, JoinedAt: base.Add(2 * time.Minute)},
			"u4":      {DisplayName: "Di", Role: domain.RoleCantAttend, JoinedAt: base.Add(3 * time.Minute)},
		},
	}
}

func fieldByName(t *testing.T, e *discordgo.MessageEmbed, name string) *discordgo.MessageEmbedField {
	t.Helper()
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("embed has no field %q", name)
	return nil
}

func TestRenderPartyEmbed(t *testing.T) {
	p := testParty(t)
	e := renderPartyEmbed(p)

	assert.Equal(t, "⚔️ ZvZ Friday", e.Title)

	tanks := fieldByName(t, e, "🛡️ Tank (2/2)")
	assert.Equal(t, "👑 **Ana**\n**Bo**", tanks.Value)

	healers := fieldByName(t, e, "💚 Healer (0/1)")
	assert.Equal(t, "*Empty*", healers.Value)

	dps := fieldByName(t, e, "⚔️ DPS (1/4)")
	assert.Equal(t, "**Cy**\n*Empty*\n*Empty*\n*Empty*", dps.Value)

	cant := fieldByName(t, e, "❌ Can't Attend (1)")
	assert.Equal(t, "**Di**", cant.Value)

	// Attending count skips the can't-attend signup.
	require.NotNil(t, e.Footer)
	assert.Equal(t, "Ana's Party • 3/7 members", e.Footer.Text)
}

func TestRenderPartyEmbedStartTime(t *testing.T) {
	p := testParty(t)

	at := time.Date(2026, 9, 5, 20, 0, 0, 0, time.UTC)
	p.StartAt = &at
	p.StartText = "2026-09-05 20:00 UTC"
	e := renderPartyEmbed(p)
	want := fmt.Sprintf("<t:%d:F> (<t:%d:R>)", at.Unix(), at.Unix())
	assert.Equal(t, want, fieldByName(t, e, "🕐 Party Starts").Value)

	p.StartAt = nil
	p.StartText = "after the zvz"
	e = renderPartyEmbed(p)
	assert.Equal(t, "**after the zvz**", fieldByName(t, e, "🕐 Party Starts").Value)

	p.StartText = ""
	e = renderPartyEmbed(p)
	assert.Equal(t, "*Not set*", fieldByName(t, e, "🕐 Party Starts").Value)
}

func TestRenderPartyEmbedZeroCapacity(t *testing.T) {
	p := testParty(t)
	p.Slots.Healer = 0
	e := renderPartyEmbed(p)
	assert.Equal(t, "*No Healer Slots Set*", fieldByName(t, e, "💚 Healer (0/0)").Value)
}

func TestPartyComponentsCustomIDs(t *testing.T) {
	p := testParty(t)
	id := p.ID.String()

	var ids []string
	var disabled []bool
	for _, row := range partyComponents(p, false) {
		ar, ok := row.(discordgo.ActionsRow)
		require.True(t, ok)
		for _, c := range ar.Components {
			btn, ok := c.(discordgo.Button)
			require.True(t, ok)
			ids = append(ids, btn.CustomID)
			disabled = append(disabled, btn.Disabled)
		}
	}

	assert.Equal(t, []string{
		"party_join:tank:" + id,
		"party_join:healer:" + id,
		"party_join:dps:" + id,
		"party_join:cant_attend:" + id,
		"party_leave:" + id,
		"party_edit:" + id,
		"party_delete:" + id,
	}, ids)
	assert.NotContains(t, disabled, true)

	for _, row := range partyComponents(p, true) {
		for _, c := range row.(discordgo.ActionsRow).Components {
			assert.True(t, c.(discordgo.Button).Disabled)
		}
	}
}

func TestMemberLinesOrdering(t *testing.T) {
	p := testParty(t)
	// Bo joined after Ana; creator crown does not reorder.
	assert.Equal(t, []string{"👑 **Ana**", "**Bo**"}, memberLines(p, domain.RoleTank))
}
