package service

import (
	"context"

	"github.com/guildtools/party-bot/internal/domain"
)

// GuildStats is the aggregation behind the admin stats command. Formatting
// is the adapter's job; this only counts.
type GuildStats struct {
	TotalParties int
	// TotalMembers counts signed-up attendees; "can't attend" is excluded.
	TotalMembers int
	RoleCounts   map[domain.Role]int
	// PartiesPerUser maps display name to the number of parties joined.
	PartiesPerUser map[string]int
}

func (s *PartyService) Stats(ctx context.Context, guildID string) (GuildStats, error) {
	parties, err := s.store.ListByGuild(ctx, guildID)
	if err != nil {
		return GuildStats{}, err
	}

	stats := GuildStats{
		TotalParties: len(parties),
		RoleCounts: map[domain.Role]int{
			domain.RoleTank: 0, domain.RoleHealer: 0, domain.RoleDPS: 0, domain.RoleCantAttend: 0,
		},
		PartiesPerUser: map[string]int{},
	}
	for _, p := range parties {
		for _, m := range p.Members {
			if m.Role != domain.RoleCantAttend {
				stats.TotalMembers++
			}
			if _, ok := stats.RoleCounts[m.Role]; ok {
				stats.RoleCounts[m.Role]++
			}
			stats.PartiesPerUser[m.DisplayName]++
		}
	}
	return stats, nil
}
