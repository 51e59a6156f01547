package service

import "github.com/guildtools/party-bot/internal/domain"

// Policy gates the mutating actions on a party. Join and leave are open to
// anyone who can see the channel; edit and delete belong to the creator and
// guild administrators.
type Policy struct {
	admins AdminSource
}

func NewPolicy(admins AdminSource) *Policy { return &Policy{admins: admins} }

func (p *Policy) CanManage(party *domain.Party, actorID string) bool {
	if actorID == party.CreatedBy {
		return true
	}
	return p.admins.IsGuildAdministrator(party.GuildID, actorID)
}

// RequireManage is the error-returning form used by the lifecycle paths.
func (p *Policy) RequireManage(party *domain.Party, actorID string) error {
	if !p.CanManage(party, actorID) {
		return ErrForbidden
	}
	return nil
}
