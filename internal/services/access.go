package services

import (
	"context"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
)

var ErrNotGroupMember = apperr.Forbidden("not a member of this group")

// authorizeGroup returns the group if userID may act in it: members of the
// group and the admin of its party may, everyone else gets ErrNotGroupMember.
func authorizeGroup(ctx context.Context, store repositories.Store, groupID, userID uint) (*models.Group, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	member, err := store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return group, nil
	}
	party, err := store.GetParty(ctx, group.PartyID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, ErrNotGroupMember
		}
		return nil, err
	}
	if party.AdminUserID != userID {
		return nil, ErrNotGroupMember
	}
	return group, nil
}
