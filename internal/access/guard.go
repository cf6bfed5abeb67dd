package access

import (
	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
)

// Guard decides whether an acting identity may touch a given card: admins may
// touch any card, everyone else only their own.
type Guard struct{}

func New() *Guard {
	return &Guard{}
}

func (g *Guard) Authorize(identity domain.Identity, card *domain.Card) error {
	if identity.IsAdmin() || identity.UserID == card.UserID {
		return nil
	}
	zap.L().Warn("access to card denied",
		zap.String("username", identity.Username),
		zap.Int64("cardID", card.ID))
	return domain.ErrUnauthorizedOperation
}
