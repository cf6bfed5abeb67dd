package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avoronov/bankcards/internal/domain"
)

func TestAuthorize(t *testing.T) {
	guard := New()
	card := &domain.Card{ID: 10, UserID: 1}

	tests := []struct {
		name      string
		identity  domain.Identity
		expectErr error
	}{
		{
			name:     "Owner allowed",
			identity: domain.Identity{UserID: 1, Username: "owner", Role: domain.RoleUser},
		},
		{
			name:     "Admin allowed",
			identity: domain.Identity{UserID: 99, Username: "admin", Role: domain.RoleAdmin},
		},
		{
			name:      "Stranger denied",
			identity:  domain.Identity{UserID: 2, Username: "stranger", Role: domain.RoleUser},
			expectErr: domain.ErrUnauthorizedOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Authorize(tt.identity, card)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
