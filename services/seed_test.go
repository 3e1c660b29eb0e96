package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tansa-registration/models"
	"tansa-registration/store/storetest"
)

func TestSeedRegistrations(t *testing.T) {
	s, _ := storetest.New(t)
	ctx := context.Background()

	created, err := SeedRegistrations(ctx, s, 8)
	require.NoError(t, err)
	require.Len(t, created, 8)

	codes := map[string]bool{}
	for _, reg := range created {
		stored, err := s.FindByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
		assert.True(t, IsValidReferralCodeFormat(stored.Code()))
		assert.False(t, codes[stored.Code()])
		codes[stored.Code()] = true
		assert.Equal(t, reg.ReferralPoints, stored.ReferralPoints)
		assert.GreaterOrEqual(t, stored.ReferralPoints, int64(0))
		assert.Less(t, stored.ReferralPoints, int64(16))
	}
}
