package titanium

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/titanium/reward"
)

func TestDescribeRewards(t *testing.T) {
	m := testRewards(t)
	lines := describeRewards(m, map[reward.Identifier]int{
		reward.MustIdentifier("welcome_hat"): 1,
		reward.MustIdentifier("event_badge"): 0,
		reward.MustIdentifier("gone"):        2,
	})
	assert.Equal(t, []string{
		"titanium:event_badge: bronze (0)",
		"titanium:gone: ? (2)",
		"titanium:welcome_hat: festive (1)",
	}, lines)
	assert.Empty(t, describeRewards(m, nil))
}

func TestGrantAndRevokeAll(t *testing.T) {
	ctx := context.Background()
	svc := reward.NewService(testRewards(t), nil)
	badge := reward.MustIdentifier("event_badge")
	a, b := uuid.New(), uuid.New()

	n, err := grantAll(ctx, svc, "overworld", []uuid.UUID{a, b}, badge, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = grantAll(ctx, svc, "overworld", []uuid.UUID{a}, badge, 7)
	assert.ErrorIs(t, err, reward.ErrInvalidOption)

	require.NoError(t, svc.Revoke(ctx, "overworld", b, badge))
	n, err = revokeAll(ctx, svc, "overworld", []uuid.UUID{a, b}, badge)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = revokeAll(ctx, svc, "overworld", []uuid.UUID{a}, reward.MustIdentifier("missing"))
	assert.ErrorIs(t, err, reward.ErrUnknownReward)
}

func TestRewardError(t *testing.T) {
	id := reward.MustIdentifier("cape")
	assert.Equal(t, "Unknown reward titanium:cape.", rewardError(id, 0, reward.ErrUnknownReward))
	assert.Equal(t, "Reward titanium:cape has no option 4.", rewardError(id, 4, reward.ErrInvalidOption))
	assert.Equal(t, "You do not own titanium:cape.", rewardError(id, 0, reward.ErrNotOwned))
}
