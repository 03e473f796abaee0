package reconcile

import (
	"math/big"
	"testing"

	"github.com/blues/efs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policy(submitter, nonprofit int) model.TipSplitPolicyModel {
	return model.TipSplitPolicyModel{SubmitterPercent: submitter, NonprofitPercent: nonprofit}
}

func TestValidateSplitPolicy(t *testing.T) {
	assert.NoError(t, ValidateSplitPolicy(policy(100, 0)))
	assert.NoError(t, ValidateSplitPolicy(policy(0, 100)))
	assert.NoError(t, ValidateSplitPolicy(policy(70, 30)))

	assert.ErrorIs(t, ValidateSplitPolicy(policy(70, 20)), ErrInvalidSplitPolicy)
	assert.ErrorIs(t, ValidateSplitPolicy(policy(-1, 101)), ErrInvalidSplitPolicy)
	assert.ErrorIs(t, ValidateSplitPolicy(policy(101, -1)), ErrInvalidSplitPolicy)
}

func TestApplySplitRemainderGoesToNonprofit(t *testing.T) {
	// 101 的 70% 向下取整为 70，余数 31 归 nonprofit
	submitter, nonprofit, err := ApplySplit(big.NewInt(101), policy(70, 30))
	require.NoError(t, err)

	assert.Equal(t, int64(70), submitter.Int64())
	assert.Equal(t, int64(31), nonprofit.Int64())
}

func TestApplySplitSumInvariant(t *testing.T) {
	amounts := []int64{0, 1, 99, 100, 101, 999999999999}
	for _, raw := range amounts {
		for _, p := range []model.TipSplitPolicyModel{policy(0, 100), policy(33, 67), policy(100, 0)} {
			amount := big.NewInt(raw)
			submitter, nonprofit, err := ApplySplit(amount, p)
			require.NoError(t, err)

			sum := new(big.Int).Add(submitter, nonprofit)
			assert.Zero(t, sum.Cmp(amount), "split of %d under %d/%d must sum exactly", raw, p.SubmitterPercent, p.NonprofitPercent)
			assert.GreaterOrEqual(t, submitter.Sign(), 0)
			assert.GreaterOrEqual(t, nonprofit.Sign(), 0)
		}
	}
}

func TestApplySplitRejectsInvalidInput(t *testing.T) {
	_, _, err := ApplySplit(big.NewInt(100), policy(60, 50))
	assert.ErrorIs(t, err, ErrInvalidSplitPolicy)

	_, _, err = ApplySplit(big.NewInt(-1), policy(50, 50))
	assert.Error(t, err)
}

func TestComputePending(t *testing.T) {
	pending := ComputePending(big.NewInt(1000), big.NewInt(100), big.NewInt(400), big.NewInt(30))

	assert.Equal(t, int64(600), pending.PendingFundsNative.Int64())
	assert.Equal(t, int64(70), pending.PendingTipsNative.Int64())
	assert.False(t, pending.DistributedExceedsRaised)
	assert.False(t, pending.TipsExceedReceived)
}

func TestComputePendingClampsOverdistribution(t *testing.T) {
	// 已拨付超过已筹集：clamp 到 0 并打标，不产生负余额
	pending := ComputePending(big.NewInt(100), big.NewInt(10), big.NewInt(150), big.NewInt(25))

	assert.Equal(t, int64(0), pending.PendingFundsNative.Int64())
	assert.Equal(t, int64(0), pending.PendingTipsNative.Int64())
	assert.True(t, pending.DistributedExceedsRaised)
	assert.True(t, pending.TipsExceedReceived)
}

func TestComputePendingNilInputs(t *testing.T) {
	pending := ComputePending(nil, nil, nil, nil)

	assert.Equal(t, int64(0), pending.PendingFundsNative.Int64())
	assert.Equal(t, int64(0), pending.PendingTipsNative.Int64())
	assert.False(t, pending.DistributedExceedsRaised)
}
