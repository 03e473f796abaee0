package reconcile

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/blues/efs/internal/model"
)

// ErrInvalidSplitPolicy 分成比例非法，拒绝进入任何拨付计算
var ErrInvalidSplitPolicy = errors.New("invalid tip split policy")

// ValidateSplitPolicy 校验分成策略：两个百分比都在 [0,100] 且和恰好为 100
func ValidateSplitPolicy(policy model.TipSplitPolicyModel) error {
	if policy.SubmitterPercent < 0 || policy.SubmitterPercent > 100 {
		return fmt.Errorf("%w: submitter percent %d out of range", ErrInvalidSplitPolicy, policy.SubmitterPercent)
	}
	if policy.NonprofitPercent < 0 || policy.NonprofitPercent > 100 {
		return fmt.Errorf("%w: nonprofit percent %d out of range", ErrInvalidSplitPolicy, policy.NonprofitPercent)
	}
	if policy.SubmitterPercent+policy.NonprofitPercent != 100 {
		return fmt.Errorf("%w: percents sum to %d, expected 100",
			ErrInvalidSplitPolicy, policy.SubmitterPercent+policy.NonprofitPercent)
	}
	return nil
}

// ApplySplit 按策略拆分金额。
// submitter 份额向下取整，余数全部归 nonprofit，两份之和恒等于输入金额。
func ApplySplit(amount *big.Int, policy model.TipSplitPolicyModel) (*big.Int, *big.Int, error) {
	if err := ValidateSplitPolicy(policy); err != nil {
		return nil, nil, err
	}
	if amount.Sign() < 0 {
		return nil, nil, fmt.Errorf("negative split amount %s", amount.String())
	}

	submitterShare := new(big.Int).Mul(amount, big.NewInt(int64(policy.SubmitterPercent)))
	submitterShare.Quo(submitterShare, big.NewInt(100))
	nonprofitShare := new(big.Int).Sub(amount, submitterShare)

	return submitterShare, nonprofitShare, nil
}

// ComputePending 计算待拨付余额。
// 已拨付超过已筹集属于数据完整性错误：clamp 到 0 并打标上报，不静默修正。
func ComputePending(grossRaised, tipsReceived, totalDistributed, tipsDistributed *big.Int) model.PendingDistribution {
	pending := model.PendingDistribution{
		PendingFundsNative: new(big.Int),
		PendingTipsNative:  new(big.Int),
	}

	funds := new(big.Int).Sub(orZero(grossRaised), orZero(totalDistributed))
	if funds.Sign() < 0 {
		pending.DistributedExceedsRaised = true
	} else {
		pending.PendingFundsNative = funds
	}

	tips := new(big.Int).Sub(orZero(tipsReceived), orZero(tipsDistributed))
	if tips.Sign() < 0 {
		pending.TipsExceedReceived = true
	} else {
		pending.PendingTipsNative = tips
	}

	return pending
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
