package service

import (
	"math"

	"github.com/advisorly/review-engine-backend/internal/model"
)

// NegligibleAmount is the threshold below which an activity record is
// treated as rounding noise and ignored.
const NegligibleAmount = 0.01

// Bucket identifies the canonical cash-flow bucket an activity record
// belongs to. Classification is exhaustive and mutually exclusive.
type Bucket int

// Canonical buckets.
const (
	BucketIgnored Bucket = iota
	BucketInvestment
	BucketRegularInvestment
	BucketTaxUplift
	BucketProductSwitchIn
	BucketProductSwitchOut
	BucketFundSwitchIn
	BucketFundSwitchOut
	BucketWithdrawal
)

// Classify maps an activity record to its canonical bucket. Records with an
// absolute amount below NegligibleAmount classify as ignored regardless of
// type, as do unrecognised types.
func Classify(rec model.ActivityRecord) Bucket {
	if math.Abs(rec.Amount) < NegligibleAmount {
		return BucketIgnored
	}

	switch rec.Type {
	case model.ActivityInvestment:
		return BucketInvestment
	case model.ActivityRegularInvestment:
		return BucketRegularInvestment
	case model.ActivityTaxUplift:
		return BucketTaxUplift
	case model.ActivityProductSwitchIn:
		return BucketProductSwitchIn
	case model.ActivityProductSwitchOut:
		return BucketProductSwitchOut
	case model.ActivitySwitchIn, model.ActivityFundSwitchIn:
		return BucketFundSwitchIn
	case model.ActivitySwitchOut, model.ActivityFundSwitchOut:
		return BucketFundSwitchOut
	case model.ActivityWithdrawal:
		return BucketWithdrawal
	default:
		return BucketIgnored
	}
}

// accumulate applies one classified amount to the running totals. Amounts
// are stored as magnitudes per bucket; direction is carried by the bucket.
func accumulate(totals *model.ActivityTotals, bucket Bucket, amount float64) {
	value := math.Abs(amount)

	switch bucket {
	case BucketInvestment:
		totals.Investment += value
	case BucketRegularInvestment:
		totals.RegularInvestment += value
	case BucketTaxUplift:
		totals.TaxUplift += value
	case BucketProductSwitchIn:
		totals.ProductSwitchIn += value
	case BucketProductSwitchOut:
		totals.ProductSwitchOut += value
	case BucketFundSwitchIn:
		totals.FundSwitchIn += value
	case BucketFundSwitchOut:
		totals.FundSwitchOut += value
	case BucketWithdrawal:
		totals.Withdrawal += value
	case BucketIgnored:
	}
}
