package score

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Component caps. The total is the sum of the five components, each capped
// independently, so it always lands in [0, 70].
const (
	MaxAccountAge   = 15
	MaxFollowers    = 40
	MaxRatio        = 5
	MaxActivity     = 5
	MaxVerification = 5
	MaxTotal        = MaxAccountAge + MaxFollowers + MaxRatio + MaxActivity + MaxVerification
)

// Optimal following/follower ratio band. Full ratio points inside the band,
// a log10-distance deduction outside it.
var (
	ratioBandLow  = 0.1
	ratioBandHigh = 2.0
)

// Snapshot is a point-in-time view of a user's public Twitter profile.
type Snapshot struct {
	FollowersCount   int
	FriendsCount     int
	StatusesCount    int
	Verified         bool
	AccountCreatedAt time.Time
}

// Breakdown lists the five weighted components of a score. Display only;
// nothing downstream reads it.
type Breakdown struct {
	AccountAge   int `json:"account_age"`
	Followers    int `json:"followers"`
	Ratio        int `json:"ratio"`
	Activity     int `json:"activity"`
	Verification int `json:"verification"`
}

// Result is a computed score plus its component breakdown.
type Result struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// Compute maps a profile snapshot to a 0-70 score. It is deterministic for a
// given snapshot and now, and total over all inputs: negative counts clamp to
// zero and creation dates in the future clamp account age to zero. Each
// component is rounded half-up before summing so float drift never leaks into
// the total.
func Compute(s Snapshot, now time.Time) Result {
	followers := clampNonNegative(s.FollowersCount)
	friends := clampNonNegative(s.FriendsCount)
	statuses := clampNonNegative(s.StatusesCount)
	years := accountYears(s.AccountCreatedAt, now)

	b := Breakdown{
		AccountAge:   accountAgeComponent(years),
		Followers:    followersComponent(followers),
		Ratio:        ratioComponent(followers, friends),
		Activity:     activityComponent(statuses, years),
		Verification: verificationComponent(s.Verified),
	}

	return Result{
		Total:     b.AccountAge + b.Followers + b.Ratio + b.Activity + b.Verification,
		Breakdown: b,
	}
}

// accountYears is the whole-year difference between the two calendar years,
// clamped at zero for accounts created "in the future". A zero creation date
// means the timestamp was missing or unparseable and counts as zero age.
func accountYears(createdAt, now time.Time) int {
	if createdAt.IsZero() {
		return 0
	}
	years := now.Year() - createdAt.Year()
	if years < 0 {
		return 0
	}
	return years
}

// accountAgeComponent awards 1.5 points per year of account age, capped at 15.
func accountAgeComponent(years int) int {
	points := decimal.NewFromInt(int64(years)).Mul(decimal.NewFromFloat(1.5))
	return capComponent(roundHalfUp(points), MaxAccountAge)
}

// followersComponent follows a piecewise-linear schedule: 10 points across the
// first 10k followers, 15 more up to 100k, 10 more up to 1M, then 5 points per
// additional million, capped at 40.
func followersComponent(followers int) int {
	f := decimal.NewFromInt(int64(followers))

	var points decimal.Decimal
	switch {
	case followers < 10_000:
		points = f.Div(decimal.NewFromInt(10_000)).Mul(decimal.NewFromInt(10))
	case followers < 100_000:
		points = decimal.NewFromInt(10).
			Add(f.Sub(decimal.NewFromInt(10_000)).Div(decimal.NewFromInt(90_000)).Mul(decimal.NewFromInt(15)))
	case followers < 1_000_000:
		points = decimal.NewFromInt(25).
			Add(f.Sub(decimal.NewFromInt(100_000)).Div(decimal.NewFromInt(900_000)).Mul(decimal.NewFromInt(10)))
	default:
		points = decimal.NewFromInt(35).
			Add(f.Sub(decimal.NewFromInt(1_000_000)).Div(decimal.NewFromInt(1_000_000)).Mul(decimal.NewFromInt(5)))
	}

	return capComponent(roundHalfUp(points), MaxFollowers)
}

// ratioComponent awards the full 5 points when following/followers sits in
// [0.1, 2.0]. Outside the band the deduction is log10(1 + distance) * 5 where
// distance is measured to the nearest band edge, floored at zero points.
func ratioComponent(followers, friends int) int {
	denominator := followers
	if denominator < 1 {
		denominator = 1
	}
	ratio := float64(friends) / float64(denominator)

	if ratio >= ratioBandLow && ratio <= ratioBandHigh {
		return MaxRatio
	}

	var distance float64
	if ratio < ratioBandLow {
		distance = ratioBandLow - ratio
	} else {
		distance = ratio - ratioBandHigh
	}

	deduction := math.Log10(1+distance) * 5
	if deduction > MaxRatio {
		deduction = MaxRatio
	}

	points := decimal.NewFromInt(MaxRatio).Sub(decimal.NewFromFloat(deduction))
	return capComponent(roundHalfUp(points), MaxRatio)
}

// activityComponent normalizes tweet count to tweets per year (account age
// floored at one year) and awards the full 5 points for 50-365 tweets/year.
// Quieter accounts earn proportionally; hyperactive accounts lose 5 points per
// extra thousand tweets/year past 365.
func activityComponent(statuses, years int) int {
	if years < 1 {
		years = 1
	}
	tweetsPerYear := float64(statuses) / float64(years)

	var points decimal.Decimal
	switch {
	case tweetsPerYear >= 50 && tweetsPerYear <= 365:
		return MaxActivity
	case tweetsPerYear < 50:
		points = decimal.NewFromFloat(tweetsPerYear).Div(decimal.NewFromInt(50)).Mul(decimal.NewFromInt(5))
	default:
		overage := math.Floor((tweetsPerYear - 365) / 1000)
		points = decimal.NewFromInt(5).Sub(decimal.NewFromFloat(overage).Mul(decimal.NewFromInt(5)))
	}

	return capComponent(roundHalfUp(points), MaxActivity)
}

func verificationComponent(verified bool) int {
	if verified {
		return MaxVerification
	}
	return 0
}

// roundHalfUp rounds to the nearest integer, halves away from zero.
func roundHalfUp(d decimal.Decimal) int {
	return int(d.Round(0).IntPart())
}

func capComponent(points, max int) int {
	if points < 0 {
		return 0
	}
	if points > max {
		return max
	}
	return points
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
