package score

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func yearsBefore(n int) time.Time {
	return time.Date(testNow.Year()-n, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestComputeZeroProfile(t *testing.T) {
	result := Compute(Snapshot{
		FollowersCount:   0,
		FriendsCount:     0,
		StatusesCount:    0,
		Verified:         false,
		AccountCreatedAt: testNow,
	}, testNow)

	// Ratio is 0/max(0,1)=0, just below the band; log10(1.1)*5 deducts less
	// than half a point, so the component rounds back to 5.
	expected := Breakdown{AccountAge: 0, Followers: 0, Ratio: 5, Activity: 0, Verification: 0}
	if result.Breakdown != expected {
		t.Errorf("breakdown: expected %+v, got %+v", expected, result.Breakdown)
	}
	if result.Total != 5 {
		t.Errorf("total: expected 5, got %d", result.Total)
	}
}

func TestComputeEstablishedAccount(t *testing.T) {
	result := Compute(Snapshot{
		FollowersCount:   1_000_000,
		FriendsCount:     500_000,
		StatusesCount:    200,
		Verified:         true,
		AccountCreatedAt: yearsBefore(10),
	}, testNow)

	expected := Breakdown{
		AccountAge:   15, // 10 years * 1.5, capped
		Followers:    35, // exactly at the 1M threshold
		Ratio:        5,  // 0.5 is inside the band
		Activity:     2,  // 20 tweets/year -> 20/50*5
		Verification: 5,
	}
	if result.Breakdown != expected {
		t.Errorf("breakdown: expected %+v, got %+v", expected, result.Breakdown)
	}
	if result.Total != 62 {
		t.Errorf("total: expected 62, got %d", result.Total)
	}
}

func TestComputeBounds(t *testing.T) {
	snapshots := []Snapshot{
		{},
		{FollowersCount: -100, FriendsCount: -5, StatusesCount: -1, AccountCreatedAt: testNow.AddDate(5, 0, 0)},
		{FollowersCount: 100_000_000, FriendsCount: 1, StatusesCount: 1_000_000, Verified: true, AccountCreatedAt: yearsBefore(18)},
		{FollowersCount: 1, FriendsCount: 100_000, StatusesCount: 10, AccountCreatedAt: yearsBefore(1)},
	}

	for i, s := range snapshots {
		result := Compute(s, testNow)
		if result.Total < 0 || result.Total > MaxTotal {
			t.Errorf("snapshot %d: total %d out of [0, %d]", i, result.Total, MaxTotal)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	s := Snapshot{
		FollowersCount:   42_000,
		FriendsCount:     1_000,
		StatusesCount:    3_000,
		Verified:         true,
		AccountCreatedAt: yearsBefore(4),
	}

	first := Compute(s, testNow)
	for i := 0; i < 10; i++ {
		if got := Compute(s, testNow); got != first {
			t.Fatalf("run %d: expected %+v, got %+v", i, first, got)
		}
	}
}

func TestFollowersComponentSchedule(t *testing.T) {
	cases := []struct {
		followers int
		expected  int
	}{
		{0, 0},
		{5_000, 5},
		{10_000, 10},
		{55_000, 18}, // 10 + 45000/90000*15 = 17.5, rounds up
		{100_000, 25},
		{550_000, 30},
		{1_000_000, 35},
		{2_000_000, 40},
		{50_000_000, 40}, // capped
	}

	for _, tc := range cases {
		if got := followersComponent(tc.followers); got != tc.expected {
			t.Errorf("followers=%d: expected %d, got %d", tc.followers, tc.expected, got)
		}
	}
}

func TestFollowersComponentMonotonic(t *testing.T) {
	prev := -1
	for followers := 0; followers <= 3_000_000; followers += 1_000 {
		got := followersComponent(followers)
		if got < prev {
			t.Fatalf("followers=%d: component dropped from %d to %d", followers, prev, got)
		}
		prev = got
	}
}

func TestRatioComponent(t *testing.T) {
	cases := []struct {
		name      string
		followers int
		friends   int
		expected  int
	}{
		{"inside band low edge", 1_000, 100, 5},
		{"inside band high edge", 1_000, 2_000, 5},
		{"balanced", 10_000, 5_000, 5},
		{"mass follower", 100, 5_000, 0},   // ratio 50, deduction saturates
		{"zero followers", 0, 0, 5},        // 0 just under the band, deduction rounds away
		{"slightly over band", 100, 250, 4}, // ratio 2.5, log10(1.5)*5 ~ 0.88
	}

	for _, tc := range cases {
		if got := ratioComponent(tc.followers, tc.friends); got != tc.expected {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.expected, got)
		}
	}
}

func TestActivityComponent(t *testing.T) {
	cases := []struct {
		name     string
		statuses int
		years    int
		expected int
	}{
		{"silent", 0, 1, 0},
		{"quiet", 20, 1, 2},
		{"optimal low", 50, 1, 5},
		{"optimal high", 365, 1, 5},
		{"just over optimal", 400, 1, 5}, // under one full thousand past 365
		{"spammy", 1_400, 1, 0},
		{"zero-age account treated as one year", 100, 0, 5},
		{"spread over years", 200, 10, 2},
	}

	for _, tc := range cases {
		if got := activityComponent(tc.statuses, tc.years); got != tc.expected {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.expected, got)
		}
	}
}

func TestAccountAgeComponent(t *testing.T) {
	cases := []struct {
		years    int
		expected int
	}{
		{0, 0},
		{1, 2}, // 1.5 rounds up
		{2, 3},
		{10, 15},
		{20, 15}, // capped
	}

	for _, tc := range cases {
		if got := accountAgeComponent(tc.years); got != tc.expected {
			t.Errorf("years=%d: expected %d, got %d", tc.years, tc.expected, got)
		}
	}
}

func TestVerificationComponent(t *testing.T) {
	s := Snapshot{FollowersCount: 1_000, FriendsCount: 500, StatusesCount: 100, AccountCreatedAt: yearsBefore(2)}

	unverified := Compute(s, testNow)
	s.Verified = true
	verified := Compute(s, testNow)

	if verified.Total-unverified.Total != MaxVerification {
		t.Errorf("verification should add exactly %d points, added %d",
			MaxVerification, verified.Total-unverified.Total)
	}
}

func TestZeroCreationDateClampsAge(t *testing.T) {
	// A missing or unparseable created_at degrades to the zero time.Time;
	// it must count as zero age, not as an ancient account.
	result := Compute(Snapshot{
		FollowersCount:   500,
		AccountCreatedAt: time.Time{},
	}, testNow)

	if result.Breakdown.AccountAge != 0 {
		t.Errorf("expected age component 0 for zero creation date, got %d", result.Breakdown.AccountAge)
	}
}

func TestFutureCreationDateClampsAge(t *testing.T) {
	result := Compute(Snapshot{
		FollowersCount:   500,
		AccountCreatedAt: testNow.AddDate(3, 0, 0),
	}, testNow)

	if result.Breakdown.AccountAge != 0 {
		t.Errorf("expected age component 0 for future creation date, got %d", result.Breakdown.AccountAge)
	}
}
