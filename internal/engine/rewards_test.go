package engine

import (
	"math/rand"
	"testing"

	"github.com/fortuna/victoria/internal/store"
)

func TestMatchRewardsHomeWinBreakdown(t *testing.T) {
	m := &store.Manager{
		FanCount:        5000,
		StadiumCapacity: 10000,
		StadiumLevel:    1,
	}

	reward := MatchRewards(Win, 3, true, m)

	want := map[string]int64{
		"Match Victory":                  800000,
		"Goals Scored (3)":               300000,
		"Home Match Bonus":               250000,
		"Fan Engagement":                 50000,
		"Ticket Sales (5000 attendance)": 150000,
		"Stadium Facilities (level 1)":   50000,
	}
	if len(reward.Items) != len(want) {
		t.Fatalf("item count = %d, want %d", len(reward.Items), len(want))
	}
	for _, item := range reward.Items {
		amount, ok := want[item.Description]
		if !ok {
			t.Errorf("unexpected item %q", item.Description)
			continue
		}
		if item.Amount != amount {
			t.Errorf("%q = %d, want %d", item.Description, item.Amount, amount)
		}
	}
	if reward.Total != 1600000 {
		t.Fatalf("total = %d, want 1600000", reward.Total)
	}
}

func TestMatchRewardsAwayLossBreakdown(t *testing.T) {
	m := &store.Manager{
		FanCount:        5000,
		StadiumCapacity: 10000,
		StadiumLevel:    1,
	}

	reward := MatchRewards(Loss, 0, false, m)

	// Away defeats still pay the appearance fee and fan merchandise,
	// never ticket or facility income.
	if len(reward.Items) != 2 {
		t.Fatalf("item count = %d, want 2: %+v", len(reward.Items), reward.Items)
	}
	if reward.Total != 150000+50000 {
		t.Fatalf("total = %d, want %d", reward.Total, 150000+50000)
	}
}

func TestMatchRewardsAttendanceCapsAtCapacity(t *testing.T) {
	m := &store.Manager{
		FanCount:        25000,
		StadiumCapacity: 10000,
		StadiumLevel:    3,
	}

	reward := MatchRewards(Draw, 1, true, m)

	var tickets, facilities int64
	for _, item := range reward.Items {
		switch item.Description {
		case "Ticket Sales (10000 attendance)":
			tickets = item.Amount
		case "Stadium Facilities (level 3)":
			facilities = item.Amount
		}
	}
	if tickets != 300000 {
		t.Errorf("ticket sales = %d, want 300000 (capped at capacity)", tickets)
	}
	if facilities != 75000 {
		t.Errorf("facility bonus = %d, want 75000 (level 3 multiplier)", facilities)
	}
}

func TestMatchRewardsTotalMatchesItemSum(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	m := &store.Manager{FanCount: 8000, StadiumCapacity: 12000, StadiumLevel: 2}

	for i := 0; i < 200; i++ {
		result := Result(rnd.Intn(3))
		goals := rnd.Intn(MaxGoals + 1)
		home := rnd.Intn(2) == 0

		reward := MatchRewards(result, goals, home, m)
		var sum int64
		for _, item := range reward.Items {
			sum += item.Amount
		}
		if sum != reward.Total {
			t.Fatalf("item sum %d != total %d for result=%v goals=%d home=%v",
				sum, reward.Total, result, goals, home)
		}
	}
}

func TestFanDeltaRanges(t *testing.T) {
	rnd := rand.New(rand.NewSource(8))

	cases := []struct {
		name         string
		result       Result
		goalsFor     int
		goalsAgainst int
		min, max     int
	}{
		{"win 1-0", Win, 1, 0, 50 + 10, 200 + 10},
		{"draw 2-2", Draw, 2, 2, -25, 50},
		{"loss 0-3", Loss, 0, 3, -100 - 30, -25 - 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				delta := FanDelta(tc.result, tc.goalsFor, tc.goalsAgainst, rnd)
				if delta < tc.min || delta > tc.max {
					t.Fatalf("delta %d outside [%d, %d]", delta, tc.min, tc.max)
				}
			}
		})
	}
}

func TestApplyFanDeltaFloors(t *testing.T) {
	if got := ApplyFanDelta(1100, -500); got != FanFloor {
		t.Fatalf("fan count = %d, want floor %d", got, FanFloor)
	}
	if got := ApplyFanDelta(5000, 150); got != 5150 {
		t.Fatalf("fan count = %d, want 5150", got)
	}
}

func TestSeasonRewards(t *testing.T) {
	cases := []struct {
		name      string
		position  int
		division  int
		wantTotal int64
	}{
		{"top division champion", 1, store.DivisionTop, 20*100000 + 5000000},
		{"top division qualifier", 3, store.DivisionTop, 18*100000 + 2000000},
		{"top division midtable", 10, store.DivisionTop, 11 * 100000},
		{"top division relegated", 20, store.DivisionTop, 1*100000 + 500000},
		{"second division promoted", 2, store.DivisionSecond, 22*50000 + 1000000},
		{"second division midtable", 12, store.DivisionSecond, 12 * 50000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reward := SeasonRewards(tc.position, tc.division)
			if reward.Total != tc.wantTotal {
				t.Fatalf("total = %d, want %d", reward.Total, tc.wantTotal)
			}
			var sum int64
			for _, item := range reward.Items {
				sum += item.Amount
			}
			if sum != reward.Total {
				t.Fatalf("item sum %d != total %d", sum, reward.Total)
			}
		})
	}
}
