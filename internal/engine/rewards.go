package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/fortuna/victoria/internal/store"
)

// Match reward constants, in currency-agnostic integer units.
const (
	winReward  = 800000
	drawReward = 300000
	lossReward = 150000

	goalBonus     = 100000
	homeMatchBonus = 250000

	merchandisePerFan = 10
	ticketPricePerFan = 30
	facilityBase      = 50000

	// FanFloor is the hard minimum fan count; no losing streak can
	// push a club below it.
	FanFloor = 1000
)

// Season-end payout constants (open question resolved in DESIGN.md).
const (
	placementUnitTop    = 100000
	placementUnitSecond = 50000
	titleBonus          = 5000000
	qualificationBonus  = 2000000
	promotionBonus      = 1000000
	relegationParachute = 500000
)

var stadiumMultiplier = map[int]float64{
	1: 1.0,
	2: 1.2,
	3: 1.5,
	4: 1.8,
	5: 2.2,
}

// RewardItem is one auditable line of a reward breakdown.
type RewardItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// Reward is an itemized payout; Total always equals the sum of Items.
type Reward struct {
	Total int64        `json:"total"`
	Items []RewardItem `json:"items"`
}

func (r *Reward) add(description string, amount int64) {
	r.Items = append(r.Items, RewardItem{Description: description, Amount: amount})
	r.Total += amount
}

// MatchRewards computes the itemized payout for a managed team's
// resolved match. Fan-derived merchandise revenue always applies;
// ticket sales and the stadium facility bonus only at home.
func MatchRewards(result Result, goalsFor int, home bool, m *store.Manager) Reward {
	var reward Reward

	switch result {
	case Win:
		reward.add("Match Victory", winReward)
	case Draw:
		reward.add("Match Draw", drawReward)
	default:
		reward.add("Match Played", lossReward)
	}

	if goalsFor > 0 {
		reward.add(fmt.Sprintf("Goals Scored (%d)", goalsFor), int64(goalsFor)*goalBonus)
	}

	if home {
		reward.add("Home Match Bonus", homeMatchBonus)
	}

	reward.add("Fan Engagement", int64(m.FanCount)*merchandisePerFan)

	if home {
		attendance := m.FanCount
		if attendance > m.StadiumCapacity {
			attendance = m.StadiumCapacity
		}
		reward.add(fmt.Sprintf("Ticket Sales (%d attendance)", attendance), int64(attendance)*ticketPricePerFan)

		multiplier, ok := stadiumMultiplier[m.StadiumLevel]
		if !ok {
			multiplier = 1.0
		}
		reward.add(fmt.Sprintf("Stadium Facilities (level %d)", m.StadiumLevel),
			int64(math.Round(facilityBase*multiplier)))
	}

	return reward
}

// FanDelta returns the post-match fan count change: a result-biased
// random swing plus ten fans per goal of difference.
func FanDelta(result Result, goalsFor, goalsAgainst int, rnd *rand.Rand) int {
	var delta int
	switch result {
	case Win:
		delta = 50 + rnd.Intn(151) // +50..+200
	case Draw:
		delta = -25 + rnd.Intn(76) // -25..+50
	default:
		delta = -100 + rnd.Intn(76) // -100..-25
	}
	return delta + (goalsFor-goalsAgainst)*10
}

// ApplyFanDelta adds delta to a fan count, flooring at FanFloor.
func ApplyFanDelta(fanCount, delta int) int {
	fanCount += delta
	if fanCount < FanFloor {
		fanCount = FanFloor
	}
	return fanCount
}

// SeasonRewards computes the season-end payout for a managed team's
// final table position: a position-weighted placement prize plus
// category bonuses for the title, continental qualification,
// promotion, and a relegation parachute.
func SeasonRewards(position, division int) Reward {
	var reward Reward

	if division == store.DivisionTop {
		placement := int64(21-position) * placementUnitTop
		if placement < 0 {
			placement = 0
		}
		reward.add(fmt.Sprintf("Final Placement (position %d)", position), placement)

		switch {
		case position == 1:
			reward.add("League Title", titleBonus)
		case position <= 4:
			reward.add("Continental Qualification", qualificationBonus)
		case position >= 18:
			reward.add("Relegation Parachute", relegationParachute)
		}
		return reward
	}

	placement := int64(24-position) * placementUnitSecond
	if placement < 0 {
		placement = 0
	}
	reward.add(fmt.Sprintf("Final Placement (position %d)", position), placement)
	if position <= 3 {
		reward.add("Promotion Bonus", promotionBonus)
	}
	return reward
}
