package engine

import (
	"math"
	"math/rand"
	"sort"

	"github.com/fortuna/victoria/internal/store"
)

// NationCallInterval is the cumulative match count between call-up
// evaluations for a manager.
const NationCallInterval = 8

const (
	callThreshold  = 70.0
	callBasePayout = 50000
)

// CallSelection is one player pulled into a national squad, with the
// eligibility score that earned the spot and the payout it grants.
type CallSelection struct {
	PlayerID int     `json:"player_id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Rating   int     `json:"rating"`
	Score    float64 `json:"score"`
	Payout   int64   `json:"payout"`
}

// DueForNationCall reports whether a manager's cumulative match count
// triggers a call-up evaluation.
func DueForNationCall(matchesPlayed int) bool {
	return matchesPlayed > 0 && matchesPlayed%NationCallInterval == 0
}

// SelectNationSquad scores a roster for national call-ups and picks
// the top performers. Eligibility score combines rating, fitness,
// form, level and card level plus uniform noise; only players above
// the threshold qualify. Between two and five are selected, clamped
// to the eligible count. Returns the selections and total payout.
func SelectNationSquad(roster []*store.Player, rnd *rand.Rand) ([]CallSelection, int64) {
	var eligible []CallSelection
	for _, p := range roster {
		score := float64(p.Rating) +
			p.Fitness/100*10 +
			(p.Form-5)/5*15 +
			float64(p.Level-1)*0.5 +
			float64(p.CardLevel-1)*2 +
			uniform(rnd, -5, 5)
		if score <= callThreshold {
			continue
		}
		eligible = append(eligible, CallSelection{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Position: p.Position,
			Rating:   p.Rating,
			Score:    score,
		})
	}
	if len(eligible) == 0 {
		return nil, 0
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	count := 2 + rnd.Intn(4) // 2..5
	if count > len(eligible) {
		count = len(eligible)
	}

	selected := eligible[:count]
	var total int64
	for i := range selected {
		payout := callBasePayout *
			(1 + float64(selected[i].Rating-70)/100) *
			(1 + (selected[i].Score-70)/200)
		selected[i].Payout = int64(math.Round(payout))
		total += selected[i].Payout
	}
	return selected, total
}
