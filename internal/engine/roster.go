package engine

import (
	"fmt"
	"math/rand"

	"github.com/fortuna/victoria/internal/store"
)

// RosterSize is the fixed squad size per team: a starting eleven in a
// 1-4-4-2 shape plus twelve substitutes.
const RosterSize = 23

// Position bucket sizes summing to RosterSize.
var rosterShape = []struct {
	position string
	total    int
	starters int
}{
	{store.PositionGK, 3, 1},
	{store.PositionDEF, 8, 4},
	{store.PositionMID, 7, 4},
	{store.PositionFWD, 5, 2},
}

// ClubNames is the pool engine-controlled teams draw from, in order.
var ClubNames = []string{
	"Capricorn FC", "Galacticos United", "Axton Brothers", "Deuteron United",
	"Saturn Rovers", "Meteor City", "Cosmic Wanderers", "Pulsar Athletic",
	"Nebula FC", "Eclipse United", "Nova Dynamics", "Starlight FC",
	"Orion Warriors", "Zenith United", "Quasar City", "Astral Rovers",
	"Eclipse Knights", "Neutron FC", "Vortex Athletic", "Cosmic Rangers",
	"Borealis Town", "Helios Star FC", "Umbra Knights", "Proton Wave",
	"Tempest Storm FC", "Comet Chasers", "Solaris City", "Sterling Albion",
	"Aurora Victoria", "Sirius Flux FC", "Atlas Prime", "Vega Rangers",
	"Photon Rovers", "Crater Vale", "Stellar Harbour", "Ionview Athletic",
	"Redshift County", "Parallax Town", "Gravity Wells", "Corona Borough",
	"Titanfall FC", "Andromeda Sport", "Lyra Wanderers", "Draco Dynamo",
}

var firstNames = []string{
	"Marcus", "Davido", "Antonio", "James", "Carlos", "Marco", "Alex",
	"Diego", "Francesco", "Luke", "Pablo", "Andrea", "Ryan", "Miguel",
	"Luca", "Jordan", "Alejandro", "Matteo", "Oliver", "Francisco",
	"Davide", "Connor", "Sergio", "Lorenzo", "Mason", "Alberto",
	"Alessandro", "Tyler", "Rafael", "Simone", "Harry", "Fernando",
	"Giovanni", "Charlie", "Adrián", "Emilio",
}

var lastNames = []string{
	"Johnson", "Silva", "López", "Wilson", "Hernández", "Rossi",
	"Thompson", "Martínez", "Romano", "Roberts", "García", "Colombo",
	"Davis", "Rodríguez", "Ferrari", "Smith", "Pérez", "Conti",
	"Brown", "Ruiz", "Ricci", "González", "Greco", "Taylor", "Moreno",
	"Bruno", "Anderson", "Jiménez", "Gallo", "Clarke", "Torres",
	"De Luca", "Evans", "Vázquez", "Mancini",
}

// GenerateRoster creates a fresh 23-player squad with condition and
// rating fields initialized within the standard ranges. The first
// players of each position bucket form the starting 1-4-4-2.
func GenerateRoster(rnd *rand.Rand) []*store.Player {
	roster := make([]*store.Player, 0, RosterSize)
	for _, bucket := range rosterShape {
		for i := 0; i < bucket.total; i++ {
			roster = append(roster, &store.Player{
				Name:            playerName(rnd),
				Position:        bucket.position,
				Starter:         i < bucket.starters,
				Rating:          55 + rnd.Intn(26),         // 55..80
				Fitness:         85 + rnd.Float64()*15,     // 85..100
				Form:            4 + rnd.Float64()*3,       // 4..7
				Level:           1,
				Experience:      0,
				CardLevel:       1,
				ContractMatches: 30 + rnd.Intn(31), // 30..60
			})
		}
	}
	return roster
}

func playerName(rnd *rand.Rand) string {
	return fmt.Sprintf("%s %s",
		firstNames[rnd.Intn(len(firstNames))],
		lastNames[rnd.Intn(len(lastNames))])
}
