package game

import (
	"sort"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/types"
)

// BuildLeaderboard ranks players and (optionally) teams by descending score.
// Ties keep join/creation order, so repeated builds over the same state are
// identical.
func BuildLeaderboard(r *Roster, includeTeams bool) types.Leaderboard {
	players := r.PlayersBySeq()
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	lb := types.Leaderboard{
		Players: make([]types.PlayerStanding, 0, len(players)),
	}
	for i, p := range players {
		lb.Players = append(lb.Players, types.PlayerStanding{
			Rank:   i + 1,
			Name:   p.Name,
			Score:  p.Score,
			TeamID: p.TeamID,
			IsCPU:  p.IsCPU,
		})
	}

	if !includeTeams {
		return lb
	}

	teams := r.TeamsBySeq()
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Score > teams[j].Score
	})
	for i, t := range teams {
		lb.Teams = append(lb.Teams, types.TeamStanding{
			Rank:        i + 1,
			Name:        t.Name,
			Score:       t.Score,
			MemberCount: len(t.Members),
			IsCPU:       t.IsCPU,
		})
	}
	return lb
}
