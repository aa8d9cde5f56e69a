package game

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrUnknownTeam    = errors.New("unknown team")
	ErrAlreadyOnTeam  = errors.New("player already on a team")
	ErrTeamCapReached = errors.New("team limit reached")
	ErrTeamFull       = errors.New("team is full")
)

// Roster owns every player and team in a match.
type Roster struct {
	Players map[string]*Player
	Teams   map[string]*Team

	nextSeq int
	cpuSeq  int
}

func NewRoster() *Roster {
	return &Roster{
		Players: make(map[string]*Player),
		Teams:   make(map[string]*Team),
	}
}

// AddPlayer registers a human player with zero score and no team. The id is
// connection-derived and owned by the caller.
func (r *Roster) AddPlayer(id, name string) *Player {
	p := &Player{ID: id, Name: name, Seq: r.nextSeq}
	r.nextSeq++
	r.Players[id] = p
	return p
}

// RemovePlayer detaches a human player from its team and deletes it. The
// team goes too if it is left empty and is not CPU-backed. Unknown and CPU
// ids are no-ops.
func (r *Roster) RemovePlayer(id string) bool {
	p, ok := r.Players[id]
	if !ok || p.IsCPU {
		return false
	}
	if t, ok := r.Teams[p.TeamID]; ok {
		t.removeMember(id)
		if len(t.Members) == 0 && !t.IsCPU {
			delete(r.Teams, t.ID)
		}
	}
	delete(r.Players, id)
	return true
}

func (t *Team) removeMember(playerID string) {
	for i, m := range t.Members {
		if m == playerID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return
		}
	}
}

// HumanTeamCount counts teams not synthesized for CPUs.
func (r *Roster) HumanTeamCount() int {
	n := 0
	for _, t := range r.Teams {
		if !t.IsCPU {
			n++
		}
	}
	return n
}

func (t *Team) humanCount(r *Roster) int {
	n := 0
	for _, id := range t.Members {
		if p, ok := r.Players[id]; ok && !p.IsCPU {
			n++
		}
	}
	return n
}

// CreateTeam makes a new team with the requesting player as sole member and
// Blitz available. Once the human-team cap is reached the game is join-only.
func (r *Roster) CreateTeam(playerID, name string, maxHumanTeams int) (*Team, error) {
	p, ok := r.Players[playerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if p.TeamID != "" {
		return nil, ErrAlreadyOnTeam
	}
	if r.HumanTeamCount() >= maxHumanTeams {
		return nil, ErrTeamCapReached
	}

	t := &Team{
		ID:             uuid.NewString(),
		Name:           name,
		Members:        []string{playerID},
		BlitzAvailable: true,
		Seq:            r.nextSeq,
	}
	r.nextSeq++
	r.Teams[t.ID] = t
	p.TeamID = t.ID
	return t, nil
}

// JoinTeam seats a player on an existing team. Capacity counts humans only;
// CPU members fill remaining seats and are displaced by the CPU fill at the
// next match start.
func (r *Roster) JoinTeam(playerID, teamID string, playersPerTeam int) error {
	p, ok := r.Players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	t, ok := r.Teams[teamID]
	if !ok {
		return ErrUnknownTeam
	}
	if p.TeamID != "" {
		return ErrAlreadyOnTeam
	}
	if t.humanCount(r) >= playersPerTeam {
		return ErrTeamFull
	}

	p.TeamID = t.ID
	t.Members = append(t.Members, playerID)
	return nil
}

// FillTeamsWithCPU runs once at match start: it guarantees exactly two teams
// exist, synthesizing CPU-backed defaults as needed, then pads every roster
// with CPU players up to size, drawing display names from a rotating pool.
func (r *Roster) FillTeamsWithCPU(teamNames, playerNames []string, playersPerTeam int) {
	for i := 0; len(r.Teams) < 2; i++ {
		name := teamNames[i%len(teamNames)]
		t := &Team{
			ID:             uuid.NewString(),
			Name:           name,
			IsCPU:          true,
			BlitzAvailable: true,
			Seq:            r.nextSeq,
		}
		r.nextSeq++
		r.Teams[t.ID] = t
	}

	for _, t := range r.TeamsBySeq() {
		for len(t.Members) < playersPerTeam {
			name := playerNames[r.cpuSeq%len(playerNames)]
			p := &Player{
				ID:     fmt.Sprintf("cpu-%d", r.cpuSeq),
				Name:   name,
				TeamID: t.ID,
				IsCPU:  true,
				Seq:    r.nextSeq,
			}
			r.nextSeq++
			r.cpuSeq++
			r.Players[p.ID] = p
			t.Members = append(t.Members, p.ID)
		}
	}
}

// RemoveCPUPlayers deletes every CPU player and scrubs them from team
// rosters. CPU-backed teams are deleted outright.
func (r *Roster) RemoveCPUPlayers() {
	for id, p := range r.Players {
		if !p.IsCPU {
			continue
		}
		if t, ok := r.Teams[p.TeamID]; ok {
			t.removeMember(id)
		}
		delete(r.Players, id)
	}
	for id, t := range r.Teams {
		if t.IsCPU {
			delete(r.Teams, id)
		}
	}
}

// ResetScores zeroes every player and team score along with the per-match
// accuracy counters.
func (r *Roster) ResetScores() {
	for _, p := range r.Players {
		p.Score = 0
		p.Attempts = 0
		p.Correct = 0
	}
	for _, t := range r.Teams {
		t.Score = 0
	}
}

// RestoreBlitz makes Blitz available to every team again.
func (r *Roster) RestoreBlitz() {
	for _, t := range r.Teams {
		t.BlitzAvailable = true
	}
}

// OpposingTeam returns the other team, or nil if there isn't exactly one.
func (r *Roster) OpposingTeam(teamID string) *Team {
	var other *Team
	for _, t := range r.Teams {
		if t.ID == teamID {
			continue
		}
		if other != nil {
			return nil
		}
		other = t
	}
	return other
}

// PlayersBySeq returns players in join order.
func (r *Roster) PlayersBySeq() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// TeamsBySeq returns teams in creation order.
func (r *Roster) TeamsBySeq() []*Team {
	out := make([]*Team, 0, len(r.Teams))
	for _, t := range r.Teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
