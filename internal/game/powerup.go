package game

import "errors"

var (
	ErrNoTeam           = errors.New("player has no team")
	ErrBlitzSpent       = errors.New("blitz already used this match")
	ErrNoOpponent       = errors.New("no opposing team to target")
	ErrBeastAlreadyUsed = errors.New("beast mode already used this match")
	ErrBeastActive      = errors.New("beast mode already active this round")
	ErrMatchNotPlaying  = errors.New("match is not in play")
)

// PowerUps tracks Blitz and Beast Mode state. The *Team/*Actor fields are
// per-round slots; BeastUsed is the per-match one-shot set.
type PowerUps struct {
	BlitzTargetTeam string
	BlitzActor      string
	BlitzActorTeam  string

	BeastTeam  string
	BeastActor string
	BeastUsed  map[string]bool
}

func NewPowerUps() *PowerUps {
	return &PowerUps{BeastUsed: make(map[string]bool)}
}

// ClearRound drops the per-round activation slots. BeastUsed and team Blitz
// flags survive until the match resets.
func (p *PowerUps) ClearRound() {
	p.BlitzTargetTeam = ""
	p.BlitzActor = ""
	p.BlitzActorTeam = ""
	p.BeastTeam = ""
	p.BeastActor = ""
}

// Reset clears everything, including the per-match used set.
func (p *PowerUps) Reset() {
	p.ClearRound()
	p.BeastUsed = make(map[string]bool)
}

// Blitzed reports whether the given team is the Blitz target right now.
func (p *PowerUps) Blitzed(teamID string) bool {
	return p.BlitzTargetTeam != "" && p.BlitzTargetTeam == teamID
}

type BlitzActivation struct {
	Actor      *Player
	ActorTeam  *Team
	TargetTeam *Team
}

// UseBlitz spends the acting player's team Blitz flag and targets the
// opposing team for the current round.
func (p *PowerUps) UseBlitz(r *Roster, playerID string) (*BlitzActivation, error) {
	actor, ok := r.Players[playerID]
	if !ok || actor.TeamID == "" {
		return nil, ErrNoTeam
	}
	team := r.Teams[actor.TeamID]
	if team == nil {
		return nil, ErrNoTeam
	}
	if !team.BlitzAvailable {
		return nil, ErrBlitzSpent
	}
	target := r.OpposingTeam(team.ID)
	if target == nil {
		return nil, ErrNoOpponent
	}

	team.BlitzAvailable = false
	p.BlitzTargetTeam = target.ID
	p.BlitzActor = playerID
	p.BlitzActorTeam = team.ID
	return &BlitzActivation{Actor: actor, ActorTeam: team, TargetTeam: target}, nil
}

type BeastActivation struct {
	Actor *Player
	Team  *Team
}

// UseBeastMode claims the round's single Beast Mode slot for the acting
// player's team and burns the player's once-per-match use, win or lose.
func (p *PowerUps) UseBeastMode(r *Roster, playerID string) (*BeastActivation, error) {
	actor, ok := r.Players[playerID]
	if !ok || actor.TeamID == "" {
		return nil, ErrNoTeam
	}
	if p.BeastUsed[playerID] {
		return nil, ErrBeastAlreadyUsed
	}
	if p.BeastTeam != "" {
		return nil, ErrBeastActive
	}
	team := r.Teams[actor.TeamID]
	if team == nil {
		return nil, ErrNoTeam
	}

	p.BeastTeam = team.ID
	p.BeastActor = playerID
	p.BeastUsed[playerID] = true
	return &BeastActivation{Actor: actor, Team: team}, nil
}
