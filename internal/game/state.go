// Package game holds the trivia match domain: question generation, the
// player/team roster, power-up rules, scoring, and leaderboard assembly.
// Everything here is plain state and pure rules; timing and broadcasting
// live in the room actor that owns a Match.
package game

import "time"

type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseSplash      Phase = "splash"
	PhasePlaying     Phase = "playing"
	PhaseLeaderboard Phase = "leaderboard"
	PhaseFinished    Phase = "finished"
)

type Player struct {
	ID     string
	Name   string
	Score  int
	TeamID string
	IsCPU  bool

	// Lifetime accuracy for the current match.
	Attempts int
	Correct  int

	// Join order, the deterministic tiebreak for leaderboard sorting.
	Seq int
}

type Team struct {
	ID      string
	Name    string
	Members []string
	Score   int
	IsCPU   bool

	// One-shot per match; restored only by a reset.
	BlitzAvailable bool

	Seq int
}

// Answer is one player's submission for a round.
type Answer struct {
	Button int
	At     time.Time
}

// Round is the in-flight question cycle.
type Round struct {
	Number    int
	Question  Question
	StartedAt time.Time
	// Answers maps player id to their first submission. Later submissions
	// in the same round are ignored.
	Answers map[string]Answer
}

func NewRound(number int, q Question, startedAt time.Time) *Round {
	return &Round{
		Number:    number,
		Question:  q,
		StartedAt: startedAt,
		Answers:   make(map[string]Answer),
	}
}

// Recorded reports whether the player already answered this round.
func (r *Round) Recorded(playerID string) bool {
	_, ok := r.Answers[playerID]
	return ok
}

// Record stores the player's answer unless one exists already. Returns false
// when the submission was ignored.
func (r *Round) Record(playerID string, button int, at time.Time) bool {
	if r.Recorded(playerID) {
		return false
	}
	r.Answers[playerID] = Answer{Button: button, At: at}
	return true
}
