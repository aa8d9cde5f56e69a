package game

import (
	"errors"
	"testing"
)

var cpuTeamNames = []string{"CPU Crushers", "AI Avengers"}
var cpuPlayerNames = []string{"BotAlpha", "BotBeta", "RoboOne"}

func TestCreateTeam_CapAndMembership(t *testing.T) {
	r := NewRoster()
	r.AddPlayer("p1", "Ana")
	r.AddPlayer("p2", "Ben")
	r.AddPlayer("p3", "Cal")

	t1, err := r.CreateTeam("p1", "Sharks", 2)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := r.CreateTeam("p2", "Jets", 2); err != nil {
		t.Fatalf("second create: %v", err)
	}

	if _, err := r.CreateTeam("p3", "Extras", 2); !errors.Is(err, ErrTeamCapReached) {
		t.Fatalf("want ErrTeamCapReached, got %v", err)
	}
	if _, err := r.CreateTeam("p1", "Again", 2); !errors.Is(err, ErrAlreadyOnTeam) {
		t.Fatalf("want ErrAlreadyOnTeam, got %v", err)
	}
	if _, err := r.CreateTeam("ghost", "Nope", 2); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("want ErrUnknownPlayer, got %v", err)
	}

	if !t1.BlitzAvailable {
		t.Fatalf("new team should have Blitz available")
	}
	if len(t1.Members) != 1 || t1.Members[0] != "p1" {
		t.Fatalf("creator should be sole member, got %v", t1.Members)
	}
}

func TestJoinTeam_HumanCapOnly(t *testing.T) {
	r := NewRoster()
	r.AddPlayer("p1", "Ana")
	team, err := r.CreateTeam("p1", "Sharks", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Pad with CPUs; the human cap is independent of the seats they hold.
	r.FillTeamsWithCPU(cpuTeamNames, cpuPlayerNames, 4)

	r.AddPlayer("p2", "Ben")
	if err := r.JoinTeam("p2", team.ID, 2); err != nil {
		t.Fatalf("human join should bypass CPU seats: %v", err)
	}

	r.AddPlayer("p3", "Cal")
	if err := r.JoinTeam("p3", team.ID, 2); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("want ErrTeamFull at 2 humans, got %v", err)
	}
	if err := r.JoinTeam("p3", "missing", 2); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("want ErrUnknownTeam, got %v", err)
	}
	if err := r.JoinTeam("p2", team.ID, 2); !errors.Is(err, ErrAlreadyOnTeam) {
		t.Fatalf("want ErrAlreadyOnTeam, got %v", err)
	}
}

func TestFillTeamsWithCPU_SynthesizesAndPads(t *testing.T) {
	r := NewRoster()
	r.AddPlayer("p1", "Ana")
	if _, err := r.CreateTeam("p1", "Sharks", 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	r.FillTeamsWithCPU(cpuTeamNames, cpuPlayerNames, 4)

	if len(r.Teams) != 2 {
		t.Fatalf("want exactly 2 teams, got %d", len(r.Teams))
	}
	for _, team := range r.TeamsBySeq() {
		if len(team.Members) != 4 {
			t.Fatalf("team %q should be padded to 4, got %d", team.Name, len(team.Members))
		}
	}

	// One human + 7 CPUs across two teams of four.
	cpus := 0
	for _, p := range r.Players {
		if p.IsCPU {
			cpus++
		}
	}
	if cpus != 7 {
		t.Fatalf("want 7 CPU players, got %d", cpus)
	}
}

func TestRemovePlayer(t *testing.T) {
	r := NewRoster()
	r.AddPlayer("p1", "Ana")
	team, _ := r.CreateTeam("p1", "Sharks", 2)

	if r.RemovePlayer("cpu-0") {
		t.Fatalf("unknown id should be a no-op")
	}

	if !r.RemovePlayer("p1") {
		t.Fatalf("known human should be removed")
	}
	if _, ok := r.Teams[team.ID]; ok {
		t.Fatalf("empty human team should be deleted")
	}

	// CPU players survive RemovePlayer; only a reset clears them.
	r.AddPlayer("p2", "Ben")
	r.CreateTeam("p2", "Jets", 2)
	r.FillTeamsWithCPU(cpuTeamNames, cpuPlayerNames, 2)
	for id, p := range r.Players {
		if p.IsCPU && r.RemovePlayer(id) {
			t.Fatalf("CPU id should be a no-op")
		}
	}

	r.RemoveCPUPlayers()
	for _, p := range r.Players {
		if p.IsCPU {
			t.Fatalf("CPU player %q survived RemoveCPUPlayers", p.Name)
		}
	}
	for _, team := range r.Teams {
		for _, id := range team.Members {
			if _, ok := r.Players[id]; !ok {
				t.Fatalf("team %q kept dangling member %q", team.Name, id)
			}
		}
	}
}

func TestResetScoresAndBlitz(t *testing.T) {
	r := NewRoster()
	p := r.AddPlayer("p1", "Ana")
	team, _ := r.CreateTeam("p1", "Sharks", 2)

	p.Score = 42
	p.Attempts = 5
	p.Correct = 3
	team.Score = 42
	team.BlitzAvailable = false

	r.ResetScores()
	r.RestoreBlitz()

	if p.Score != 0 || p.Attempts != 0 || p.Correct != 0 {
		t.Fatalf("player counters not reset: %+v", p)
	}
	if team.Score != 0 || !team.BlitzAvailable {
		t.Fatalf("team not reset: %+v", team)
	}
}
