package room

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/config"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/game"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Addr:    ":0",
		BaseURL: "http://localhost",
		Features: config.Features{
			Teams:      true,
			CPUTeams:   false,
			TrashTalk:  true,
			TeamVsTeam: true,
		},
		RoundsPerGame:       2,
		ButtonCount:         3,
		PointsPerSecond:     1,
		DefaultTimerSeconds: 30,
		MaxHumanTeams:       2,
		PlayersPerTeam:      1,
		BlitzSeconds:        3,
		SplashDelay:         30 * time.Millisecond,
		CPUBlitzDelay:       10 * time.Millisecond,
		TrashTalkPhrases:    []string{"Nice try!", "Too slow!"},
		CPUTeamNames:        []string{"CPU Crushers", "AI Avengers"},
		CPUPlayerNames:      []string{"BotAlpha", "BotBeta"},
	}
}

func newTestRoom(t *testing.T, cfg *config.Config) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, "TEST01", cfg, zap.NewNop())
}

// recvEvent drains the outbox until an event of the wanted type shows up.
func recvEvent(t *testing.T, ch <-chan types.Envelope, want types.EventType, within time.Duration) types.Envelope {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case env, ok := <-ch:
			if !ok {
				t.Fatalf("outbox closed while waiting for %s", want)
			}
			if env.Type == want {
				return env
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
			return types.Envelope{}
		}
	}
}

func recvNoEvent(t *testing.T, ch <-chan types.Envelope, unwanted types.EventType, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case env, ok := <-ch:
			if !ok {
				return
			}
			if env.Type == unwanted {
				t.Fatalf("expected no %s, but got %+v", unwanted, env)
			}
		case <-deadline:
			return
		}
	}
}

func getView(t *testing.T, r *Room) View {
	t.Helper()
	reply := make(chan View, 1)
	r.Inbox() <- GetState{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{}
	}
}

func connect(t *testing.T, r *Room, id string) chan types.Envelope {
	t.Helper()
	out := make(chan types.Envelope, 128)
	r.Inbox() <- Join{ClientID: id, Outbox: out}
	recvEvent(t, out, types.EvtGameState, time.Second) // join snapshot
	return out
}

func joinPlayer(t *testing.T, r *Room, id, name string) chan types.Envelope {
	t.Helper()
	out := connect(t, r, id)
	r.Inbox() <- FromClient{ClientID: id, Cmd: types.Command{Type: types.CmdJoin, Name: name}}
	recvEvent(t, out, types.EvtPlayerJoined, time.Second)
	return out
}

func joinAdmin(t *testing.T, r *Room, id string) chan types.Envelope {
	t.Helper()
	out := connect(t, r, id)
	r.Inbox() <- FromClient{ClientID: id, Cmd: types.Command{Type: types.CmdAdminJoin}}
	recvEvent(t, out, types.EvtAdminInit, time.Second)
	return out
}

func send(r *Room, id string, cmd types.Command) {
	r.Inbox() <- FromClient{ClientID: id, Cmd: cmd}
}

// setupMatch wires two players on two teams plus an admin.
func setupMatch(t *testing.T, r *Room) (p1, p2, admin chan types.Envelope) {
	t.Helper()
	p1 = joinPlayer(t, r, "p1", "Ana")
	p2 = joinPlayer(t, r, "p2", "Ben")
	send(r, "p1", types.Command{Type: types.CmdCreateTeam, Name: "Sharks"})
	send(r, "p2", types.Command{Type: types.CmdCreateTeam, Name: "Jets"})
	admin = joinAdmin(t, r, "adm")
	return p1, p2, admin
}

func evalText(t *testing.T, text string) int {
	t.Helper()
	parts := strings.Fields(text)
	if len(parts) != 3 {
		t.Fatalf("malformed question %q", text)
	}
	a, _ := strconv.Atoi(parts[0])
	b, _ := strconv.Atoi(parts[2])
	switch parts[1] {
	case "+":
		return a + b
	case "-":
		return a - b
	case "×":
		return a * b
	}
	t.Fatalf("unknown operator in %q", text)
	return 0
}

func correctButton(t *testing.T, rs types.RoundStarted) int {
	t.Helper()
	want := evalText(t, rs.Question)
	for i, v := range rs.Answers {
		if v == want {
			return i + 1
		}
	}
	t.Fatalf("correct value %d not among answers %v", want, rs.Answers)
	return 0
}

func TestRoom_TeamFormation(t *testing.T) {
	r := newTestRoom(t, testConfig())
	p1, _, _ := setupMatch(t, r)

	v := getView(t, r)
	if len(v.Teams) != 2 {
		t.Fatalf("want 2 teams, got %d", len(v.Teams))
	}

	// A third team hits the cap and only the offender hears about it.
	p3 := joinPlayer(t, r, "p3", "Cal")
	send(r, "p3", types.Command{Type: types.CmdCreateTeam, Name: "Extras"})
	env := recvEvent(t, p3, types.EvtTeamError, time.Second)
	if _, ok := env.Data.(types.ErrorEvent); !ok {
		t.Fatalf("team-error payload has wrong type: %T", env.Data)
	}
	recvNoEvent(t, p1, types.EvtTeamError, 100*time.Millisecond)
}

func TestRoom_EndToEnd_SplashThenRoundOne(t *testing.T) {
	cfg := testConfig()
	cfg.Features.CPUTeams = true
	cfg.PlayersPerTeam = 2
	r := newTestRoom(t, cfg)
	p1, _, _ := setupMatch(t, r)

	send(r, "adm", types.Command{Type: types.CmdStartGame})

	env := recvEvent(t, p1, types.EvtGameSplash, time.Second)
	splash := env.Data.(types.GameSplash)
	if splash.Team1.Name != "Sharks" || splash.Team2.Name != "Jets" {
		t.Fatalf("splash should announce both human teams: %+v", splash)
	}
	if len(splash.Team1.Members) != 2 || len(splash.Team2.Members) != 2 {
		t.Fatalf("rosters should be padded to 2: %+v", splash)
	}

	// Round 1 begins on its own after the splash delay.
	env = recvEvent(t, p1, types.EvtRoundStarted, time.Second)
	rs := env.Data.(types.RoundStarted)
	if rs.Round != 1 || rs.TotalRounds != cfg.RoundsPerGame {
		t.Fatalf("unexpected round payload: %+v", rs)
	}
	if rs.TimerLength != cfg.DefaultTimerSeconds || rs.IsBlitzed {
		t.Fatalf("round 1 should use the standard timer: %+v", rs)
	}

	v := getView(t, r)
	if v.Phase != game.PhasePlaying || v.CurrentRound != 1 {
		t.Fatalf("want playing round 1, got %s round %d", v.Phase, v.CurrentRound)
	}
}

func TestRoom_FirstSubmissionWins(t *testing.T) {
	r := newTestRoom(t, testConfig())
	p1, _, _ := setupMatch(t, r)

	send(r, "adm", types.Command{Type: types.CmdStartGame})
	env := recvEvent(t, p1, types.EvtRoundStarted, time.Second)
	rs := env.Data.(types.RoundStarted)
	right := correctButton(t, rs)
	wrong := right%3 + 1

	send(r, "p1", types.Command{Type: types.CmdSubmitAnswer, Button: right})
	ack := recvEvent(t, p1, types.EvtAnswerRecorded, time.Second)
	if ack.Data.(types.AnswerRecorded).Button != right {
		t.Fatalf("ack should echo the recorded button")
	}

	// The second submission is ignored outright: no ack, no notice.
	send(r, "p1", types.Command{Type: types.CmdSubmitAnswer, Button: wrong})
	recvNoEvent(t, p1, types.EvtAnswerRecorded, 100*time.Millisecond)

	send(r, "adm", types.Command{Type: types.CmdForceRound})
	env = recvEvent(t, p1, types.EvtRoundEnded, time.Second)
	ended := env.Data.(types.RoundEnded)

	var mine []types.RoundScore
	for _, s := range ended.RoundScores {
		if s.PlayerID == "p1" {
			mine = append(mine, s)
		}
	}
	if len(mine) != 1 {
		t.Fatalf("want exactly one breakdown entry, got %d", len(mine))
	}
	if !mine[0].Correct {
		t.Fatalf("first (correct) submission should have stuck: %+v", mine[0])
	}
	// Answered almost instantly against a 30s window.
	if mine[0].Points < 28 {
		t.Fatalf("near-instant correct answer should score close to full: %+v", mine[0])
	}
}

func TestRoom_RoundCapLeadsToFinished(t *testing.T) {
	r := newTestRoom(t, testConfig()) // 2 rounds
	p1, _, _ := setupMatch(t, r)

	send(r, "adm", types.Command{Type: types.CmdStartGame})
	recvEvent(t, p1, types.EvtRoundStarted, time.Second)

	send(r, "adm", types.Command{Type: types.CmdForceRound}) // end round 1
	recvEvent(t, p1, types.EvtRoundEnded, time.Second)
	send(r, "adm", types.Command{Type: types.CmdForceRound}) // start round 2
	recvEvent(t, p1, types.EvtRoundStarted, time.Second)
	send(r, "adm", types.Command{Type: types.CmdForceRound}) // end round 2
	recvEvent(t, p1, types.EvtRoundEnded, time.Second)

	// Advancing past the last round finishes the match instead.
	send(r, "adm", types.Command{Type: types.CmdForceRound})
	env := recvEvent(t, p1, types.EvtGameFinished, time.Second)
	if env.Data.(types.GameFinished).Leaderboard.Players == nil {
		t.Fatalf("final leaderboard missing")
	}

	v := getView(t, r)
	if v.Phase != game.PhaseFinished || v.CurrentRound != 2 {
		t.Fatalf("want finished after 2 rounds, got %s round %d", v.Phase, v.CurrentRound)
	}

	// No further rounds start once finished.
	send(r, "adm", types.Command{Type: types.CmdForceRound})
	recvNoEvent(t, p1, types.EvtRoundStarted, 100*time.Millisecond)
}

func TestRoom_BlitzShortensOpponentTimer(t *testing.T) {
	r := newTestRoom(t, testConfig())
	p1, p2, _ := setupMatch(t, r)

	send(r, "adm", types.Command{Type: types.CmdStartGame})
	recvEvent(t, p1, types.EvtRoundStarted, time.Second)
	recvEvent(t, p2, types.EvtRoundStarted, time.Second)

	// Blitz during the leaderboard gap lands on the next round's dispatch.
	send(r, "adm", types.Command{Type: types.CmdForceRound})
	recvEvent(t, p1, types.EvtRoundEnded, time.Second)

	send(r, "p1", types.Command{Type: types.CmdUseBlitz})
	env := recvEvent(t, p1, types.EvtBlitz, time.Second)
	act := env.Data.(types.BlitzActivated)
	if act.ActorTeam != "Sharks" || act.TargetTeam != "Jets" {
		t.Fatalf("blitz should target the opposing team: %+v", act)
	}

	send(r, "adm", types.Command{Type: types.CmdForceRound})

	rs1 := recvEvent(t, p1, types.EvtRoundStarted, time.Second).Data.(types.RoundStarted)
	rs2 := recvEvent(t, p2, types.EvtRoundStarted, time.Second).Data.(types.RoundStarted)
	if rs1.TimerLength != 30 || rs1.IsBlitzed {
		t.Fatalf("activating team keeps the standard timer: %+v", rs1)
	}
	if rs2.TimerLength != 3 || !rs2.IsBlitzed {
		t.Fatalf("targeted team gets the blitz window: %+v", rs2)
	}

	// One-shot: the flag stays spent for the rest of the match.
	v := getView(t, r)
	for _, team := range v.Teams {
		if team.Name == "Sharks" && team.BlitzAvailable {
			t.Fatalf("blitz flag should remain spent")
		}
	}
	send(r, "p1", types.Command{Type: types.CmdUseBlitz})
	recvNoEvent(t, p1, types.EvtBlitz, 100*time.Millisecond)
}

func TestRoom_BeastModeRejectionReasons(t *testing.T) {
	r := newTestRoom(t, testConfig())
	p1, p2, _ := setupMatch(t, r)

	// Not in play yet.
	send(r, "p1", types.Command{Type: types.CmdUseBeastMode})
	env := recvEvent(t, p1, types.EvtBeastModeError, time.Second)
	notPlaying := env.Data.(types.ErrorEvent).Message

	send(r, "adm", types.Command{Type: types.CmdStartGame})
	recvEvent(t, p1, types.EvtRoundStarted, time.Second)

	send(r, "p1", types.Command{Type: types.CmdUseBeastMode})
	act := recvEvent(t, p1, types.EvtBeastMode, time.Second).Data.(types.BeastModeActivated)
	if act.Actor != "Ana" || act.Team != "Sharks" {
		t.Fatalf("unexpected activation: %+v", act)
	}

	// Other team, same round: slot is taken.
	send(r, "p2", types.Command{Type: types.CmdUseBeastMode})
	env = recvEvent(t, p2, types.EvtBeastModeError, time.Second)
	activeMsg := env.Data.(types.ErrorEvent).Message

	// Next round, same player: burned for the match, with a distinct reason.
	send(r, "adm", types.Command{Type: types.CmdForceRound})
	recvEvent(t, p1, types.EvtRoundEnded, time.Second)
	send(r, "adm", types.Command{Type: types.CmdForceRound})
	recvEvent(t, p1, types.EvtRoundStarted, time.Second)

	send(r, "p1", types.Command{Type: types.CmdUseBeastMode})
	env = recvEvent(t, p1, types.EvtBeastModeError, time.Second)
	usedMsg := env.Data.(types.ErrorEvent).Message

	if usedMsg == activeMsg || usedMsg == notPlaying || activeMsg == notPlaying {
		t.Fatalf("rejection reasons must be distinct: %q / %q / %q", notPlaying, activeMsg, usedMsg)
	}
}

func TestRoom_ResetRestoresEverything(t *testing.T) {
	cfg := testConfig()
	cfg.Features.CPUTeams = true
	cfg.PlayersPerTeam = 2
	r := newTestRoom(t, cfg)
	p1, _, _ := setupMatch(t, r)

	send(r, "adm", types.Command{Type: types.CmdStartGame})
	rs := recvEvent(t, p1, types.EvtRoundStarted, time.Second).Data.(types.RoundStarted)

	send(r, "p1", types.Command{Type: types.CmdSubmitAnswer, Button: correctButton(t, rs)})
	send(r, "p1", types.Command{Type: types.CmdUseBlitz})
	recvEvent(t, p1, types.EvtBlitz, time.Second)
	send(r, "adm", types.Command{Type: types.CmdForceRound})
	recvEvent(t, p1, types.EvtRoundEnded, time.Second)

	send(r, "adm", types.Command{Type: types.CmdResetGame})
	recvEvent(t, p1, types.EvtGameReset, time.Second)

	v := getView(t, r)
	if v.Phase != game.PhaseLobby || v.CurrentRound != 0 {
		t.Fatalf("want lobby round 0, got %s round %d", v.Phase, v.CurrentRound)
	}
	for _, p := range v.Players {
		if p.IsCPU {
			t.Fatalf("CPU player %q survived reset", p.Name)
		}
		if p.Score != 0 || p.Attempts != 0 {
			t.Fatalf("player counters survived reset: %+v", p)
		}
	}
	for _, team := range v.Teams {
		if !team.BlitzAvailable {
			t.Fatalf("team %q blitz flag not restored", team.Name)
		}
		for _, id := range team.Members {
			if strings.HasPrefix(id, "cpu-") {
				t.Fatalf("team %q kept CPU member %q", team.Name, id)
			}
		}
	}
	if len(v.BeastUsed) != 0 || v.BlitzTarget != "" {
		t.Fatalf("power-up state survived reset")
	}
}

func TestRoom_RoundExpiryResolvesRound(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultTimerSeconds = 1
	r := newTestRoom(t, cfg)
	p1, _, _ := setupMatch(t, r)

	send(r, "adm", types.Command{Type: types.CmdStartGame})
	recvEvent(t, p1, types.EvtRoundStarted, time.Second)

	// No admin action: the expiry timer drives resolution.
	env := recvEvent(t, p1, types.EvtRoundEnded, 2*time.Second)
	ended := env.Data.(types.RoundEnded)
	if ended.Round != 1 {
		t.Fatalf("expiry should resolve round 1, got %d", ended.Round)
	}
	if v := getView(t, r); v.Phase != game.PhaseLeaderboard {
		t.Fatalf("want leaderboard after expiry, got %s", v.Phase)
	}
}

func TestRoom_TrashTalkBroadcast(t *testing.T) {
	r := newTestRoom(t, testConfig())
	p1, p2, _ := setupMatch(t, r)

	send(r, "p1", types.Command{Type: types.CmdTrashTalk, Phrase: 1})
	env := recvEvent(t, p2, types.EvtTrashTalk, time.Second)
	msg := env.Data.(types.TrashTalk)
	if msg.PlayerName != "Ana" || msg.Phrase != "Too slow!" {
		t.Fatalf("unexpected trash talk: %+v", msg)
	}

	// Out-of-range phrase index is a rejected intent, nothing more.
	send(r, "p1", types.Command{Type: types.CmdTrashTalk, Phrase: 99})
	recvNoEvent(t, p1, types.EvtTrashTalk, 100*time.Millisecond)
}

func TestRoom_AdminTimerUpdate(t *testing.T) {
	r := newTestRoom(t, testConfig())
	p1, _, admin := setupMatch(t, r)

	send(r, "adm", types.Command{Type: types.CmdSetTimer, Seconds: 12})
	env := recvEvent(t, admin, types.EvtTimerUpdated, time.Second)
	if env.Data.(types.TimerUpdated).Seconds != 12 {
		t.Fatalf("timer echo mismatch: %+v", env.Data)
	}
	if v := getView(t, r); v.TimerLength != 12 {
		t.Fatalf("timer length not applied: %d", v.TimerLength)
	}

	// Players can't touch the timer.
	send(r, "p1", types.Command{Type: types.CmdSetTimer, Seconds: 5})
	recvNoEvent(t, p1, types.EvtTimerUpdated, 100*time.Millisecond)
	if v := getView(t, r); v.TimerLength != 12 {
		t.Fatalf("player changed the timer")
	}
}
