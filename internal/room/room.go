// Package room implements the match orchestrator: a single goroutine owning
// all game state for one room, fed by an inbox of connection intents and
// timer fires. No handler runs concurrently with another, so the roster,
// round, and power-up state need no locking.
package room

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/config"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/game"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/types"
)

type client struct {
	id      string
	outbox  chan types.Envelope
	isAdmin bool
	joined  bool
}

type Room struct {
	Code string

	inbox   chan Msg
	cfg     *config.Config
	log     *zap.Logger
	rng     *rand.Rand
	gen     *game.Generator
	clients map[string]*client

	roster *game.Roster
	power  *game.PowerUps

	phase        game.Phase
	currentRound int
	timerLength  int
	round        *game.Round

	roundTimer  *time.Timer
	splashTimer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, code string, cfg *config.Config, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	seed := time.Now().UnixNano()

	r := &Room{
		Code:        code,
		inbox:       make(chan Msg, 64),
		cfg:         cfg,
		log:         log.Named("room").With(zap.String("code", code)),
		rng:         rand.New(rand.NewSource(seed)),
		gen:         game.NewGenerator(seed),
		clients:     make(map[string]*client),
		roster:      game.NewRoster(),
		power:       game.NewPowerUps(),
		phase:       game.PhaseLobby,
		timerLength: cfg.DefaultTimerSeconds,
		ctx:         ctx,
		cancel:      cancel,
	}

	go r.loop()
	return r
}

// Inbox exposes the message channel to the transport layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = &client{id: msg.ClientID, outbox: msg.Outbox}
				r.sendTo(msg.ClientID, types.EvtGameState, r.snapshot())

			case Leave:
				delete(r.clients, msg.ClientID)
				if r.roster.RemovePlayer(msg.ClientID) {
					r.broadcastState()
				}

			case FromClient:
				r.handleCommand(msg.ClientID, msg.Cmd)

			case roundExpired:
				if r.phase == game.PhasePlaying && r.currentRound == msg.round {
					r.endRound()
				}

			case splashDone:
				if r.phase == game.PhaseSplash {
					r.startRound()
				}

			case cpuAnswerDue:
				if r.phase == game.PhasePlaying && r.currentRound == msg.round {
					r.submitAnswer(msg.playerID, r.rng.Intn(r.cfg.ButtonCount)+1)
				}

			case cpuBlitzDue:
				if r.phase == game.PhasePlaying && r.currentRound == msg.round {
					r.cpuBlitz(msg.teamID)
				}

			case GetState:
				msg.Reply <- r.view()

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	r.stopTimers()
	for id, c := range r.clients {
		close(c.outbox)
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) stopTimers() {
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
	if r.splashTimer != nil {
		r.splashTimer.Stop()
		r.splashTimer = nil
	}
}

// post delivers a timer-fired message without wedging the timer goroutine if
// the room is gone.
func (r *Room) post(m Msg) {
	select {
	case r.inbox <- m:
	case <-r.ctx.Done():
	}
}

func (r *Room) after(d time.Duration, m Msg) *time.Timer {
	return time.AfterFunc(d, func() { r.post(m) })
}

func (r *Room) handleCommand(clientID string, cmd types.Command) {
	c, ok := r.clients[clientID]
	if !ok {
		return
	}

	switch cmd.Type {
	case types.CmdJoin:
		r.joinPlayer(c, cmd.Name)

	case types.CmdAdminJoin:
		c.isAdmin = true
		r.sendTo(clientID, types.EvtAdminInit, types.AdminInitialized{Config: r.cfg.ClientView()})
		r.broadcastState()

	case types.CmdSubmitAnswer:
		r.submitAnswer(clientID, cmd.Button)

	case types.CmdCreateTeam:
		if r.cfg.Features.Teams {
			r.createTeam(clientID, cmd.Name)
		}

	case types.CmdJoinTeam:
		if r.cfg.Features.Teams {
			r.joinTeam(clientID, cmd.TeamID)
		}

	case types.CmdTrashTalk:
		if r.cfg.Features.TrashTalk {
			r.trashTalk(clientID, cmd.Phrase)
		}

	case types.CmdUseBlitz:
		r.useBlitz(clientID)

	case types.CmdUseBeastMode:
		r.useBeastMode(clientID)

	case types.CmdSetTimer:
		if c.isAdmin && cmd.Seconds > 0 {
			r.timerLength = cmd.Seconds
			r.sendAdmins(types.EvtTimerUpdated, types.TimerUpdated{Seconds: cmd.Seconds})
		}

	case types.CmdStartGame:
		if c.isAdmin {
			r.startGame()
		}

	case types.CmdForceRound:
		if c.isAdmin {
			r.forceAdvance()
		}

	case types.CmdResetGame:
		if c.isAdmin {
			r.resetGame()
		}
	}
}

func (r *Room) joinPlayer(c *client, name string) {
	if c.joined || c.isAdmin {
		return
	}
	c.joined = true
	r.roster.AddPlayer(c.id, name)
	r.sendTo(c.id, types.EvtPlayerJoined, types.PlayerJoined{
		PlayerID: c.id,
		Config:   r.cfg.ClientView(),
	})
	r.log.Info("player joined", zap.String("player", name))
	r.broadcastState()
}

func (r *Room) createTeam(playerID, name string) {
	_, err := r.roster.CreateTeam(playerID, name, r.cfg.MaxHumanTeams)
	if err != nil {
		r.sendTo(playerID, types.EvtTeamError, types.ErrorEvent{Message: err.Error()})
		return
	}
	r.broadcastState()
}

func (r *Room) joinTeam(playerID, teamID string) {
	if err := r.roster.JoinTeam(playerID, teamID, r.cfg.PlayersPerTeam); err != nil {
		r.sendTo(playerID, types.EvtTeamError, types.ErrorEvent{Message: err.Error()})
		return
	}
	r.broadcastState()
}

func (r *Room) trashTalk(playerID string, phrase int) {
	p, ok := r.roster.Players[playerID]
	if !ok || phrase < 0 || phrase >= len(r.cfg.TrashTalkPhrases) {
		return
	}
	r.broadcast(types.EvtTrashTalk, types.TrashTalk{
		PlayerID:   playerID,
		PlayerName: p.Name,
		Phrase:     r.cfg.TrashTalkPhrases[phrase],
	})
}

// --- power-ups ---

func (r *Room) useBlitz(playerID string) {
	if r.phase != game.PhasePlaying && r.phase != game.PhaseLeaderboard {
		r.sendTo(playerID, types.EvtBlitzError, types.ErrorEvent{Message: game.ErrMatchNotPlaying.Error()})
		return
	}
	act, err := r.power.UseBlitz(r.roster, playerID)
	if err != nil {
		if errors.Is(err, game.ErrNoTeam) || errors.Is(err, game.ErrBlitzSpent) {
			// silent, matching the roster rules
			return
		}
		r.sendTo(playerID, types.EvtBlitzError, types.ErrorEvent{Message: err.Error()})
		return
	}
	r.announceBlitz(act)
}

func (r *Room) cpuBlitz(teamID string) {
	t, ok := r.roster.Teams[teamID]
	if !ok || !t.BlitzAvailable {
		return
	}
	for _, id := range t.Members {
		p := r.roster.Players[id]
		if p == nil || !p.IsCPU {
			continue
		}
		act, err := r.power.UseBlitz(r.roster, id)
		if err == nil {
			r.announceBlitz(act)
		}
		return
	}
}

func (r *Room) announceBlitz(act *game.BlitzActivation) {
	r.log.Info("blitz activated",
		zap.String("actor", act.Actor.Name),
		zap.String("target", act.TargetTeam.Name))
	r.broadcast(types.EvtBlitz, types.BlitzActivated{
		Actor:      act.Actor.Name,
		ActorTeam:  act.ActorTeam.Name,
		TargetTeam: act.TargetTeam.Name,
	})
	r.broadcastState()
}

func (r *Room) useBeastMode(playerID string) {
	if r.phase != game.PhasePlaying {
		r.sendTo(playerID, types.EvtBeastModeError, types.ErrorEvent{Message: game.ErrMatchNotPlaying.Error()})
		return
	}
	act, err := r.power.UseBeastMode(r.roster, playerID)
	if err != nil {
		r.sendTo(playerID, types.EvtBeastModeError, types.ErrorEvent{Message: err.Error()})
		return
	}
	r.log.Info("beast mode activated",
		zap.String("actor", act.Actor.Name),
		zap.String("team", act.Team.Name))
	r.broadcast(types.EvtBeastMode, types.BeastModeActivated{
		Actor: act.Actor.Name,
		Team:  act.Team.Name,
	})
	r.broadcastState()
}

// --- match lifecycle ---

func (r *Room) startGame() {
	if r.phase != game.PhaseLobby {
		return
	}
	r.currentRound = 0
	r.roster.ResetScores()
	r.roster.FillTeamsWithCPU(r.cfg.CPUTeamNames, r.cfg.CPUPlayerNames, r.cfg.PlayersPerTeam)

	teams := r.roster.TeamsBySeq()
	r.phase = game.PhaseSplash
	r.log.Info("game started",
		zap.String("team1", teams[0].Name),
		zap.String("team2", teams[1].Name))
	r.broadcast(types.EvtGameSplash, types.GameSplash{
		Team1: r.teamSummary(teams[0]),
		Team2: r.teamSummary(teams[1]),
	})
	r.broadcastState()

	r.splashTimer = r.after(r.cfg.SplashDelay, splashDone{})
}

func (r *Room) teamSummary(t *game.Team) types.TeamSummary {
	names := make([]string, 0, len(t.Members))
	for _, id := range t.Members {
		if p, ok := r.roster.Players[id]; ok {
			names = append(names, p.Name)
		}
	}
	return types.TeamSummary{ID: t.ID, Name: t.Name, Members: names}
}

func (r *Room) startRound() {
	if r.currentRound >= r.cfg.RoundsPerGame {
		r.endGame()
		return
	}
	r.currentRound++

	q := r.gen.Generate()
	r.round = game.NewRound(r.currentRound, q, time.Now())
	r.phase = game.PhasePlaying
	r.log.Info("round started",
		zap.Int("round", r.currentRound),
		zap.String("question", q.Text))

	// Dispatch per connection so a Blitzed team sees its shortened window.
	for id, c := range r.clients {
		r.sendTo(id, types.EvtRoundStarted, r.roundPayload(c))
	}

	if r.cfg.Features.CPUTeams {
		r.scheduleCPUAnswers()
		r.rollCPUBlitz()
	}

	// The expiry timer always runs for the global length; a Blitzed team's
	// window only limits how fast its players can score.
	r.roundTimer = r.after(time.Duration(r.timerLength)*time.Second, roundExpired{round: r.currentRound})
	r.broadcastState()
}

func (r *Room) roundPayload(c *client) types.RoundStarted {
	blitzed := false
	if p, ok := r.roster.Players[c.id]; ok && p.TeamID != "" {
		blitzed = r.power.Blitzed(p.TeamID)
	}
	return types.RoundStarted{
		Round:       r.currentRound,
		TotalRounds: r.cfg.RoundsPerGame,
		TimerLength: r.effectiveTimer(blitzed),
		Question:    r.round.Question.Text,
		Answers:     r.round.Question.Answers[:],
		IsBlitzed:   blitzed,
	}
}

func (r *Room) effectiveTimer(blitzed bool) int {
	if blitzed {
		return r.cfg.BlitzSeconds
	}
	return r.timerLength
}

func (r *Room) scheduleCPUAnswers() {
	round := r.currentRound
	for _, p := range r.roster.PlayersBySeq() {
		if !p.IsCPU {
			continue
		}
		eff := r.effectiveTimer(r.power.Blitzed(p.TeamID))
		delay := time.Duration(r.rng.Float64() * 0.7 * float64(eff) * float64(time.Second))
		r.after(delay, cpuAnswerDue{round: round, playerID: p.ID})
	}
}

// rollCPUBlitz gives each Blitz-capable team with CPU members one shot per
// round at triggering Blitz, with odds that climb as the match goes on.
func (r *Room) rollCPUBlitz() {
	for _, t := range r.roster.TeamsBySeq() {
		if !t.BlitzAvailable || !r.hasCPUMember(t) {
			continue
		}
		if r.rng.Float64() < 0.1*float64(r.currentRound) {
			r.after(r.cfg.CPUBlitzDelay, cpuBlitzDue{round: r.currentRound, teamID: t.ID})
		}
	}
}

func (r *Room) hasCPUMember(t *game.Team) bool {
	for _, id := range t.Members {
		if p, ok := r.roster.Players[id]; ok && p.IsCPU {
			return true
		}
	}
	return false
}

func (r *Room) submitAnswer(playerID string, button int) {
	if r.phase != game.PhasePlaying || r.round == nil {
		return
	}
	p, ok := r.roster.Players[playerID]
	if !ok {
		return
	}
	// First submission wins; repeats are ignored.
	if !r.round.Record(playerID, button, time.Now()) {
		return
	}
	if !p.IsCPU {
		r.sendTo(playerID, types.EvtAnswerRecorded, types.AnswerRecorded{Button: button})
	}
	r.broadcast(types.EvtPlayerAnswer, types.PlayerAnswered{PlayerID: playerID, PlayerName: p.Name})
}

func (r *Room) endRound() {
	if r.phase != game.PhasePlaying || r.round == nil {
		return
	}
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
	r.phase = game.PhaseLeaderboard

	q := r.round.Question
	awards := make(map[string]int)
	correctByTeam := make(map[string]int)
	var scores []types.RoundScore

	for _, p := range r.roster.PlayersBySeq() {
		ans, ok := r.round.Answers[p.ID]
		if !ok {
			continue
		}
		p.Attempts++
		correct := ans.Button == q.CorrectIndex
		points := 0
		if correct {
			p.Correct++
			if p.TeamID != "" {
				correctByTeam[p.TeamID]++
			}
			points = game.BasePoints(r.timerLength, ans.At.Sub(r.round.StartedAt), r.cfg.PointsPerSecond)
		}
		awards[p.ID] = points
		scores = append(scores, types.RoundScore{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Points:     points,
			Correct:    correct,
		})
	}

	// Beast Mode gates the whole team's round take on its accuracy.
	var beastTeam, beastActor string
	if r.power.BeastTeam != "" {
		if t, ok := r.roster.Teams[r.power.BeastTeam]; ok {
			mult := game.BeastMultiplier(correctByTeam[t.ID], r.cfg.PlayersPerTeam)
			for _, id := range t.Members {
				awards[id] *= mult
			}
			for i := range scores {
				if p, ok := r.roster.Players[scores[i].PlayerID]; ok && p.TeamID == t.ID {
					scores[i].Points = awards[scores[i].PlayerID]
				}
			}
			beastTeam = t.Name
			if actor, ok := r.roster.Players[r.power.BeastActor]; ok {
				beastActor = actor.Name
			}
		}
	}

	for id, points := range awards {
		p, ok := r.roster.Players[id]
		if !ok || points == 0 {
			continue
		}
		p.Score += points
		if r.cfg.Features.TeamVsTeam && p.TeamID != "" {
			if t, ok := r.roster.Teams[p.TeamID]; ok {
				t.Score += points
			}
		}
	}

	r.log.Info("round ended",
		zap.Int("round", r.currentRound),
		zap.Int("answers", len(r.round.Answers)))

	r.broadcast(types.EvtRoundEnded, types.RoundEnded{
		CorrectPosition: q.CorrectIndex,
		CorrectValue:    q.CorrectValue(),
		RoundScores:     scores,
		Leaderboard:     game.BuildLeaderboard(r.roster, r.cfg.Features.TeamVsTeam),
		Round:           r.currentRound,
		TotalRounds:     r.cfg.RoundsPerGame,
		BeastModeTeam:   beastTeam,
		BeastModeActor:  beastActor,
	})

	r.power.ClearRound()
	r.round = nil
	r.broadcastState()
}

func (r *Room) forceAdvance() {
	switch r.phase {
	case game.PhasePlaying:
		r.endRound()
	case game.PhaseLeaderboard:
		r.startRound()
	}
}

func (r *Room) endGame() {
	r.phase = game.PhaseFinished
	r.log.Info("game finished", zap.Int("rounds", r.currentRound))
	r.broadcast(types.EvtGameFinished, types.GameFinished{
		Leaderboard: game.BuildLeaderboard(r.roster, r.cfg.Features.TeamVsTeam),
	})
	r.broadcastState()
}

func (r *Room) resetGame() {
	r.stopTimers()
	r.currentRound = 0
	r.round = nil
	r.phase = game.PhaseLobby
	r.roster.ResetScores()
	r.roster.RemoveCPUPlayers()
	r.roster.RestoreBlitz()
	r.power.Reset()
	r.log.Info("game reset")
	r.broadcast(types.EvtGameReset, nil)
	r.broadcastState()
}

// --- outbound ---

func (r *Room) sendTo(clientID string, evt types.EventType, data any) {
	c, ok := r.clients[clientID]
	if !ok {
		return
	}
	r.deliver(c, types.Envelope{Type: evt, Data: data})
}

func (r *Room) broadcast(evt types.EventType, data any) {
	env := types.Envelope{Type: evt, Data: data}
	for _, c := range r.clients {
		r.deliver(c, env)
	}
}

func (r *Room) sendAdmins(evt types.EventType, data any) {
	env := types.Envelope{Type: evt, Data: data}
	for _, c := range r.clients {
		if c.isAdmin {
			r.deliver(c, env)
		}
	}
}

// deliver never blocks the loop; a client that can't keep up is dropped.
func (r *Room) deliver(c *client, env types.Envelope) {
	select {
	case c.outbox <- env:
	default:
		close(c.outbox)
		delete(r.clients, c.id)
		r.roster.RemovePlayer(c.id)
	}
}

func (r *Room) broadcastState() {
	snap := r.snapshot()
	r.broadcast(types.EvtGameState, snap)
	r.sendAdmins(types.EvtAdminState, snap)
}

func (r *Room) snapshot() types.GameState {
	snap := types.GameState{
		Phase:        string(r.phase),
		CurrentRound: r.currentRound,
		TotalRounds:  r.cfg.RoundsPerGame,
		TimerLength:  r.timerLength,
	}
	for _, p := range r.roster.PlayersBySeq() {
		snap.Players = append(snap.Players, types.PlayerState{
			ID:       p.ID,
			Name:     p.Name,
			Score:    p.Score,
			TeamID:   p.TeamID,
			IsCPU:    p.IsCPU,
			Attempts: p.Attempts,
			Correct:  p.Correct,
		})
	}
	for _, t := range r.roster.TeamsBySeq() {
		snap.Teams = append(snap.Teams, types.TeamState{
			ID:             t.ID,
			Name:           t.Name,
			Score:          t.Score,
			Members:        append([]string(nil), t.Members...),
			IsCPU:          t.IsCPU,
			BlitzAvailable: t.BlitzAvailable,
		})
	}
	return snap
}

func (r *Room) view() View {
	snap := r.snapshot()
	used := make(map[string]bool, len(r.power.BeastUsed))
	for k, v := range r.power.BeastUsed {
		used[k] = v
	}
	return View{
		Phase:        r.phase,
		CurrentRound: r.currentRound,
		TimerLength:  r.timerLength,
		NumClients:   len(r.clients),
		Players:      snap.Players,
		Teams:        snap.Teams,
		BlitzTarget:  r.power.BlitzTargetTeam,
		BeastTeam:    r.power.BeastTeam,
		BeastUsed:    used,
	}
}
