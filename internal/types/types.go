// Package types defines the wire protocol between connections and rooms:
// a closed set of inbound commands and outbound events, each with a typed
// payload. The transport layer translates JSON to and from these types;
// rooms dispatch on them exhaustively.
package types

type CommandType string

const (
	CmdJoin         CommandType = "join"
	CmdSubmitAnswer CommandType = "submit-answer"
	CmdCreateTeam   CommandType = "create-team"
	CmdJoinTeam     CommandType = "join-team"
	CmdTrashTalk    CommandType = "send-trash-talk"
	CmdUseBlitz     CommandType = "use-blitz"
	CmdUseBeastMode CommandType = "use-beast-mode"

	// Admin commands
	CmdAdminJoin  CommandType = "join-as-admin"
	CmdSetTimer   CommandType = "set-timer-length"
	CmdForceRound CommandType = "force-start-round"
	CmdStartGame  CommandType = "start-game"
	CmdResetGame  CommandType = "reset-game"
)

// Command is an inbound intent after decoding. Only the fields relevant to
// the Type are set; everything else is zero.
type Command struct {
	Type    CommandType
	Name    string
	TeamID  string
	Button  int
	Phrase  int
	Seconds int
}

// ClientMessage is the raw JSON shape a connection sends.
type ClientMessage struct {
	Type    string `json:"type"`
	Name    string `json:"name,omitempty"`
	TeamID  string `json:"team_id,omitempty"`
	Button  int    `json:"button,omitempty"`
	Phrase  int    `json:"phrase,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
}

type EventType string

const (
	// Broadcast to every connection in the room.
	EvtRoundStarted EventType = "round-started"
	EvtPlayerAnswer EventType = "player-answered"
	EvtRoundEnded   EventType = "round-ended"
	EvtGameSplash   EventType = "game-splash"
	EvtGameFinished EventType = "game-finished"
	EvtGameReset    EventType = "game-reset"
	EvtBlitz        EventType = "blitz-activated"
	EvtBeastMode    EventType = "beastMode-activated"
	EvtTrashTalk    EventType = "chat-trashTalk"
	EvtGameState    EventType = "game-state"

	// Targeted at a single connection.
	EvtPlayerJoined   EventType = "player-joined"
	EvtAnswerRecorded EventType = "answer-recorded"
	EvtTeamError      EventType = "team-error"
	EvtBlitzError     EventType = "blitz-error"
	EvtBeastModeError EventType = "beastMode-error"

	// Admin connections only.
	EvtAdminInit    EventType = "admin-initialized"
	EvtAdminState   EventType = "admin-state"
	EvtTimerUpdated EventType = "admin-timerUpdated"
)

// Envelope is the outbound wire frame.
type Envelope struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// ClientConfig is the slice of server configuration a client needs to render
// the game, sent on join.
type ClientConfig struct {
	TeamsEnabled     bool     `json:"teams_enabled"`
	CPUTeamsEnabled  bool     `json:"cpu_teams_enabled"`
	TrashTalkEnabled bool     `json:"trash_talk_enabled"`
	TeamScoring      bool     `json:"team_scoring"`
	RoundsPerGame    int      `json:"rounds_per_game"`
	ButtonCount      int      `json:"button_count"`
	PointsPerSecond  int      `json:"points_per_second"`
	TimerSeconds     int      `json:"timer_seconds"`
	PlayersPerTeam   int      `json:"players_per_team"`
	TrashTalkPhrases []string `json:"trash_talk_phrases"`
}

type RoundStarted struct {
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
	TimerLength int    `json:"timer_length"`
	Question    string `json:"question"`
	Answers     []int  `json:"answers"`
	IsBlitzed   bool   `json:"is_blitzed"`
}

type PlayerAnswered struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

type RoundScore struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Points     int    `json:"points"`
	Correct    bool   `json:"correct"`
}

type PlayerStanding struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	TeamID string `json:"team_id,omitempty"`
	IsCPU  bool   `json:"is_cpu"`
}

type TeamStanding struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	MemberCount int    `json:"member_count"`
	IsCPU       bool   `json:"is_cpu"`
}

type Leaderboard struct {
	Players []PlayerStanding `json:"players"`
	Teams   []TeamStanding   `json:"teams,omitempty"`
}

type RoundEnded struct {
	CorrectPosition int          `json:"correct_position"`
	CorrectValue    int          `json:"correct_value"`
	RoundScores     []RoundScore `json:"round_scores"`
	Leaderboard     Leaderboard  `json:"leaderboard"`
	Round           int          `json:"round"`
	TotalRounds     int          `json:"total_rounds"`
	BeastModeTeam   string       `json:"beast_mode_team,omitempty"`
	BeastModeActor  string       `json:"beast_mode_actor,omitempty"`
}

type TeamSummary struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type GameSplash struct {
	Team1 TeamSummary `json:"team1"`
	Team2 TeamSummary `json:"team2"`
}

type GameFinished struct {
	Leaderboard Leaderboard `json:"leaderboard"`
}

type BlitzActivated struct {
	Actor      string `json:"actor"`
	ActorTeam  string `json:"actor_team"`
	TargetTeam string `json:"target_team"`
}

type BeastModeActivated struct {
	Actor string `json:"actor"`
	Team  string `json:"team"`
}

type TrashTalk struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Phrase     string `json:"phrase"`
}

type PlayerState struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	TeamID   string `json:"team_id,omitempty"`
	IsCPU    bool   `json:"is_cpu"`
	Attempts int    `json:"attempts"`
	Correct  int    `json:"correct"`
}

type TeamState struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Score          int      `json:"score"`
	Members        []string `json:"members"`
	IsCPU          bool     `json:"is_cpu"`
	BlitzAvailable bool     `json:"blitz_available"`
}

type GameState struct {
	Phase        string        `json:"phase"`
	CurrentRound int           `json:"current_round"`
	TotalRounds  int           `json:"total_rounds"`
	TimerLength  int           `json:"timer_length"`
	Players      []PlayerState `json:"players"`
	Teams        []TeamState   `json:"teams"`
}

type PlayerJoined struct {
	PlayerID string       `json:"player_id"`
	Config   ClientConfig `json:"config"`
}

type AnswerRecorded struct {
	Button int `json:"button"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type AdminInitialized struct {
	Config ClientConfig `json:"config"`
}

type TimerUpdated struct {
	Seconds int `json:"seconds"`
}
