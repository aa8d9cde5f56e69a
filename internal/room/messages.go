package room

import (
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/game"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/types"
)

type Msg interface{ isRoomMsg() }

// Join registers a connection and its outbox. The connection becomes a
// player or an admin only once it sends the matching command.
type Join struct {
	ClientID string
	Outbox   chan types.Envelope
}

func (Join) isRoomMsg() {}

// Leave is issued on disconnect.
type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

// FromClient carries one decoded intent from a connection.
type FromClient struct {
	ClientID string
	Cmd      types.Command
}

func (FromClient) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetState lets tests observe room internals without data races.
type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type View struct {
	Phase        game.Phase
	CurrentRound int
	TimerLength  int
	NumClients   int
	Players      []types.PlayerState
	Teams        []types.TeamState
	BlitzTarget  string
	BeastTeam    string
	BeastUsed    map[string]bool
}

// Timer-fired messages, posted by the room's own timers. Each carries the
// round it was armed for so stale fires are dropped.

type roundExpired struct{ round int }

func (roundExpired) isRoomMsg() {}

type splashDone struct{}

func (splashDone) isRoomMsg() {}

type cpuAnswerDue struct {
	round    int
	playerID string
}

func (cpuAnswerDue) isRoomMsg() {}

type cpuBlitzDue struct {
	round  int
	teamID string
}

func (cpuBlitzDue) isRoomMsg() {}
