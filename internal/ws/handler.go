package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/hub"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/room"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/types"
)

// Handler upgrades a connection and bridges it to the room named by ?code=.
// Each connection gets a generated id; that id doubles as the player id once
// the client sends its join intent.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		out := make(chan types.Envelope, 32)

		rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ClientID: clientID} }()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range out {
				payload, err := json.Marshal(env)
				if err != nil {
					log.Warn("marshal failed", zap.String("event", string(env.Type)), zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"team-error","data":{"message":"bad json"}}`))
				continue
			}

			cmd, ok := toCommand(cm)
			if !ok {
				// unknown type: a rejected intent, nothing more
				continue
			}
			rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

func toCommand(m types.ClientMessage) (types.Command, bool) {
	switch t := types.CommandType(m.Type); t {
	case types.CmdJoin,
		types.CmdSubmitAnswer,
		types.CmdCreateTeam,
		types.CmdJoinTeam,
		types.CmdTrashTalk,
		types.CmdUseBlitz,
		types.CmdUseBeastMode,
		types.CmdAdminJoin,
		types.CmdSetTimer,
		types.CmdForceRound,
		types.CmdStartGame,
		types.CmdResetGame:
		return types.Command{
			Type:    t,
			Name:    m.Name,
			TeamID:  m.TeamID,
			Button:  m.Button,
			Phrase:  m.Phrase,
			Seconds: m.Seconds,
		}, true
	default:
		return types.Command{}, false
	}
}
