// Package hub keeps the registry of live rooms, keyed by join code. Like
// the rooms it manages, the hub is a single goroutine fed by an inbox.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/config"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/room"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	cfg    *config.Config
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, cfg *config.Config, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		cfg:    cfg,
		log:    log.Named("hub"),
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				rm := room.New(h.ctx, msg.Code, h.cfg, h.log)
				h.rooms[msg.Code] = rm
				h.log.Info("room created", zap.String("code", msg.Code))
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					rm.Inbox() <- room.Shutdown{}
					delete(h.rooms, msg.Code)
					h.log.Info("room removed", zap.String("code", msg.Code))
				}

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
				return
			}
		}
	}
}
