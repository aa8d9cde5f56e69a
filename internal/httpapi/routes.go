package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/config"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/hub"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, cfg *config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/rooms/{code}/qr", RoomQR(h, cfg))
	r.Get("/ws", ws.Handler(h, log))
	r.Get("/healthz", Healthz)
	return r
}
