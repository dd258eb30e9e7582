package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wishlane/wishlane-backend/api/middleware"
	"github.com/wishlane/wishlane-backend/api/responses"
	"github.com/wishlane/wishlane-backend/internal/realtime"
	"github.com/wishlane/wishlane-backend/pkg/auth/session"
	"github.com/wishlane/wishlane-backend/pkg/config"
	pkgerrors "github.com/wishlane/wishlane-backend/pkg/errors"
	"github.com/wishlane/wishlane-backend/pkg/logger"
)

// RealtimeConnect authenticates the handshake, upgrades to a websocket, and
// hands the connection to the hub. The credential comes from the token query
// parameter or the Authorization header; invalid credentials are refused
// before the upgrade completes.
func RealtimeConnect(cfg *config.Config, hub *realtime.Hub, verifier session.AccessSessionChecker, allowedOrigins map[string]struct{}, logg *logger.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowedOrigins[origin]
			return ok
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := r.URL.Query().Get("token")
		if token == "" {
			token = middleware.BearerToken(r.Header.Get("Authorization"))
		}
		if token == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		claims, err := middleware.Verify(ctx, cfg.JWT, verifier, token)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sock, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote its own response.
			logg.Warn(ctx, "websocket upgrade failed")
			return
		}

		client, err := realtime.NewClient(realtime.ClientParams{
			Socket: sock,
			Hub:    hub,
			UserID: claims.UserID,
			Config: cfg.Realtime,
			Logger: logg,
		})
		if err != nil {
			logg.Error(ctx, "build realtime client", err)
			_ = sock.Close()
			return
		}

		// The request context is canceled the moment this handler returns,
		// hijacked or not; the connection outlives it.
		go client.Run(context.WithoutCancel(r.Context()))
	}
}
