package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wishlane/wishlane-backend/internal/realtime"
	pkgAuth "github.com/wishlane/wishlane-backend/pkg/auth"
	"github.com/wishlane/wishlane-backend/pkg/auth/session"
	"github.com/wishlane/wishlane-backend/pkg/config"
	"github.com/wishlane/wishlane-backend/pkg/logger"
)

type allowAllSessions struct{}

func (allowAllSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

// recordingFanout captures the context state seen by Forward so tests can
// assert relayed frames reach siblings on a live context.
type recordingFanout struct {
	ctxErrs chan error
}

func (f *recordingFanout) Forward(ctx context.Context, wishlistID uuid.UUID, frame realtime.Frame) error {
	f.ctxErrs <- ctx.Err()
	return nil
}

func realtimeTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Realtime: config.RealtimeConfig{
			ReadLimitBytes: 65536,
			SendBufferSize: 8,
			WriteTimeout:   5 * time.Second,
			PongTimeout:    30 * time.Second,
			PingInterval:   10 * time.Second,
		},
	}
}

func mintRealtimeToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "realtime_tester",
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

// The connection outlives the handshake request, so frames relayed after the
// handler returns must not carry its canceled context into the fanout.
func TestRealtimeFanoutContextSurvivesHandshake(t *testing.T) {
	cfg := realtimeTestConfig()
	logg := logger.New(logger.Options{ServiceName: "test-realtime", Level: logger.ParseLevel("debug"), Output: io.Discard})

	fanout := &recordingFanout{ctxErrs: make(chan error, 4)}
	hub, err := realtime.NewHub(realtime.HubParams{Logger: logg, Fanout: fanout})
	if err != nil {
		t.Fatalf("build hub: %v", err)
	}

	srv := httptest.NewServer(RealtimeConnect(cfg, hub, allowAllSessions{}, map[string]struct{}{}, logg))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + mintRealtimeToken(t, cfg)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	wishlistID := uuid.NewString()
	join := `{"event":"join-wishlist","wishlistId":"` + wishlistID + `"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		t.Fatalf("send join: %v", err)
	}
	added := `{"event":"product-added","wishlistId":"` + wishlistID + `","payload":{"name":"skates"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(added)); err != nil {
		t.Fatalf("send product-added: %v", err)
	}

	select {
	case ctxErr := <-fanout.ctxErrs:
		if ctxErr != nil {
			t.Fatalf("fanout saw dead context: %v", ctxErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fanout never received the relayed frame")
	}
}
