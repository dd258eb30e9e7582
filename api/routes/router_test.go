package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wishlane/wishlane-backend/internal/auth"
	"github.com/wishlane/wishlane-backend/internal/realtime"
	"github.com/wishlane/wishlane-backend/internal/users"
	"github.com/wishlane/wishlane-backend/internal/wishlists"
	pkgAuth "github.com/wishlane/wishlane-backend/pkg/auth"
	"github.com/wishlane/wishlane-backend/pkg/auth/session"
	"github.com/wishlane/wishlane-backend/pkg/config"
	"github.com/wishlane/wishlane-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	return &auth.TokenPair{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubWishlistService struct{}

func (stubWishlistService) List(ctx context.Context, actorID uuid.UUID) ([]wishlists.WishlistDTO, error) {
	return []wishlists.WishlistDTO{}, nil
}

func (stubWishlistService) ListPublic(ctx context.Context) ([]wishlists.WishlistDTO, error) {
	return []wishlists.WishlistDTO{}, nil
}

func (stubWishlistService) Get(ctx context.Context, actorID, wishlistID uuid.UUID) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{ID: wishlistID}, nil
}

func (stubWishlistService) Create(ctx context.Context, actorID uuid.UUID, in wishlists.CreateWishlistInput) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{Title: in.Title}, nil
}

func (stubWishlistService) UpdateMetadata(ctx context.Context, actorID, wishlistID uuid.UUID, in wishlists.UpdateWishlistInput) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{ID: wishlistID}, nil
}

func (stubWishlistService) Delete(ctx context.Context, actorID, wishlistID uuid.UUID) error {
	return nil
}

func (stubWishlistService) AddProduct(ctx context.Context, actorID, wishlistID uuid.UUID, in wishlists.AddProductInput) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{ID: wishlistID}, nil
}

func (stubWishlistService) UpdateProduct(ctx context.Context, actorID, wishlistID, productID uuid.UUID, in wishlists.UpdateProductInput) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{ID: wishlistID}, nil
}

func (stubWishlistService) DeleteProduct(ctx context.Context, actorID, wishlistID, productID uuid.UUID) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{ID: wishlistID}, nil
}

func (stubWishlistService) AddCollaborator(ctx context.Context, actorID, wishlistID, userID uuid.UUID) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{ID: wishlistID}, nil
}

func (stubWishlistService) RemoveCollaborator(ctx context.Context, actorID, wishlistID, userID uuid.UUID) (*wishlists.WishlistDTO, error) {
	return &wishlists.WishlistDTO{ID: wishlistID}, nil
}

type stubRateStore struct {
	counts map[string]int64
}

func (s *stubRateStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *stubRateStore) RateLimitKey(scope string) string {
	return "ratelimit:" + scope
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:        time.Minute,
			LoginEmailLimit:    2,
			LoginIPLimit:       100,
			RegisterWindow:     time.Minute,
			RegisterEmailLimit: 100,
			RegisterIPLimit:    100,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	hub, err := realtime.NewHub(realtime.HubParams{Logger: logg})
	if err != nil {
		t.Fatalf("build hub: %v", err)
	}
	return NewRouter(RouterParams{
		Config:          cfg,
		Logger:          logg,
		DB:              stubPinger{},
		Cache:           stubPinger{},
		RateLimits:      &stubRateStore{},
		SessionChecker:  stubSessionChecker{},
		AuthService:     stubAuthService{},
		WishlistService: stubWishlistService{},
		Hub:             hub,
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "router_tester",
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestHealthReadyChecksStores(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
}

func TestWishlistsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/wishlists/"},
		{http.MethodGet, "/api/v1/wishlists/public"},
		{http.MethodGet, "/api/v1/wishlists/" + uuid.NewString()},
		{http.MethodDelete, "/api/v1/wishlists/" + uuid.NewString()},
		{http.MethodGet, "/api/v1/auth/profile"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token got %d", route.method, route.path, resp.Code)
		}
	}
}

func TestWishlistsAcceptValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	token := buildToken(t, cfg)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/wishlists/"},
		{http.MethodGet, "/api/v1/wishlists/" + uuid.NewString()},
		{http.MethodDelete, "/api/v1/wishlists/" + uuid.NewString() + "/products/" + uuid.NewString()},
		{http.MethodPut, "/api/v1/wishlists/" + uuid.NewString() + "/collaborators/" + uuid.NewString()},
		{http.MethodDelete, "/api/v1/wishlists/" + uuid.NewString() + "/collaborators/" + uuid.NewString()},
		{http.MethodGet, "/api/v1/auth/profile"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200 with token got %d", route.method, route.path, resp.Code)
		}
	}
}

func TestCreateWishlistRoundTrip(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	body := `{"title":"Birthday ideas"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlists/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRegisterIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	body := `{"username":"newuser","email":"new@example.com","password":"Passw0rd"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for register got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLoginRateLimitEnforced(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	body := `{"email":"throttle@example.com","password":"Passw0rd"}`
	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding email limit got %d", last)
	}
}

func TestWebsocketEndpointRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for websocket without credentials got %d", resp.Code)
	}
}
