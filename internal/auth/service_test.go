package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wishlane/wishlane-backend/internal/users"
	pkgAuth "github.com/wishlane/wishlane-backend/pkg/auth"
	"github.com/wishlane/wishlane-backend/pkg/config"
	"github.com/wishlane/wishlane-backend/pkg/db/models"
	pkgerrors "github.com/wishlane/wishlane-backend/pkg/errors"
	"github.com/wishlane/wishlane-backend/pkg/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	byEmail    map[string]*models.User
	byUsername map[string]*models.User
	created    []users.CreateUserDTO
	lastLogin  *time.Time
}

func newStubUserRepo(existing ...*models.User) *stubUserRepo {
	r := &stubUserRepo{
		byEmail:    map[string]*models.User{},
		byUsername: map[string]*models.User{},
	}
	for _, u := range existing {
		r.byEmail[u.Email] = u
		r.byUsername[u.Username] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	r.created = append(r.created, dto)
	u := &models.User{
		ID:           uuid.New(),
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		AvatarURL:    dto.AvatarURL,
	}
	r.byEmail[u.Email] = u
	r.byUsername[u.Username] = u
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	r.lastLogin = &at
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (m *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	m.generated = append(m.generated, accessID)
	return "refresh-" + accessID, nil
}

func (m *stubSessionManager) Rotate(_ context.Context, oldAccessID, _ string) (string, string, error) {
	if m.rotateErr != nil {
		return "", "", m.rotateErr
	}
	return "rotated-" + oldAccessID, "refresh-rotated", nil
}

func (m *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "wishlane",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 120,
	}
}

func buildTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", want, err)
	}
	if typed.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, typed.Code(), err)
	}
}

func TestServiceRegisterIssuesTokens(t *testing.T) {
	repo := newStubUserRepo()
	sessions := &stubSessionManager{}
	svc := buildTestService(t, repo, sessions)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice_01",
		Email:    "Alice@Example.com",
		Password: "Sekret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User == nil || resp.User.Email != "alice@example.com" {
		t.Fatalf("email should be normalized, got %+v", resp.User)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected a full token pair")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Username != "alice_01" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if len(sessions.generated) != 1 || sessions.generated[0] != claims.ID {
		t.Fatalf("session should be keyed by the token jti")
	}
	if len(repo.created) != 1 || repo.created[0].PasswordHash == "Sekret1" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestServiceRegisterValidation(t *testing.T) {
	svc := buildTestService(t, newStubUserRepo(), &stubSessionManager{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"short username", RegisterRequest{Username: "ab", Email: "a@b.com", Password: "Sekret1"}},
		{"bad username chars", RegisterRequest{Username: "not ok!", Email: "a@b.com", Password: "Sekret1"}},
		{"short password", RegisterRequest{Username: "valid_name", Email: "a@b.com", Password: "Ab1"}},
		{"no uppercase", RegisterRequest{Username: "valid_name", Email: "a@b.com", Password: "sekret1"}},
		{"no digit", RegisterRequest{Username: "valid_name", Email: "a@b.com", Password: "Sekretos"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			assertCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestServiceRegisterConflicts(t *testing.T) {
	existing := &models.User{
		ID:           uuid.New(),
		Username:     "taken",
		Email:        "taken@example.com",
		PasswordHash: "x",
	}
	svc := buildTestService(t, newStubUserRepo(existing), &stubSessionManager{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "fresh_name", Email: "taken@example.com", Password: "Sekret1"})
	assertCode(t, err, pkgerrors.CodeConflict)

	_, err = svc.Register(ctx, RegisterRequest{Username: "taken", Email: "fresh@example.com", Password: "Sekret1"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceLoginUniformFailures(t *testing.T) {
	password := "Sekret1"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: mustHashPassword(t, password),
	}
	svc := buildTestService(t, newStubUserRepo(user), &stubSessionManager{})
	ctx := context.Background()

	_, unknownErr := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: password})
	assertCode(t, unknownErr, pkgerrors.CodeUnauthorized)

	_, wrongErr := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "Wrong1pass"})
	assertCode(t, wrongErr, pkgerrors.CodeUnauthorized)

	// Both failures read identically to the caller.
	if pkgerrors.As(unknownErr).Message() != pkgerrors.As(wrongErr).Message() {
		t.Fatalf("unknown email and wrong password must be indistinguishable")
	}
}

func TestServiceLoginSuccessRecordsLogin(t *testing.T) {
	password := "Sekret1"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: mustHashPassword(t, password),
	}
	repo := newStubUserRepo(user)
	svc := buildTestService(t, repo, &stubSessionManager{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Bob@Example.com", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}
	if repo.lastLogin == nil {
		t.Fatalf("login should record last_login_at")
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("response should carry last_login_at")
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com"}
	sessions := &stubSessionManager{}
	svc := buildTestService(t, newStubUserRepo(user), sessions)
	cfg := testJWTConfig()

	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		JTI:      "old-jti",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "refresh-old-jti",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken != "refresh-rotated" {
		t.Fatalf("expected rotated refresh token, got %s", pair.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse new token: %v", err)
	}
	if claims.UserID != user.ID || claims.ID != "rotated-old-jti" {
		t.Fatalf("new token should carry the rotated jti, got %+v", claims)
	}
}

func TestServiceLogoutRevokes(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := buildTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected session revocation, got %+v", sessions.revoked)
	}

	err := svc.Logout(context.Background(), "   ")
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestServiceProfile(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", PasswordHash: "secret-hash"}
	svc := buildTestService(t, newStubUserRepo(user), &stubSessionManager{})

	dto, err := svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if dto.Email != user.Email || dto.Username != user.Username {
		t.Fatalf("unexpected profile: %+v", dto)
	}

	_, err = svc.Profile(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
