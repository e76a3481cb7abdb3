package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/outloud-backend/internal/platform/apierr"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	svc, err := NewAuthService(users, "test-secret", testLogger(t))
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc, users
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("signup issued no token")
	}
	if res.User.Username != "alice" || res.User.IsGuest {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if res.User.PasswordHash == nil || *res.User.PasswordHash == "hunter22" {
		t.Fatalf("password must be stored hashed")
	}

	login, err := svc.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatalf("login returned a different user")
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !apierr.HasCode(err, "invalid_credentials") {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "hunter22"); !apierr.HasCode(err, "invalid_credentials") {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "ab", "hunter22"); !apierr.HasCode(err, "invalid_username") {
		t.Fatalf("short username: got %v", err)
	}
	if _, err := svc.Signup(ctx, strings.Repeat("a", 31), "hunter22"); !apierr.HasCode(err, "invalid_username") {
		t.Fatalf("long username: got %v", err)
	}
	if _, err := svc.Signup(ctx, "alice", "short"); !apierr.HasCode(err, "invalid_password") {
		t.Fatalf("short password: got %v", err)
	}

	if _, err := svc.Signup(ctx, "alice", "hunter22"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "alice", "hunter23"); !apierr.HasCode(err, "username_taken") {
		t.Fatalf("duplicate username: got %v", err)
	}
}

func TestCreateGuest(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.CreateGuest(context.Background())
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if !res.User.IsGuest {
		t.Fatalf("guest flag not set")
	}
	if !strings.HasPrefix(res.User.Username, "guest_") {
		t.Fatalf("guest username = %q", res.User.Username)
	}
	if res.User.PasswordHash != nil {
		t.Fatalf("guests must not carry a password hash")
	}

	if _, err := svc.Login(context.Background(), res.User.Username, "anything"); !apierr.HasCode(err, "guest_login_not_allowed") {
		t.Fatalf("guest login: got %v", err)
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Signup(context.Background(), "alice", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	data, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if data.UserID != res.User.ID || data.Username != "alice" || data.IsGuest {
		t.Fatalf("unexpected token identity: %+v", data)
	}

	if _, err := svc.ParseToken("not-a-token"); !apierr.HasCode(err, "unauthorized") {
		t.Fatalf("garbage token: got %v", err)
	}

	other, err := NewAuthService(newFakeUserRepo(), "other-secret", testLogger(t))
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	if _, err := other.ParseToken(res.Token); !apierr.HasCode(err, "unauthorized") {
		t.Fatalf("token signed with a different secret: got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Signup(context.Background(), "alice", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	user, err := svc.GetUser(context.Background(), res.User.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("username = %q", user.Username)
	}

	if _, err := svc.GetUser(context.Background(), uuid.New()); !apierr.HasCode(err, "user_not_found") {
		t.Fatalf("unknown user: got %v", err)
	}
}
