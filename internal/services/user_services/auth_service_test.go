package user_services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iyunix/go-gptchat/internal/auth"
	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/testutil"
	"github.com/iyunix/go-gptchat/internal/repository/user"
)

func newService(t *testing.T) (*UserService, *auth.Manager) {
	t.Helper()
	tokens, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	repo := user.NewGormUserRepository(testutil.DB(t), testutil.NopLogger{})
	return NewUserService(repo, tokens, testutil.NopLogger{}), tokens
}

func TestSignUpAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newService(t)

	res, err := svc.SignUp(ctx, SignUpRequest{Email: "Alice@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if res.User.ID == "" || res.User.Name != "alice" || res.User.Email != "alice@example.com" {
		t.Fatalf("user = %+v", res.User)
	}
	if res.User.Password == "secret1" {
		t.Fatal("password stored in plaintext")
	}
	if sub, err := tokens.VerifyToken(ctx, res.Token); err != nil || sub != res.User.ID {
		t.Fatalf("signup token subject = %q, %v", sub, err)
	}

	login, err := svc.Login(ctx, "alice@example.com", "secret1")
	if err != nil || login.User.ID != res.User.ID {
		t.Fatalf("Login = %+v, %v", login, err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "wrong!!"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestSignUpValidationAndConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	cases := []struct {
		name string
		req  SignUpRequest
		want error
	}{
		{"missing password", SignUpRequest{Email: "a@b.c"}, domain.ErrValidation},
		{"missing email", SignUpRequest{Password: "secret1"}, domain.ErrValidation},
		{"short password", SignUpRequest{Email: "a@b.c", Password: "123"}, domain.ErrValidation},
		{"bad email", SignUpRequest{Email: "nope", Password: "secret1"}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SignUp(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := svc.SignUp(ctx, SignUpRequest{ID: "u1", Email: "a@b.c", Password: "secret1", Name: "Ann"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.SignUp(ctx, SignUpRequest{ID: "u1", Email: "other@b.c", Password: "secret1"})
	if !errors.Is(err, domain.ErrConflict) || err.Error() != "User already exists" {
		t.Fatalf("duplicate id: %v", err)
	}
	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "A@B.C", Password: "secret1"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate email: %v", err)
	}
}

func TestSyncGoogleUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	u, isNew, err := svc.SyncGoogleUser(ctx, SyncRequest{ID: "g-1", Email: "bob@example.com"})
	if err != nil || !isNew || u.Name != "bob" {
		t.Fatalf("first sync = %+v, %v, %v", u, isNew, err)
	}
	again, isNew, err := svc.SyncGoogleUser(ctx, SyncRequest{ID: "g-1", Email: "bob@example.com", Name: "Robert"})
	if err != nil || isNew || again.ID != "g-1" || again.Name != "bob" {
		t.Fatalf("second sync = %+v, %v, %v", again, isNew, err)
	}
	if _, _, err := svc.SyncGoogleUser(ctx, SyncRequest{Email: "x@y.z"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// OAuth accounts have no password.
	if _, err := svc.Login(ctx, "bob@example.com", "anything"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("password login for OAuth account should fail, got %v", err)
	}
}

type failingIssuer struct{}

func (failingIssuer) IssueToken(string) (string, error) {
	return "", errors.New("signing unavailable")
}

func TestSignUpTokenFailureCreatesNoAccount(t *testing.T) {
	ctx := context.Background()
	repo := user.NewGormUserRepository(testutil.DB(t), testutil.NopLogger{})
	svc := NewUserService(repo, failingIssuer{}, testutil.NopLogger{})

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "carol@example.com", Password: "secret1"}); err == nil {
		t.Fatal("expected token error")
	}
	if _, err := repo.FindByEmail(ctx, "carol@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("account must not exist after failed signup, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	res, err := svc.SignUp(ctx, SignUpRequest{Email: "dan@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	prompt := "Always answer in haiku."
	u, err := svc.UpdateProfile(ctx, res.User.ID, domain.UserPatch{SystemPrompt: &prompt})
	if err != nil || u.SystemPrompt != prompt || u.Name != "dan" {
		t.Fatalf("UpdateProfile = %+v, %v", u, err)
	}
	stored, _ := svc.GetUser(ctx, res.User.ID)
	if stored.SystemPrompt != prompt {
		t.Fatalf("stored prompt = %q", stored.SystemPrompt)
	}

	empty := ""
	if _, err := svc.UpdateProfile(ctx, res.User.ID, domain.UserPatch{Name: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank name: %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "ghost", domain.UserPatch{SystemPrompt: &prompt}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}
