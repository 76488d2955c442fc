package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/internal/logger"
	"mcpanel/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *storage.GormStore) {
	t.Helper()
	store, err := storage.NewGormStore(filepath.Join(t.TempDir(), "auth.db"), logger.Discard())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := NewService(store, NewTokenIssuer("test-secret"), Options{HashCost: bcrypt.MinCost}, logger.Discard())
	return svc, store
}

func TestFirstRegisteredUserIsAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register("alice", "pw", false); err != nil {
		t.Fatalf("Register alice: %v", err)
	}
	if _, err := svc.Register("bob", "pw", false); err != nil {
		t.Fatalf("Register bob: %v", err)
	}

	alice, _ := svc.UserByName("alice")
	bob, _ := svc.UserByName("bob")
	if alice.AccessLevel != domain.AccessAdmin {
		t.Errorf("Expected alice to be ADMIN, got %s", alice.AccessLevel)
	}
	if bob.AccessLevel != domain.AccessUser {
		t.Errorf("Expected bob to be USER, got %s", bob.AccessLevel)
	}

	if _, err := svc.Register("bob", "other", false); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Register("alice", "pw", false)

	token, err := svc.Login("alice", "pw", false)
	if err != nil || token == "" {
		t.Fatalf("Login: %q, %v", token, err)
	}

	stored, err := svc.LookupToken(token)
	if err != nil || stored == nil {
		t.Fatalf("LookupToken: %v, %v", stored, err)
	}
	if stored.Username != "alice" || !stored.IsValid(time.Now()) {
		t.Errorf("Unexpected token row: %+v", stored)
	}

	if _, err := svc.Login("alice", "wrong", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login("nobody", "pw", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Login("", "", false); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for empty credentials, got %v", err)
	}
}

func TestRememberExtendsLifetime(t *testing.T) {
	svc, store := newTestService(t)

	short, _ := svc.Register("alice", "pw", false)
	long, _ := svc.Login("alice", "pw", true)

	s, _ := store.GetToken(short)
	l, _ := store.GetToken(long)
	if s == nil || l == nil {
		t.Fatal("Expected both tokens to be stored")
	}
	if !l.Remember || !l.ExpiresAt.After(s.ExpiresAt.Add(24*time.Hour)) {
		t.Errorf("Remembered token should outlive a normal one: %v vs %v", l.ExpiresAt, s.ExpiresAt)
	}
}

func TestLookupTokenRejectsForgedAndExpired(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Register("alice", "pw", false)

	if tok, err := svc.LookupToken("not-a-token"); err != nil || tok != nil {
		t.Errorf("Expected (nil, nil) for garbage token, got %v, %v", tok, err)
	}

	other := NewTokenIssuer("another-secret")
	forged, _ := other.Issue("alice", time.Now(), time.Now().Add(time.Hour))
	if tok, _ := svc.LookupToken(forged); tok != nil {
		t.Error("Token signed with another secret must be rejected")
	}

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.Login("alice", "pw", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok, _ := svc.LookupToken(expired); tok != nil {
		t.Error("Expired token must be rejected")
	}
}

func TestLogoutAndDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	token, _ := svc.Register("alice", "pw", false)

	if err := svc.Logout(token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(token); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Second logout should report ErrNotFound, got %v", err)
	}

	token, _ = svc.Login("alice", "pw", false)
	if err := svc.DeleteUser(token); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.UserByName("alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if tok, _ := svc.LookupToken(token); tok != nil {
		t.Error("Tokens should be deleted with the user")
	}
}

func TestUpdatePasswords(t *testing.T) {
	svc, _ := newTestService(t)
	token, _ := svc.Register("alice", "pw", false)
	svc.Register("bob", "pw", false)

	if err := svc.UpdatePassword(token, "new"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := svc.Login("alice", "new", false); err != nil {
		t.Errorf("Login with new password failed: %v", err)
	}

	if err := svc.UpdateUserPassword(nil, "bob", ""); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for empty password, got %v", err)
	}
	if err := svc.UpdateUserPassword(nil, "carol", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestUpdateAccessLevelCannotExceedCaller(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Register("admin", "pw", false)
	svc.Register("op", "pw", false)
	svc.Register("user", "pw", false)

	admin, _ := svc.UserByName("admin")
	if err := svc.UpdateAccessLevel(admin, "op", domain.AccessOperator); err != nil {
		t.Fatalf("UpdateAccessLevel: %v", err)
	}

	op, _ := svc.UserByName("op")
	if err := svc.UpdateAccessLevel(op, "user", domain.AccessAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if err := svc.UpdateAccessLevel(op, "user", domain.AccessOperator); err != nil {
		t.Errorf("Operator should be able to grant OPERATOR: %v", err)
	}
	if err := svc.UpdateAccessLevel(admin, "user", domain.AccessLevel(9)); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for unknown level, got %v", err)
	}
}

func TestOperatorCannotDemoteAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Register("admin", "pw", false)
	svc.Register("op", "pw", false)

	admin, _ := svc.UserByName("admin")
	svc.UpdateAccessLevel(admin, "op", domain.AccessOperator)
	op, _ := svc.UserByName("op")

	if err := svc.UpdateAccessLevel(op, "admin", domain.AccessUser); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if admin, _ = svc.UserByName("admin"); admin.AccessLevel != domain.AccessAdmin {
		t.Errorf("admin should still be ADMIN, got %s", admin.AccessLevel)
	}
	if err := svc.UpdateUserPassword(op, "admin", "taken"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for password reset, got %v", err)
	}
	if _, err := svc.Login("admin", "pw", false); err != nil {
		t.Errorf("admin password should be unchanged: %v", err)
	}
	if err := svc.UpdateAccessLevel(op, "ghost", domain.AccessUser); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestPasswordTooLongIsInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	long := strings.Repeat("p", 80)

	if _, err := svc.Register("alice", long, false); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("Register: expected ErrInvalid, got %v", err)
	}
	svc.Register("bob", "pw", false)
	if err := svc.UpdateUserPassword(nil, "bob", long); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("UpdateUserPassword: expected ErrInvalid, got %v", err)
	}
}

func TestLoginTrimsUsernameLikeRegister(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Register("alice ", "pw", false); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, name := range []string{"alice ", "alice", " alice"} {
		if _, err := svc.Login(name, "pw", false); err != nil {
			t.Errorf("Login(%q): %v", name, err)
		}
	}
}

func TestJanitorPurgesExpiredTokens(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now()
	store.SaveToken(&domain.AccessToken{Token: "stale", Username: "x", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tok, _ := store.GetToken("stale"); tok == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if tok, _ := store.GetToken("stale"); tok != nil {
		t.Error("Janitor did not purge the expired token")
	}
}
