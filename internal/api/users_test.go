package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"mcpanel/internal/domain"
)

func TestRegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(http.MethodPost, "/api/register", "", map[string]any{"username": "alice", "password": "pw"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from register, got %d", rec.Code)
	}
	if decode(t, rec)["token"] == "" {
		t.Fatal("Expected a token from register")
	}

	expect(t, env.do(http.MethodPost, "/api/login", "", map[string]any{"username": "alice", "password": "wrong"}), http.StatusBadRequest, "Bad Request")

	rec = env.do(http.MethodPost, "/api/login", "", map[string]any{"username": "alice", "password": "pw", "remember": "yes"})
	expect(t, rec, http.StatusOK, "")
	token, _ := decode(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("Expected a token from login")
	}

	expect(t, env.do(http.MethodPost, "/api/logout", token, nil), http.StatusOK, "Logged out")
	expect(t, env.do(http.MethodPost, "/api/logout", token, nil), http.StatusUnauthorized, "Invalid token")
}

func TestRegisterRejectsBadBodies(t *testing.T) {
	env := newTestEnv(t, Options{})

	expect(t, env.do(http.MethodPost, "/api/register", "", `not json`), http.StatusBadRequest, "Bad Request")
	expect(t, env.do(http.MethodPost, "/api/register", "", map[string]any{"username": "alice"}), http.StatusBadRequest, "Bad Request")
	expect(t, env.do(http.MethodPost, "/api/register", "", map[string]any{"username": "alice", "password": "pw", "remember": "sometimes"}), http.StatusBadRequest, "Bad Request")

	env.do(http.MethodPost, "/api/register", "", map[string]any{"username": "alice", "password": "pw"})
	expect(t, env.do(http.MethodPost, "/api/register", "", map[string]any{"username": "alice", "password": "pw"}), http.StatusBadRequest, "Bad Request")
}

func TestProfileFormat(t *testing.T) {
	env := newTestEnv(t, Options{})
	token, _ := env.accounts.Register("alice", "pw", false)

	rec := env.do(http.MethodGet, "/api/user", token, nil)
	expect(t, rec, http.StatusOK, "")
	body := decode(t, rec)

	if body["username"] != "alice" || body["access_level"] != "ADMIN" {
		t.Errorf("Unexpected profile %v", body)
	}
	if _, err := time.Parse(profileTimeLayout, body["registered_at"].(string)); err != nil {
		t.Errorf("registered_at %v does not match layout: %v", body["registered_at"], err)
	}
	if _, ok := body["password_hash"]; ok {
		t.Error("Profile must not expose the password hash")
	}
}

func TestUpdateOwnPassword(t *testing.T) {
	env := newTestEnv(t, Options{})
	token, _ := env.accounts.Register("alice", "old", false)

	expect(t, env.do(http.MethodPost, "/api/user/update_password", token, map[string]any{"password": ""}), http.StatusBadRequest, "Bad Request")
	expect(t, env.do(http.MethodPost, "/api/user/update_password", token, map[string]any{"password": "new"}), http.StatusOK, "User updated")

	expect(t, env.do(http.MethodPost, "/api/login", "", map[string]any{"username": "alice", "password": "new"}), http.StatusOK, "")
}

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t, Options{})
	operator := env.userWithLevel(t, "olga", domain.AccessOperator)
	admin := env.userWithLevel(t, "root", domain.AccessAdmin)
	env.userWithLevel(t, "bob", domain.AccessUser)

	expect(t, env.do(http.MethodGet, "/api/user/ghost", operator, nil), http.StatusNotFound, "Not Found")

	rec := env.do(http.MethodGet, "/api/user/bob", operator, nil)
	expect(t, rec, http.StatusOK, "")
	if decode(t, rec)["access_level"] != "USER" {
		t.Error("Expected bob to be USER")
	}

	expect(t, env.do(http.MethodPost, "/api/user/bob/global_access", operator, map[string]any{"access_level": "ADMIN"}), http.StatusForbidden, "Forbidden")
	expect(t, env.do(http.MethodPost, "/api/user/bob/global_access", operator, map[string]any{"access_level": "OPERATOR"}), http.StatusOK, "User updated")
	expect(t, env.do(http.MethodPost, "/api/user/bob/global_access", admin, map[string]any{"access_level": 2}), http.StatusOK, "User updated")
	expect(t, env.do(http.MethodPost, "/api/user/bob/global_access", admin, map[string]any{"access_level": "GOD"}), http.StatusBadRequest, "Bad Request")
	expect(t, env.do(http.MethodPost, "/api/user/bob/global_access", admin, map[string]any{"access_level": 9}), http.StatusBadRequest, "Bad Request")

	expect(t, env.do(http.MethodPost, "/api/user/bob/password", operator, map[string]any{"password": "reset"}), http.StatusForbidden, "Forbidden")
	expect(t, env.do(http.MethodPost, "/api/user/bob/password", admin, map[string]any{"password": "reset"}), http.StatusOK, "User updated")
	expect(t, env.do(http.MethodPost, "/api/login", "", map[string]any{"username": "bob", "password": "reset"}), http.StatusOK, "")

	expect(t, env.do(http.MethodPost, "/api/user/root/global_access", operator, map[string]any{"access_level": "USER"}), http.StatusForbidden, "Forbidden")
	rec = env.do(http.MethodGet, "/api/user/root", operator, nil)
	if decode(t, rec)["access_level"] != "ADMIN" {
		t.Error("An operator must not be able to demote an admin")
	}

	rec = env.do(http.MethodGet, "/api/users", operator, nil)
	expect(t, rec, http.StatusOK, "")
	if body := rec.Body.String(); len(body) == 0 || body[0] != '[' {
		t.Errorf("Expected a JSON array of users, got %s", body)
	}
}

func TestOverlongPasswordIsBadRequest(t *testing.T) {
	env := newTestEnv(t, Options{})
	long := strings.Repeat("x", 80)

	expect(t, env.do(http.MethodPost, "/api/register", "", map[string]any{"username": "alice", "password": long}), http.StatusBadRequest, "Bad Request")

	token := env.userWithLevel(t, "bob", domain.AccessUser)
	expect(t, env.do(http.MethodPost, "/api/user/update_password", token, map[string]any{"password": long}), http.StatusBadRequest, "Bad Request")
}
