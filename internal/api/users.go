package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mcpanel/internal/domain"
)

const profileTimeLayout = "02/01/2006, 15:04:05"

type userProfile struct {
	Username     string `json:"username"`
	AccessLevel  string `json:"access_level"`
	RegisteredAt string `json:"registered_at"`
	LastLogin    string `json:"last_login"`
}

func toProfile(u *domain.User) userProfile {
	return userProfile{
		Username:     u.Username,
		AccessLevel:  u.AccessLevel.String(),
		RegisteredAt: u.RegisteredAt.Format(profileTimeLayout),
		LastLogin:    u.LastLogin.Format(profileTimeLayout),
	}
}

// parseBool accepts a JSON boolean or one of yes/true/t/1/no/false/f/0.
func parseBool(v any, fallback bool) (bool, error) {
	switch b := v.(type) {
	case nil:
		return fallback, nil
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "yes", "true", "t", "1":
			return true, nil
		case "no", "false", "f", "0":
			return false, nil
		}
	case json.Number:
		switch b.String() {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: invalid boolean %v", domain.ErrInvalid, v)
}

// credentials extracts username, password and remember from a login or register body.
func credentials(r *http.Request) (string, string, bool, error) {
	data, err := decodeBody(r)
	if err != nil {
		return "", "", false, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	username, ok1 := stringField(data, "username")
	password, ok2 := stringField(data, "password")
	if !ok1 || !ok2 {
		return "", "", false, fmt.Errorf("%w: username and password must be strings", domain.ErrInvalid)
	}
	remember, err := parseBool(data["remember"], false)
	if err != nil {
		return "", "", false, err
	}
	return username, password, remember, nil
}

func (api *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, remember, err := credentials(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	token, err := api.accounts.Login(username, password, remember)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (api *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, remember, err := credentials(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	token, err := api.accounts.Register(username, password, remember)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (api *Server) handleLogout(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	if err := api.accounts.Logout(auth.Token); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

func (api *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	if err := api.accounts.DeleteUser(auth.Token); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted")
}

func (api *Server) handleGetUser(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	user, err := api.accounts.Profile(auth.Token)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(user))
}

func passwordField(r *http.Request) (string, error) {
	data, err := decodeBody(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	password, ok := stringField(data, "password")
	if !ok || password == "" {
		return "", fmt.Errorf("%w: password must be a non-empty string", domain.ErrInvalid)
	}
	return password, nil
}

func (api *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	password, err := passwordField(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.accounts.UpdatePassword(auth.Token, password); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User updated")
}

func (api *Server) handleGetUserByName(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	user, err := api.accounts.UserByName(r.PathValue("username"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(user))
}

func (api *Server) handleUpdateGlobalAccess(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	data, err := decodeBody(r)
	if err != nil {
		api.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalid, err))
		return
	}

	var level domain.AccessLevel
	switch v := data["access_level"].(type) {
	case string:
		level, err = domain.ParseAccessLevel(v)
	case json.Number:
		var n int64
		n, err = v.Int64()
		level = domain.AccessLevel(n)
		if err == nil && !level.Valid() {
			err = fmt.Errorf("%w: unknown access level %d", domain.ErrInvalid, n)
		}
	default:
		err = fmt.Errorf("%w: access_level is required", domain.ErrInvalid)
	}
	if err != nil {
		api.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalid, err))
		return
	}

	if err := api.accounts.UpdateAccessLevel(auth.User, r.PathValue("username"), level); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User updated")
}

func (api *Server) handleUpdateUserPassword(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	password, err := passwordField(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.accounts.UpdateUserPassword(auth.User, r.PathValue("username"), password); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User updated")
}

func (api *Server) handleListUsers(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	users, err := api.accounts.ListUsers()
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	profiles := make([]userProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, toProfile(&users[i]))
	}
	writeJSON(w, http.StatusOK, profiles)
}
