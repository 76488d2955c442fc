package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccessLevel is a global permission tier. Levels are totally ordered.
type AccessLevel int

const (
	AccessUser AccessLevel = iota
	AccessOperator
	AccessAdmin
)

var accessLevelNames = map[AccessLevel]string{
	AccessUser:     "USER",
	AccessOperator: "OPERATOR",
	AccessAdmin:    "ADMIN",
}

func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("AccessLevel(%d)", int(l))
}

// Allows reports whether a holder of l may use a route requiring required.
func (l AccessLevel) Allows(required AccessLevel) bool {
	return l >= required
}

func (l AccessLevel) Valid() bool {
	_, ok := accessLevelNames[l]
	return ok
}

func ParseAccessLevel(s string) (AccessLevel, error) {
	for level, name := range accessLevelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown access level %q", ErrInvalid, s)
}

func (l AccessLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *AccessLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseAccessLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

type User struct {
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	AccessLevel  AccessLevel `json:"access_level"`
	RegisteredAt time.Time   `json:"registered_at"`
	LastLogin    time.Time   `json:"last_login"`
}

// AccessToken binds an opaque bearer credential to exactly one user.
type AccessToken struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	Remember  bool      `json:"remember"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t *AccessToken) IsValid(now time.Time) bool {
	return t != nil && now.Before(t.ExpiresAt)
}
