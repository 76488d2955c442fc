package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mcpanel/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	domain.UserRepository
	domain.TokenRepository
}

type Options struct {
	TokenTTL    time.Duration
	RememberTTL time.Duration
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

// Service owns accounts and bearer tokens.
type Service struct {
	repo        Repository
	issuer      *TokenIssuer
	tokenTTL    time.Duration
	rememberTTL time.Duration
	log         *slog.Logger

	hashCost int
	now      func() time.Time
}

func NewService(repo Repository, issuer *TokenIssuer, opts Options, log *slog.Logger) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = 30 * 24 * time.Hour
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:        repo,
		issuer:      issuer,
		tokenTTL:    opts.TokenTTL,
		rememberTTL: opts.RememberTTL,
		log:         log.With("component", "auth"),
		hashCost:    opts.HashCost,
		now:         time.Now,
	}
}

func (s *Service) Login(username, password string, remember bool) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrInvalid)
	}

	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(username, s.now()); err != nil {
		return "", err
	}

	s.log.Info("User logged in", "username", username)
	return s.issue(username, remember)
}

// Register creates an account and logs it in. The very first account is ADMIN.
func (s *Service) Register(username, password string, remember bool) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrInvalid)
	}

	count, err := s.repo.CountUsers()
	if err != nil {
		return "", err
	}

	level := domain.AccessUser
	if count == 0 {
		level = domain.AccessAdmin
	}

	hash, err := s.hash(password)
	if err != nil {
		return "", err
	}

	now := s.now()
	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		AccessLevel:  level,
		RegisteredAt: now,
		LastLogin:    now,
	}
	if err := s.repo.CreateUser(user); err != nil {
		return "", err
	}

	s.log.Info("User registered", "username", username, "access_level", level)
	return s.issue(username, remember)
}

func (s *Service) issue(username string, remember bool) (string, error) {
	now := s.now()
	ttl := s.tokenTTL
	if remember {
		ttl = s.rememberTTL
	}

	signed, err := s.issuer.Issue(username, now, now.Add(ttl))
	if err != nil {
		return "", err
	}

	token := &domain.AccessToken{
		Token:     signed,
		Username:  username,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.repo.SaveToken(token); err != nil {
		return "", fmt.Errorf("error saving token: %w", err)
	}
	return signed, nil
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password longer than 72 bytes", domain.ErrInvalid)
	}
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hashed), nil
}

func (s *Service) Logout(token string) error {
	return s.repo.DeleteToken(token)
}

// DeleteUser removes the account the token belongs to, along with all its tokens.
func (s *Service) DeleteUser(token string) error {
	user, err := s.userForToken(token)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(user.Username); err != nil {
		return err
	}
	s.log.Info("User deleted", "username", user.Username)
	return nil
}

func (s *Service) Profile(token string) (*domain.User, error) {
	return s.userForToken(token)
}

func (s *Service) UpdatePassword(token, password string) error {
	user, err := s.userForToken(token)
	if err != nil {
		return err
	}
	return s.UpdateUserPassword(nil, user.Username, password)
}

func (s *Service) UserByName(username string) (*domain.User, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	return user, nil
}

// UpdateAccessLevel changes another user's level. Callers cannot grant more
// than they hold themselves, nor touch users ranked above them.
func (s *Service) UpdateAccessLevel(caller *domain.User, username string, level domain.AccessLevel) error {
	if !level.Valid() {
		return fmt.Errorf("%w: unknown access level %d", domain.ErrInvalid, int(level))
	}
	if caller != nil && !caller.AccessLevel.Allows(level) {
		return fmt.Errorf("%s cannot grant %s: %w", caller.Username, level, domain.ErrForbidden)
	}

	if err := s.checkOutranks(caller, username); err != nil {
		return err
	}

	if err := s.repo.UpdateAccessLevel(username, level); err != nil {
		return err
	}
	s.log.Info("Access level updated", "username", username, "access_level", level)
	return nil
}

// checkOutranks fails unless caller (nil for the user themselves) is at least
// as privileged as username.
func (s *Service) checkOutranks(caller *domain.User, username string) error {
	target, err := s.UserByName(username)
	if err != nil {
		return err
	}
	if caller != nil && !caller.AccessLevel.Allows(target.AccessLevel) {
		return fmt.Errorf("%s cannot change %s: %w", caller.Username, username, domain.ErrForbidden)
	}
	return nil
}

// UpdateUserPassword sets username's password. A nil caller is the user
// changing their own password.
func (s *Service) UpdateUserPassword(caller *domain.User, username, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password cannot be empty", domain.ErrInvalid)
	}
	if err := s.checkOutranks(caller, username); err != nil {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(username, hash)
}

func (s *Service) ListUsers() ([]domain.User, error) {
	return s.repo.ListUsers()
}

// LookupToken returns the stored token or nil when it is unknown or forged.
func (s *Service) LookupToken(token string) (*domain.AccessToken, error) {
	if _, err := s.issuer.Verify(token); err != nil {
		s.log.Debug("Token rejected", "error", err)
		return nil, nil
	}
	return s.repo.GetToken(token)
}

func (s *Service) LookupUser(username string) (*domain.User, error) {
	return s.repo.GetUserByUsername(username)
}

func (s *Service) userForToken(token string) (*domain.User, error) {
	stored, err := s.repo.GetToken(token)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	return s.UserByName(stored.Username)
}

// RunJanitor purges expired tokens every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.repo.DeleteExpiredTokens(s.now())
			if err != nil {
				s.log.Error("Failed to purge expired tokens", "error", err)
				continue
			}
			if n > 0 {
				s.log.Debug("Purged expired tokens", "count", n)
			}
		}
	}
}
