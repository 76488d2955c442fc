package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/internal/version"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type User struct {
	Username     string `gorm:"primaryKey"`
	PasswordHash string
	AccessLevel  int
	RegisteredAt time.Time
	LastLogin    time.Time
}

type AccessToken struct {
	Token     string `gorm:"primaryKey"`
	Username  string `gorm:"index"`
	Remember  bool
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

type Server struct {
	Name             string `gorm:"primaryKey"`
	Type             string
	Path             string `gorm:"uniqueIndex"`
	MCVersion        string
	ModloaderVersion string
	RAM              int
	Autostart        bool
	Status           string
	StartedAt        *time.Time
	CreatedAt        time.Time
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(path string, log *slog.Logger) (*GormStore, error) {
	if log == nil {
		log = slog.Default()
	}
	newLogger := gormlogger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelError),
		gormlogger.Config{
			IgnoreRecordNotFoundError: true,
			LogLevel:                  gormlogger.Error,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&User{}, &AccessToken{}, &Server{})
	if err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toDomainUser(u *User) *domain.User {
	return &domain.User{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		AccessLevel:  domain.AccessLevel(u.AccessLevel),
		RegisteredAt: u.RegisteredAt,
		LastLogin:    u.LastLogin,
	}
}

func (s *GormStore) CreateUser(user *domain.User) error {
	var count int64
	if err := s.db.Model(&User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("user %q: %w", user.Username, domain.ErrAlreadyExists)
	}

	return s.db.Create(&User{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		AccessLevel:  int(user.AccessLevel),
		RegisteredAt: user.RegisteredAt,
		LastLogin:    user.LastLogin,
	}).Error
}

func (s *GormStore) GetUserByUsername(username string) (*domain.User, error) {
	var row User
	result := s.db.First(&row, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user: %w", result.Error)
	}
	return toDomainUser(&row), nil
}

func (s *GormStore) ListUsers() ([]domain.User, error) {
	var rows []User
	if err := s.db.Order("username").Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *toDomainUser(&rows[i]))
	}
	return users, nil
}

func (s *GormStore) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&User{}).Count(&count).Error
	return count, err
}

func (s *GormStore) DeleteUser(username string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&AccessToken{}, "username = ?", username).Error; err != nil {
			return err
		}
		result := tx.Delete(&User{}, "username = ?", username)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
		}
		return nil
	})
}

func (s *GormStore) updateUser(username string, column string, value interface{}) error {
	result := s.db.Model(&User{}).Where("username = ?", username).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	return nil
}

func (s *GormStore) UpdatePassword(username string, hashedPassword string) error {
	return s.updateUser(username, "password_hash", hashedPassword)
}

func (s *GormStore) UpdateAccessLevel(username string, level domain.AccessLevel) error {
	return s.updateUser(username, "access_level", int(level))
}

func (s *GormStore) TouchLastLogin(username string, at time.Time) error {
	return s.updateUser(username, "last_login", at)
}

func (s *GormStore) SaveToken(token *domain.AccessToken) error {
	return s.db.Create(&AccessToken{
		Token:     token.Token,
		Username:  token.Username,
		Remember:  token.Remember,
		CreatedAt: token.CreatedAt,
		ExpiresAt: token.ExpiresAt,
	}).Error
}

func (s *GormStore) GetToken(token string) (*domain.AccessToken, error) {
	var row AccessToken
	result := s.db.First(&row, "token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying token: %w", result.Error)
	}

	return &domain.AccessToken{
		Token:     row.Token,
		Username:  row.Username,
		Remember:  row.Remember,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *GormStore) DeleteToken(token string) error {
	result := s.db.Delete(&AccessToken{}, "token = ?", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteExpiredTokens(now time.Time) (int64, error) {
	result := s.db.Delete(&AccessToken{}, "expires_at <= ?", now)
	return result.RowsAffected, result.Error
}

func toDomainServer(row *Server) (*domain.ServerDescriptor, error) {
	mc, err := version.Parse(row.MCVersion)
	if err != nil {
		return nil, fmt.Errorf("server %q has corrupt mc_version: %w", row.Name, err)
	}

	srv := &domain.ServerDescriptor{
		Name:      row.Name,
		Type:      row.Type,
		Path:      row.Path,
		MCVersion: mc,
		RAM:       row.RAM,
		Autostart: row.Autostart,
		Status:    row.Status,
		StartedAt: row.StartedAt,
		CreatedAt: row.CreatedAt,
	}

	if row.ModloaderVersion != "" {
		ml, err := version.Parse(row.ModloaderVersion)
		if err != nil {
			return nil, fmt.Errorf("server %q has corrupt modloader_version: %w", row.Name, err)
		}
		srv.ModloaderVersion = &ml
	}

	return srv, nil
}

func (s *GormStore) SaveServer(srv *domain.ServerDescriptor) error {
	var count int64
	if err := s.db.Model(&Server{}).Where("name = ? OR path = ?", srv.Name, srv.Path).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("server %q: %w", srv.Name, domain.ErrAlreadyExists)
	}

	row := &Server{
		Name:      srv.Name,
		Type:      srv.Type,
		Path:      srv.Path,
		MCVersion: srv.MCVersion.String(),
		RAM:       srv.RAM,
		Autostart: srv.Autostart,
		Status:    srv.Status,
		StartedAt: srv.StartedAt,
		CreatedAt: srv.CreatedAt,
	}
	if srv.ModloaderVersion != nil {
		row.ModloaderVersion = srv.ModloaderVersion.String()
	}

	return s.db.Create(row).Error
}

func (s *GormStore) GetServerByName(name string) (*domain.ServerDescriptor, error) {
	var row Server
	result := s.db.First(&row, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying server: %w", result.Error)
	}
	return toDomainServer(&row)
}

func (s *GormStore) ListServers() ([]domain.ServerDescriptor, error) {
	var rows []Server
	if err := s.db.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	servers := make([]domain.ServerDescriptor, 0, len(rows))
	for i := range rows {
		srv, err := toDomainServer(&rows[i])
		if err != nil {
			return nil, err
		}
		servers = append(servers, *srv)
	}
	return servers, nil
}

func (s *GormStore) UpdateServerStatus(name string, status string, startedAt *time.Time) error {
	return s.db.Model(&Server{}).Where("name = ?", name).Updates(map[string]interface{}{
		"status":     status,
		"started_at": startedAt,
	}).Error
}

func (s *GormStore) RenameServer(oldName, newName string) error {
	var count int64
	if err := s.db.Model(&Server{}).Where("name = ?", newName).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("server %q: %w", newName, domain.ErrAlreadyExists)
	}

	result := s.db.Model(&Server{}).Where("name = ?", oldName).Update("name", newName)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("server %q: %w", oldName, domain.ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteServer(name string) error {
	result := s.db.Delete(&Server{}, "name = ?", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("server %q: %w", name, domain.ErrNotFound)
	}
	return nil
}
