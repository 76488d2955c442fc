package domain

import "time"

type UserRepository interface {
	CreateUser(user *User) error
	GetUserByUsername(username string) (*User, error)
	ListUsers() ([]User, error)
	CountUsers() (int64, error)
	DeleteUser(username string) error
	UpdatePassword(username string, hashedPassword string) error
	UpdateAccessLevel(username string, level AccessLevel) error
	TouchLastLogin(username string, at time.Time) error
}

type TokenRepository interface {
	SaveToken(token *AccessToken) error
	GetToken(token string) (*AccessToken, error)
	DeleteToken(token string) error
	DeleteExpiredTokens(now time.Time) (int64, error)
}

type ServerRepository interface {
	SaveServer(srv *ServerDescriptor) error
	GetServerByName(name string) (*ServerDescriptor, error)
	ListServers() ([]ServerDescriptor, error)
	UpdateServerStatus(name string, status string, startedAt *time.Time) error
	RenameServer(oldName, newName string) error
	DeleteServer(name string) error
}

type Repository interface {
	UserRepository
	TokenRepository
	ServerRepository
}
