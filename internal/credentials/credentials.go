package credentials

import (
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidLoginOrPassword = errors.New("invalid login or password")
	ErrEmptyLoginOrPassword   = errors.New("login and password are required")
)

type ID string

func NewID() ID {
	return ID(gonanoid.Must())
}

type Credentials struct {
	ID           ID     `json:"id"`
	Login        string `json:"login"`
	PasswordHash []byte `json:"password_hash"`
}

// New hashes password and returns credentials with a fresh id. Logins are
// compared case insensitively.
func New(login, password string) (*Credentials, error) {
	login = NormalizeLogin(login)
	if login == "" || password == "" {
		return nil, ErrEmptyLoginOrPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &Credentials{
		ID:           NewID(),
		Login:        login,
		PasswordHash: hash,
	}, nil
}

func (c Credentials) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)); err != nil {
		return ErrInvalidLoginOrPassword
	}
	return nil
}

func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
