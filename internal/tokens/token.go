package tokens

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sleeplog/internal/credentials"
)

// Lifetime is how long a session token stays valid.
const Lifetime = 30 * 24 * time.Hour

type ID string

func NewID() ID {
	return ID(gonanoid.Must())
}

type Token struct {
	ID            ID             `json:"id"`
	CredentialsID credentials.ID `json:"credentials_id"`
	Expires       time.Time      `json:"expires"`
}

func New(credentialsID credentials.ID, now time.Time) *Token {
	return &Token{
		ID:            NewID(),
		CredentialsID: credentialsID,
		Expires:       now.Add(Lifetime),
	}
}

func (t Token) Expired(now time.Time) bool {
	return !t.Expires.After(now)
}
