package calendars

import "github.com/sleeplog/internal/credentials"

type Calendar struct {
	ID            string         `json:"id"`
	CredentialsID credentials.ID `json:"credentials_id"`
}
