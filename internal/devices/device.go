package devices

import (
	"net/http"
	"time"

	"github.com/sleeplog/internal/keys"
	"github.com/sleeplog/internal/tokens"
)

const cookieName = "session"

// Device is a browser holding a session cookie.
type Device struct {
	TokenID tokens.ID
}

// FromCookies decrypts the session cookie. Cookies that were not produced
// with key are ignored.
func FromCookies(key *keys.Key, cookies []*http.Cookie) (*Device, bool) {
	for _, cookie := range cookies {
		if cookie.Name != cookieName {
			continue
		}
		tokenID, err := key.DecryptString(cookie.Value)
		if err != nil || tokenID == "" {
			return nil, false
		}
		return &Device{TokenID: tokens.ID(tokenID)}, true
	}
	return nil, false
}

func (d Device) ToCookies(key *keys.Key, expires time.Time, secure bool) ([]*http.Cookie, error) {
	value, err := key.EncryptString(string(d.TokenID))
	if err != nil {
		return nil, err
	}
	return []*http.Cookie{
		{
			Name:     cookieName,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  expires,
			Secure:   secure,
		},
	}, nil
}

// ClearCookies returns cookies that remove the session from the browser.
func ClearCookies(secure bool) []*http.Cookie {
	return []*http.Cookie{
		{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Secure:   secure,
		},
	}
}
