package auth

import (
	"net/http"
	"time"
)

// AuthCookieName is the session cookie the gate and guard both read.
const AuthCookieName = "auth-token"

// CookieConfig holds cookie attribute settings
type CookieConfig struct {
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite http.SameSite
}

// SetAuthCookie sets the session token in an httpOnly cookie so browser
// navigation to protected pages carries it without client-side code.
func SetAuthCookie(w http.ResponseWriter, token string, maxAge time.Duration, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: config.SameSite,
	}
	http.SetCookie(w, cookie)
}

// ClearAuthCookie deletes the session cookie.
func ClearAuthCookie(w http.ResponseWriter, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: config.SameSite,
	}
	http.SetCookie(w, cookie)
}

// GetAuthCookie retrieves the session token from cookies.
func GetAuthCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
