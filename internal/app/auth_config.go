package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/sitecms/sitecms/internal/auth"
)

const defaultOTPTTL = 5 * time.Minute

// UserRealmConfig converts AuthConfig into the user realm parameters.
func (c AuthConfig) UserRealmConfig(production bool) auth.RealmConfig {
	return c.realmConfig(auth.RealmUser, c.User, "token", production)
}

// AdminRealmConfig converts AuthConfig into the admin realm parameters.
func (c AuthConfig) AdminRealmConfig(production bool) auth.RealmConfig {
	return c.realmConfig(auth.RealmAdmin, c.Admin, "adminToken", production)
}

func (c AuthConfig) realmConfig(name string, realm RealmSettings, defaultCookie string, production bool) auth.RealmConfig {
	ttl := realm.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	cookieName := strings.TrimSpace(realm.CookieName)
	if cookieName == "" {
		cookieName = defaultCookie
	}

	return auth.RealmConfig{
		Name:   name,
		Secret: realm.Secret,
		Issuer: c.Issuer,
		TTL:    ttl,
		Cookie: auth.CookiePolicy{
			Name:     cookieName,
			Path:     c.Cookie.Path,
			Domain:   c.Cookie.Domain,
			HTTPOnly: c.Cookie.HTTPOnly,
			Secure:   production,
			SameSite: parseSameSite(c.Cookie.SameSite),
		},
	}
}

// OTPTTL returns the configured code lifetime, defaulting to five minutes.
func (c AuthConfig) OTPTTL() time.Duration {
	if c.OTP.TTL <= 0 {
		return defaultOTPTTL
	}
	return c.OTP.TTL
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteNoneMode
	}
}
