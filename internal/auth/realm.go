package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is the session lifetime used when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// Realm names.
const (
	RealmUser  = "user"
	RealmAdmin = "admin"
)

var (
	// ErrSessionInvalid covers malformed tokens, bad signatures and tokens minted for another realm.
	ErrSessionInvalid = errors.New("session: invalid token")
	// ErrSessionExpired is returned once the token's expiry has passed.
	ErrSessionExpired = errors.New("session: token expired")
	// ErrNoToken is returned when a request carries neither cookie nor bearer token.
	ErrNoToken = errors.New("session: no token presented")
)

// CookiePolicy describes how the session cookie is written.
type CookiePolicy struct {
	Name     string
	Path     string
	Domain   string
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// RealmConfig bundles the configuration required to build a Realm.
type RealmConfig struct {
	Name   string
	Secret string
	Issuer string
	TTL    time.Duration
	Cookie CookiePolicy
	Clock  func() time.Time
}

// Identity is the subject a session is issued for.
type Identity struct {
	SubjectID string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// Claims represents the custom claims embedded in session tokens.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Identity returns the subject encoded in the claims.
func (c *Claims) Identity() Identity {
	return Identity{SubjectID: c.Subject, Email: c.Email, Name: c.Name}
}

// Session is an issued token together with its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Realm issues and validates session tokens for one authentication domain.
// Tokens carry the realm name as audience, so a token minted by one realm never
// validates in another even if secrets were ever shared.
type Realm struct {
	name   string
	secret []byte
	issuer string
	ttl    time.Duration
	cookie CookiePolicy
	now    func() time.Time
}

// NewRealm constructs a Realm from its configuration.
func NewRealm(cfg RealmConfig) (*Realm, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, errors.New("realm: name must be provided")
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("realm %s: secret must be provided", name)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	cookie := cfg.Cookie
	if cookie.Name == "" {
		cookie.Name = name + "_session"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if cookie.SameSite == 0 {
		cookie.SameSite = http.SameSiteNoneMode
	}

	return &Realm{
		name:   name,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		cookie: cookie,
		now:    now,
	}, nil
}

// Name returns the realm name.
func (r *Realm) Name() string { return r.name }

// CookieName returns the name of the realm's session cookie.
func (r *Realm) CookieName() string { return r.cookie.Name }

// Issue signs a token for the identity.
func (r *Realm) Issue(identity Identity) (Session, error) {
	if identity.SubjectID == "" {
		return Session{}, errors.New("realm: subject id is required")
	}

	now := r.now()
	expiresAt := now.Add(r.ttl)

	claims := &Claims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.SubjectID,
			Issuer:    r.issuer,
			Audience:  jwt.ClaimStrings{r.name},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return Session{}, fmt.Errorf("realm %s: sign token: %w", r.name, err)
	}

	return Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate verifies signature, audience and expiry. Failures are always
// classified as ErrSessionExpired or ErrSessionInvalid.
func (r *Realm) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrSessionInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(r.now),
		jwt.WithAudience(r.name),
		jwt.WithExpirationRequired(),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrSessionInvalid)
	}

	return &claims, nil
}

// SetCookie writes the session cookie.
func (r *Realm) SetCookie(w http.ResponseWriter, session Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(r.ttl.Seconds())
	}
	http.SetCookie(w, r.newCookie(session.Token, maxAge, session.ExpiresAt))
}

// ClearCookie expires the session cookie.
func (r *Realm) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, r.newCookie("", -1, time.Unix(0, 0)))
}

// TokenFromRequest returns the realm cookie when present, otherwise a bearer token.
func (r *Realm) TokenFromRequest(req *http.Request) (string, error) {
	if cookie, err := req.Cookie(r.cookie.Name); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header == "" {
		return "", ErrNoToken
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
		return "", ErrSessionInvalid
	}
	return strings.TrimSpace(value), nil
}

func (r *Realm) newCookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     r.cookie.Name,
		Value:    value,
		Path:     r.cookie.Path,
		Domain:   r.cookie.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: r.cookie.HTTPOnly,
		Secure:   r.cookie.Secure,
		SameSite: r.cookie.SameSite,
	}
}
