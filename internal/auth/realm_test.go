package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRealm(t *testing.T, name, secret string, now func() time.Time) *Realm {
	t.Helper()
	realm, err := NewRealm(RealmConfig{
		Name:   name,
		Secret: secret,
		Issuer: "sitecms",
		TTL:    time.Hour,
		Clock:  now,
		Cookie: CookiePolicy{Name: name + "Token", HTTPOnly: true},
	})
	require.NoError(t, err)
	return realm
}

func TestNewRealmRequiresSecret(t *testing.T) {
	_, err := NewRealm(RealmConfig{Name: RealmUser})
	require.EqualError(t, err, "realm user: secret must be provided")

	_, err = NewRealm(RealmConfig{Secret: "x"})
	require.Error(t, err)
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	realm := newTestRealm(t, RealmUser, "user-secret", func() time.Time { return current })

	identity := Identity{SubjectID: "user-123", Email: "a@x.com", Name: "Alice"}
	session, err := realm.Issue(identity)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.True(t, session.ExpiresAt.Equal(current.Add(time.Hour)))

	current = current.Add(59 * time.Minute)
	claims, err := realm.Validate(session.Token)
	require.NoError(t, err)
	require.Equal(t, identity, claims.Identity())
	require.Equal(t, "sitecms", claims.Issuer)
}

func TestValidateExpired(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	realm := newTestRealm(t, RealmUser, "user-secret", func() time.Time { return current })

	session, err := realm.Issue(Identity{SubjectID: "user-123"})
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	_, err = realm.Validate(session.Token)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.NotErrorIs(t, err, ErrSessionInvalid)
}

func TestUserTokenRejectedByAdminRealm(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	user := newTestRealm(t, RealmUser, "user-secret", now)
	admin := newTestRealm(t, RealmAdmin, "admin-secret", now)

	session, err := user.Issue(Identity{SubjectID: "user-123"})
	require.NoError(t, err)

	_, err = admin.Validate(session.Token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestRealmAudienceSeparatesSharedSecrets(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	user := newTestRealm(t, RealmUser, "same", now)
	admin := newTestRealm(t, RealmAdmin, "same", now)

	session, err := user.Issue(Identity{SubjectID: "user-123"})
	require.NoError(t, err)

	_, err = admin.Validate(session.Token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestValidateMalformed(t *testing.T) {
	realm := newTestRealm(t, RealmUser, "user-secret", nil)

	_, err := realm.Validate("")
	require.ErrorIs(t, err, ErrSessionInvalid)

	_, err = realm.Validate("not-a-jwt")
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestCookieHelpers(t *testing.T) {
	realm := newTestRealm(t, RealmUser, "user-secret", nil)
	session, err := realm.Issue(Identity{SubjectID: "user-123"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	realm.SetCookie(rec, session)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "userToken", cookies[0].Name)
	require.Equal(t, session.Token, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	token, err := realm.TokenFromRequest(req)
	require.NoError(t, err)
	require.Equal(t, session.Token, token)

	rec = httptest.NewRecorder()
	realm.ClearCookie(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Empty(t, cleared[0].Value)
	require.Less(t, cleared[0].MaxAge, 0)
}

func TestTokenFromRequestBearer(t *testing.T) {
	realm := newTestRealm(t, RealmAdmin, "admin-secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := realm.TokenFromRequest(req)
	require.ErrorIs(t, err, ErrNoToken)

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, err := realm.TokenFromRequest(req)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	_, err = realm.TokenFromRequest(req)
	require.ErrorIs(t, err, ErrSessionInvalid)
}
