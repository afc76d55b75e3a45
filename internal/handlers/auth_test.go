package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/handlers/testutil"
)

func TestUserAuth_RegisterVerifyAndProfile(t *testing.T) {
	env := testutil.NewEnv(t)

	email, token := env.RegisterVerifiedUser("Jane Doe")

	w := env.Request(http.MethodGet, "/user/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Verified bool   `json:"verified"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &profile)
	require.Equal(t, email, profile.Email)
	require.Equal(t, "Jane Doe", profile.Name)
	require.True(t, profile.Verified)
	require.NotContains(t, w.Body.String(), "password")

	w = env.Request(http.MethodGet, "/user/validate", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var validated struct {
		Valid bool `json:"valid"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &validated)
	require.True(t, validated.Valid)
}

func TestUserAuth_LoginBeforeVerificationResendsCode(t *testing.T) {
	env := testutil.NewEnv(t)

	body := map[string]string{"name": "Sam", "email": "sam@example.com", "password": "Str0ng!Pass"}
	w := env.Request(http.MethodPost, "/user/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, env.Mailer.SentTo("sam@example.com"), 1)

	w = env.Request(http.MethodPost, "/user/login", map[string]string{"email": "sam@example.com", "password": "Str0ng!Pass"}, "")
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	resp := testutil.DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.Equal(t, "auth.verification_required", resp.Error.Code)
	require.Len(t, env.Mailer.SentTo("sam@example.com"), 2)

	w = env.Request(http.MethodPost, "/resend-otp", map[string]string{"email": "sam@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, env.Mailer.SentTo("sam@example.com"), 3)

	w = env.Request(http.MethodPost, "/verify-otp", map[string]string{"email": "sam@example.com", "otp": env.LastOTP("sam@example.com")}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/user/login", map[string]string{"email": "sam@example.com", "password": "Str0ng!Pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, w.Result().Cookies())
}

func TestUserAuth_RegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/user/register", map[string]string{"name": "Weak", "email": "weak@example.com", "password": "short"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	email, _ := env.RegisterVerifiedUser("First")
	w = env.Request(http.MethodPost, "/user/register", map[string]string{"name": "Again", "email": email, "password": "Str0ng!Pass"}, "")
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestUserAuth_WrongOTPIsRejected(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/user/register", map[string]string{"name": "Otto", "email": "otto@example.com", "password": "Str0ng!Pass"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/user/verify-otp", map[string]string{"email": "otto@example.com", "otp": "000000"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Equal(t, "otp.invalid_or_expired", testutil.DecodeResponse(t, w).Error.Code)
}

func TestUserAuth_LogoutRevokesToken(t *testing.T) {
	env := testutil.NewEnv(t)
	_, token := env.RegisterVerifiedUser("Leaving")

	w := env.Request(http.MethodPost, "/user/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/user/profile", nil, token)
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	require.Equal(t, "auth.session_invalid", testutil.DecodeResponse(t, w).Error.Code)
}

func TestUserAuth_SessionCookieIsAccepted(t *testing.T) {
	env := testutil.NewEnv(t)
	email, _ := env.RegisterVerifiedUser("Cookie")

	w := env.Request(http.MethodPost, "/user/login", map[string]string{"email": email, "password": "Str0ng!Pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == env.UserRealm.CookieName() {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)

	req, _ := http.NewRequest(http.MethodGet, "/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	w = env.Do(req, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAdminAuth_LoginProfileAndRegister(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/admin/login", map[string]string{"email": testutil.AdminEmail, "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	token := env.LoginAdmin()

	w = env.Request(http.MethodGet, "/admin/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), testutil.AdminEmail)

	w = env.Request(http.MethodPost, "/admin/register", map[string]string{"name": "Second", "email": "second@example.com", "password": "Adm1nTwo!"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/admin/login", map[string]string{"email": "second@example.com", "password": "Adm1nTwo!"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRealmsAreIsolated(t *testing.T) {
	env := testutil.NewEnv(t)
	_, userToken := env.RegisterVerifiedUser("Curious")
	adminToken := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/admin/profile", nil, userToken)
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/admin/register", map[string]string{"name": "Sneaky", "email": "sneaky@example.com", "password": "Str0ng!Pass"}, userToken)
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/user/profile", nil, adminToken)
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/consult", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	require.Equal(t, "UNAUTHORIZED", testutil.DecodeResponse(t, w).Error.Code)
}
