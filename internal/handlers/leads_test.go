package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/handlers/testutil"
)

func TestConsult_SubmitAcknowledgeAndModerate(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/consult", map[string]string{
		"name":     "Client",
		"email":    "client@example.com",
		"phone":    "+15551234567",
		"interest": "Training",
		"message":  "Please call me",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, env.Mailer.SentTo("client@example.com"), 1)

	var consult struct {
		ID string `json:"id"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &consult)

	w = env.Request(http.MethodPost, "/consult", map[string]string{
		"name":     "Client",
		"email":    "not-an-email",
		"interest": "Training",
		"message":  "hi",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/consult", map[string]string{
		"name":     "Client",
		"email":    "client@example.com",
		"phone":    "0123",
		"interest": "Training",
		"message":  "hi",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Equal(t, "validation.phone", testutil.DecodeResponse(t, w).Error.Code)

	token := env.LoginAdmin()
	w = env.Request(http.MethodGet, "/consult", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var consults []map[string]any
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &consults)
	require.Len(t, consults, 1)

	w = env.Request(http.MethodDelete, "/consult/"+consult.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.Request(http.MethodDelete, "/consult/"+consult.ID, nil, token)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestContact_SubmitAndList(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/contact", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"subject": "Hello",
		"message": "Just saying hi",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/contact", map[string]string{"name": "Visitor"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/contact", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	token := env.LoginAdmin()
	w = env.Request(http.MethodGet, "/contact", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var contacts []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &contacts)
	require.Len(t, contacts, 1)
	require.Equal(t, "visitor@example.com", contacts[0].Email)

	w = env.Request(http.MethodDelete, "/contact/"+contacts[0].ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
