package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"pneumoscan-server/internal/classifier"
	"pneumoscan-server/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	clf := stubClassifier{result: classifier.Result{Label: "NORMAL", Confidence: 99}}
	router, _, _ := setupRouter(t, clf)

	register := map[string]string{
		"username": "jane",
		"password": "s3cretpass",
		"role":     "patient",
		"name":     "Jane Doe",
		"email":    "jane@example.com",
	}
	w := doRequest(router, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", "", register))
	require.Equal(t, http.StatusCreated, w.Code)

	var registered struct {
		Data models.UserSanitized `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.Equal(t, "jane", registered.Data.Username)
	require.Equal(t, models.RolePatient, registered.Data.Role)

	login := map[string]string{"username": "jane", "password": "s3cretpass"}
	w = doRequest(router, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", "", login))
	require.Equal(t, http.StatusOK, w.Code)

	var loggedIn struct {
		Data struct {
			AccessToken string               `json:"accessToken"`
			User        models.UserSanitized `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))
	require.NotEmpty(t, loggedIn.Data.AccessToken)
	require.Equal(t, registered.Data.ID, loggedIn.Data.User.ID)

	// The token works against an authenticated endpoint
	w = doRequest(router, jsonRequest(t, http.MethodGet, "/api/v1/auth/profile", loggedIn.Data.AccessToken, nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	clf := stubClassifier{result: classifier.Result{Label: "NORMAL", Confidence: 99}}
	router, _, _ := setupRouter(t, clf)

	register := map[string]string{
		"username": "jane",
		"password": "s3cretpass",
		"role":     "patient",
		"name":     "Jane Doe",
		"email":    "jane@example.com",
	}
	w := doRequest(router, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", "", register))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", "", register))
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	clf := stubClassifier{result: classifier.Result{Label: "NORMAL", Confidence: 99}}
	router, _, _ := setupRouter(t, clf)

	register := map[string]string{
		"username": "root",
		"password": "s3cretpass",
		"role":     "admin",
		"name":     "Root",
		"email":    "root@example.com",
	}
	w := doRequest(router, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", "", register))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	clf := stubClassifier{result: classifier.Result{Label: "NORMAL", Confidence: 99}}
	router, db, _ := setupRouter(t, clf)

	registerUser(t, db, "jane", models.RolePatient)

	login := map[string]string{"username": "jane", "password": "wrongpass"}
	w := doRequest(router, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", "", login))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	login = map[string]string{"username": "nobody", "password": "s3cretpass"}
	w = doRequest(router, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", "", login))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
