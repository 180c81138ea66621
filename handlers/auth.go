package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	userssvc "daybook/services/users"
)

type userService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
}

type settingsEnsurer interface {
	Ensure(ctx context.Context, userID int64) error
}

type summaryGenerator interface {
	GenerateAll(ctx context.Context, userID int64) error
}

type tokenIssuer interface {
	Issue(userID int64) (string, error)
}

var _ userService = (*userssvc.Service)(nil)

// AuthHandler serves signup and login.
type AuthHandler struct {
	Users     userService
	Settings  settingsEnsurer
	Summaries summaryGenerator
	Tokens    tokenIssuer
}

func NewAuthHandler(users userService, settings settingsEnsurer, summaries summaryGenerator, tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{Users: users, Settings: settings, Summaries: summaries, Tokens: tokens}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup creates a new account together with its default settings row.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, userssvc.ErrMissingCredentials):
			writeError(w, http.StatusBadRequest, "missing credentials")
		case errors.Is(err, userssvc.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already exists, please choose another")
		default:
			log.Printf("[auth] signup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "could not create account")
		}
		return
	}

	// New accounts have no entries yet; this seeds an empty summary state
	// and keeps the signup flow identical to login.
	if err := h.Summaries.GenerateAll(r.Context(), userID); err != nil {
		log.Printf("[auth] summary generation after signup failed: %v", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": userID})
}

// Login verifies credentials, makes sure the settings row exists, brings
// the user's monthly summaries up to date and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	userID, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, userssvc.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		log.Printf("[auth] login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not log in")
		return
	}

	if err := h.Settings.Ensure(r.Context(), userID); err != nil {
		log.Printf("[auth] ensure settings failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not log in")
		return
	}

	// Bring summaries up to date, silently: a failure here must not block
	// the login itself.
	if err := h.Summaries.GenerateAll(r.Context(), userID); err != nil {
		log.Printf("[auth] summary generation after login failed: %v", err)
	}

	token, err := h.Tokens.Issue(userID)
	if err != nil {
		log.Printf("[auth] token issue failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not log in")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": userID, "token": token})
}
