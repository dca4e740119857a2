package rest

import (
	"net/http"

	"github.com/mmynk/munera/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	user, err := a.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		a.logger.Warn("Login failed", "username", req.Username)
		a.fail(w, r, err)
		return
	}
	token, err := a.jwt.Generate(user)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger.Info("User logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}
