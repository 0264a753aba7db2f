package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/server/services"
)

func (s *Server) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.users.TokenTTL().Seconds()),
	})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	sess, err := s.users.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Unable to complete signup")
		return
	}
	s.setAuthCookie(w, sess.Token)
	writeData(w, http.StatusCreated, sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "Unable to login")
		return
	}
	s.setAuthCookie(w, sess.Token)
	writeData(w, http.StatusOK, sess)
}

func (s *Server) externalLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "ID token is required")
		return
	}
	if s.identities == nil {
		writeError(w, http.StatusUnauthorized, "Unable to verify external login")
		return
	}

	id, err := s.identities.Verify(req.IDToken)
	if err != nil {
		s.logger.Info(r.Context(), "external token rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "Unable to verify external login")
		return
	}
	if id.Email == "" {
		writeError(w, http.StatusBadRequest, "Account email is required")
		return
	}

	sess, err := s.users.ExternalLogin(r.Context(), id.Email, id.Name)
	if err != nil {
		writeServiceError(w, err, "Unable to verify external login")
		return
	}
	s.setAuthCookie(w, sess.Token)
	writeData(w, http.StatusOK, sess)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AuthCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	sess, err := s.users.Me(r.Context(), currentUser(r).ID)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	sess.Token = currentToken(r)
	writeData(w, http.StatusOK, sess)
}

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.store.ListPackages())
}
