package api

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/parvej/showcase/internal/auth"
)

const sessionCookie = "session"

var errForbidden = errors.New("forbidden")

// sessionToken extracts the session token from the Authorization header or,
// failing that, the session cookie.
func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// logout drops the session cookie. Sessions are stateless, so the token
// itself stays valid until it expires; clients discard it here.
func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// currentSession reports the identity attached to the request's session.
// Anonymous requests get a read-only visitor identity instead of an error.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	var user auth.User
	if token := sessionToken(r); token != "" {
		if u, err := h.sessions.CurrentUser(token); err == nil {
			user = u
		}
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("email")
		e.Str(user.Email)
		e.FieldStart("admin")
		e.Bool(user.Admin)
		e.ObjEnd()
	})
}

// admin gates a handler behind a valid admin session: 401 without a valid
// session, 403 for a valid session lacking the admin role.
func (h *Handler) admin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, r, auth.ErrNoSession)
			return
		}

		user, err := h.sessions.CurrentUser(token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !user.Admin {
			writeError(w, r, errForbidden)
			return
		}

		next(w, r)
	})
}
