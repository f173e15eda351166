package stubapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// sessionCookie names the cookie carrying the signed session token.
const sessionCookie = "session_token"

// sessionTTL bounds how long a login lasts.
const sessionTTL = 24 * time.Hour

// Server implements the enrollment REST contract over a Store.
type Server struct {
	store  Store
	secret []byte
}

// NewServer constructs a Server. The secret signs session cookies.
func NewServer(store Store, secret string) *Server {
	return &Server{store: store, secret: []byte(secret)}
}

// Router builds the chi router with the full endpoint surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Get("/activities", s.listActivities)
	r.Post("/activities/{name}/signup", s.signup)
	r.Delete("/activities/{name}/unregister", s.unregister)

	r.Get("/me", s.me)
	r.Post("/login", s.login)
	r.Post("/register", s.register)
	r.Post("/logout", s.logout)

	return r
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes the {detail} failure envelope the client expects.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// ─── Activities ───────────────────────────────────────────────────────────────

// listActivities handles GET /activities. The collection is encoded as
// a JSON object keyed by activity name, in store order; the encoder is
// hand-rolled because a Go map would scramble the keys.
func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.store.Activities()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range activities {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(a.Name)
		buf.Write(name)
		buf.WriteByte(':')

		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		details, err := json.Marshal(struct {
			Description     string   `json:"description"`
			Schedule        string   `json:"schedule"`
			MaxParticipants int      `json:"max_participants"`
			Participants    []string `json:"participants"`
		}{a.Description, a.Schedule, a.MaxParticipants, participants})
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to encode activities")
			return
		}
		buf.Write(details)
	}
	buf.WriteByte('}')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// signup handles POST /activities/{name}/signup?email={email}.
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentUser(r); !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	name := activityParam(r)
	email := r.URL.Query().Get("email")
	if email == "" {
		writeDetail(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := s.store.AddParticipant(name, email); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "Activity not found")
		case errors.Is(err, ErrAlreadySignedUp):
			writeDetail(w, http.StatusBadRequest, "Already signed up for this activity")
		case errors.Is(err, ErrActivityFull):
			writeDetail(w, http.StatusBadRequest, "Activity is full")
		default:
			writeDetail(w, http.StatusInternalServerError, "Failed to sign up")
		}
		return
	}

	writeMessage(w, fmt.Sprintf("Signed up %s for %s", email, name))
}

// unregister handles DELETE /activities/{name}/unregister?email={email}.
func (s *Server) unregister(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentUser(r); !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	name := activityParam(r)
	email := r.URL.Query().Get("email")
	if email == "" {
		writeDetail(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := s.store.RemoveParticipant(name, email); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "Activity not found")
		case errors.Is(err, ErrNotSignedUp):
			writeDetail(w, http.StatusBadRequest, "Not signed up for this activity")
		default:
			writeDetail(w, http.StatusInternalServerError, "Failed to unregister")
		}
		return
	}

	writeMessage(w, fmt.Sprintf("Unregistered %s from %s", email, name))
}

// activityParam returns the {name} path segment. chi hands back the raw
// segment when the request path was escaped; unescaping an already-plain
// name is a no-op.
func activityParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// ─── Session ──────────────────────────────────────────────────────────────────

// register handles POST /register with form-encoded credentials.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(w, r)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	if err := s.store.CreateUser(username, string(hash)); err != nil {
		if errors.Is(err, ErrUserExists) {
			writeDetail(w, http.StatusBadRequest, "Username already exists")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	// No session is established here; the visitor still has to log in.
	writeMessage(w, "Registration successful. Please log in.")
}

// login handles POST /login with form-encoded credentials. Success sets
// the signed session cookie.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(w, r)
	if !ok {
		return
	}

	hash, err := s.store.UserHash(username)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	}
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.signSession(username)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(sessionTTL / time.Second),
	})
	writeMessage(w, fmt.Sprintf("Logged in as %s", username))
}

// logout handles POST /logout by expiring the session cookie.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeMessage(w, "Logged out")
}

// me handles GET /me.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	username, ok := s.currentUser(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": username})
}

// credentials parses and validates the shared login/register form.
func credentials(w http.ResponseWriter, r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form body")
		return "", "", false
	}
	username = r.PostForm.Get("username")
	password = r.PostForm.Get("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusBadRequest, "Username and password are required")
		return "", "", false
	}
	return username, password, true
}

// signSession mints an HS256 session token for username.
func (s *Server) signSession(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// currentUser validates the session cookie and returns the username.
func (s *Server) currentUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
