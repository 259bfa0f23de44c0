package stubserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	"github.com/MrEthical07/goConvert/jwt"
	"github.com/MrEthical07/goConvert/middleware"
)

// Config wires a [Server]. Users, Rates and Issuer are required.
type Config struct {
	Users    *Users
	Rates    Rates
	Issuer   *jwt.Issuer
	Throttle *Throttle

	// RequireAuth makes the convert endpoint demand a valid bearer token.
	RequireAuth bool
	// Latency delays every convert response, to make out-of-order replies easy to provoke.
	Latency        time.Duration
	AllowedOrigins []string
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// Server serves the token and conversion endpoints.
type Server struct {
	config Config
	router chi.Router
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type convertResponse struct {
	Converted json.Number `json:"converted"`
	To        string      `json:"to"`
}

type errorResponse struct {
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail"`
}

type meResponse struct {
	Subject   string    `json:"sub"`
	ExpiresAt time.Time `json:"exp"`
}

// New validates cfg and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Users == nil {
		return nil, errors.New("stubserver: users are required")
	}
	if len(cfg.Rates) == 0 {
		return nil, errors.New("stubserver: rates are required")
	}
	if cfg.Issuer == nil {
		return nil, errors.New("stubserver: issuer is required")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{config: cfg}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	if s.config.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Post("/token", s.handleToken)
	r.Get("/users/me", s.handleMe)
	r.Group(func(r chi.Router) {
		if s.config.RequireAuth {
			r.Use(s.requireBearer)
		}
		r.Get("/currencies/convert/{from}/{to}", s.handleConvert)
	})
	return r
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid form body")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeError(w, http.StatusUnprocessableEntity, "", "username and password are required")
		return
	}

	ctx := r.Context()
	if err := s.config.Throttle.Check(ctx, username); err != nil {
		if errors.Is(err, ErrThrottled) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many failed attempts, try again later")
			return
		}
		log.Printf("stubserver: throttle check: %v", err)
		writeError(w, http.StatusServiceUnavailable, "THROTTLE_UNAVAILABLE", "Login temporarily unavailable")
		return
	}

	userID, ok := s.config.Users.Authenticate(username, password)
	if !ok {
		if err := s.config.Throttle.Fail(ctx, username); err != nil {
			log.Printf("stubserver: throttle record: %v", err)
		}
		writeError(w, http.StatusUnauthorized, "", "Incorrect username or password")
		return
	}
	if err := s.config.Throttle.Reset(ctx, username); err != nil {
		log.Printf("stubserver: throttle reset: %v", err)
	}

	token, err := s.config.Issuer.Issue(userID)
	if err != nil {
		log.Printf("stubserver: issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "TOKEN_ISSUE_FAILED", "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")
	if id := r.Header.Get("X-Request-ID"); id != "" {
		w.Header().Set("X-Request-ID", id)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(r.URL.Query().Get("amount")))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "", "amount must be a decimal number")
		return
	}

	converted, err := s.config.Rates.Convert(amount, from, to)
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_CURRENCY", "Unknown currency pair "+from+"/"+to)
		return
	}

	if s.config.Latency > 0 {
		select {
		case <-time.After(s.config.Latency):
		case <-r.Context().Done():
			return
		}
	}
	writeJSON(w, http.StatusOK, convertResponse{
		Converted: json.Number(converted.String()),
		To:        strings.ToUpper(to),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "", "Not authenticated")
		return
	}
	out := meResponse{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.authenticate(r); !ok {
			writeError(w, http.StatusUnauthorized, "", "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(r *http.Request) (*jwt.Claims, bool) {
	token, ok := middleware.ParseBearer(r.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}
	claims, err := s.config.Issuer.Parse(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Code: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("stubserver: encode response: %v", err)
	}
}
