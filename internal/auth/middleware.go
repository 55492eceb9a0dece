package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// DefaultPublicPaths are served without a token: health checks and metrics scrapes.
var DefaultPublicPaths = []string{"/healthz", "/metrics"}

// Middleware enforces bearer-token authentication on incoming requests.
type Middleware struct {
	cfg    Config
	public map[string]bool
}

// NewMiddleware constructs Middleware. Requests for publicPaths, or for
// DefaultPublicPaths when none are given, pass through without a token.
func NewMiddleware(cfg Config, publicPaths ...string) Middleware {
	if len(publicPaths) == 0 {
		publicPaths = DefaultPublicPaths
	}
	m := Middleware{cfg: cfg, public: make(map[string]bool, len(publicPaths))}
	for _, p := range publicPaths {
		m.public[p] = true
	}
	return m
}

// Wrap attaches authentication handling to an http.Handler. Verified claims are
// available to next through FromContext.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || m.public[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.authenticate(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="workouts"`)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"type": "unauthorized", "detail": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) authenticate(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return nil, ErrInvalidToken
	}
	return Parse(token, m.cfg)
}
