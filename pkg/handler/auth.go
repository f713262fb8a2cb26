package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/foomo/releaseregistry/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const authRealm = "releaseregistry"

var ErrUnauthorized = errors.New("incorrect username or password")

// Credentials guards the mutating routes with basic auth
type Credentials struct {
	Username string
	Password string
}

// Check compares both values in constant time and returns the asserted identity.
// Empty configured credentials never match.
func (c Credentials) Check(username, password string) (string, error) {
	if c.Username == "" || c.Password == "" {
		return "", ErrUnauthorized
	}
	validUsername := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	validPassword := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	if !validUsername || !validPassword {
		return "", ErrUnauthorized
	}
	return username, nil
}

func (h *HTTP) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, _ := r.BasicAuth()
		identity, err := h.credentials.Check(username, password)
		if err != nil {
			h.l.Info("rejected request", zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("WWW-Authenticate", `Basic realm="`+authRealm+`"`)
			h.writeJSON(w, http.StatusUnauthorized, responses.NewError(http.StatusUnauthorized, "Incorrect username or password"))
			return
		}
		h.l.Debug("authenticated request", zap.String("identity", identity), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}
