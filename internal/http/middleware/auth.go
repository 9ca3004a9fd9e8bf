package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"shotapi/internal/auth"
	"shotapi/internal/service"
)

// UserLocalKey holds the authenticated username in Fiber's context locals.
const UserLocalKey = "user"

// Messages returned on rejected requests.
const (
	MsgMissingToken = "Unauthorized - Invalid or missing token"
	MsgInvalidToken = "Invalid or expired token"
)

// AuthMetrics counts bearer token checks by outcome.
type AuthMetrics struct {
	verifications *prometheus.CounterVec
}

// NewAuthMetrics registers auth_token_verifications_total on reg.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	m := &AuthMetrics{
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_token_verifications_total",
				Help: "Bearer token verifications by result.",
			},
			[]string{"result"},
		),
	}
	if err := reg.Register(m.verifications); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AuthMetrics) observe(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

// Unauthorized renders a 401 rejection. It is set by the handler package so
// the envelope format lives in one place.
type Unauthorized func(c *fiber.Ctx, message string) error

// Auth requires "Authorization: Bearer <token>" and a token that verifies.
// On success the username is stored under UserLocalKey and on the user context.
func Auth(authSvc service.AuthService, metrics *AuthMetrics, reject Unauthorized) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := auth.ExtractBearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			metrics.observe("missing")
			return reject(c, MsgMissingToken)
		}

		claims, err := authSvc.Authenticate(token)
		metrics.observe(auth.Reason(err))
		if err != nil {
			return reject(c, MsgInvalidToken)
		}

		c.Locals(UserLocalKey, claims.Username)
		c.SetUserContext(service.WithActor(c.UserContext(), claims.Username))
		return c.Next()
	}
}
