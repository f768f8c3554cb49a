package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"esk/training-app/internal/config"
	"esk/training-app/internal/domain"
	"esk/training-app/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Constants for context and session keys
const (
	ContextTraceIDKey  = "trace_id"
	ContextIdentityKey = "identity"

	sessionIDKey = "sid"
)

// TraceIDMiddleware tags every request with an id that is echoed in the
// X-Trace-ID header and attached to log lines.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(ContextTraceIDKey, id)
		c.Writer.Header().Set("X-Trace-ID", id)
		c.Next()
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"trace_id", traceID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", attrs...)
		case strings.HasPrefix(c.Request.URL.Path, "/static/"):
			logger.Debug("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}

// SessionCookies installs the signed cookie that carries the opaque session id.
// The cookie holds nothing else; the session itself lives in the database.
func SessionCookies(appCfg config.AppConfig, sessCfg config.SessionConfig) gin.HandlerFunc {
	store := cookie.NewStore([]byte(sessCfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessCfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   appCfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessCfg.CookieName, store)
}

// Guard authenticates the caller from the session cookie and evaluates
// policies. API paths get JSON errors; page paths are redirected.
func Guard(authService service.AuthService, logger *slog.Logger, policies ...service.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := authService.Authorize(c.Request.Context(), sessionID(c), policies...)
		if decision.IsAllowed() {
			c.Set(ContextIdentityKey, decision.Identity)
			c.Next()
			return
		}

		if decision.Err != nil {
			respondError(c, logger, decision.Err)
			return
		}

		api := strings.HasPrefix(c.Request.URL.Path, "/api/")
		switch decision.Reason {
		case service.DenyForbidden:
			if api {
				abortWithError(c, http.StatusForbidden, "Admin access required")
				return
			}
			c.Redirect(http.StatusFound, "/")
		default:
			if api {
				abortWithError(c, http.StatusUnauthorized, "Not logged in")
				return
			}
			c.Redirect(http.StatusFound, "/login")
		}
		c.Abort()
	}
}

// sessionID reads the opaque session id from the cookie, if any.
func sessionID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(sessionIDKey).(string)
	return id
}

// startSession binds a freshly created session to the response cookie.
func startSession(c *gin.Context, id string) error {
	s := sessions.Default(c)
	s.Set(sessionIDKey, id)
	return s.Save()
}

// endSession clears the cookie.
func endSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return s.Save()
}

// currentUser returns the identity set by Guard.
func currentUser(c *gin.Context) (domain.PublicUser, bool) {
	raw, ok := c.Get(ContextIdentityKey)
	if !ok {
		return domain.PublicUser{}, false
	}
	identity, ok := raw.(domain.PublicUser)
	return identity, ok
}

func traceID(c *gin.Context) string {
	return c.GetString(ContextTraceIDKey)
}
