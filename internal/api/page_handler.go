package api

import (
	"net/http"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PageHandler renders the server-side HTML shells. The data itself is loaded
// by the client scripts through the JSON API.
type PageHandler struct {
	authService service.AuthService
}

func NewPageHandler(authService service.AuthService) *PageHandler {
	return &PageHandler{authService: authService}
}

type pageData struct {
	Title      string
	User       *domain.PublicUser
	InviteCode string
}

// GET /login
func (h *PageHandler) Login(c *gin.Context) {
	if h.loggedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", pageData{Title: "Logga in"})
}

// GET /register?code=XXXX
func (h *PageHandler) Register(c *gin.Context) {
	if h.loggedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", pageData{Title: "Skapa konto", InviteCode: c.Query("code")})
}

// GET /
func (h *PageHandler) Calendar(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.data(c, "Träningar"))
}

// GET /admin
func (h *PageHandler) Admin(c *gin.Context) {
	c.HTML(http.StatusOK, "admin.html", h.data(c, "Admin"))
}

func (h *PageHandler) loggedIn(c *gin.Context) bool {
	return h.authService.Authorize(c.Request.Context(), sessionID(c)).IsAllowed()
}

func (h *PageHandler) data(c *gin.Context, title string) pageData {
	d := pageData{Title: title}
	if user, ok := currentUser(c); ok {
		d.User = &user
	}
	return d
}
