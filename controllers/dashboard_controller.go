package controllers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/authenticator"
	"github.com/blogem/agility-auth/config"
	"github.com/blogem/agility-auth/mgmtapi"
	"github.com/blogem/agility-auth/models"
	"github.com/blogem/agility-auth/userctx"
)

// DashboardController serves the login panel and the protected view
type DashboardController struct {
	auth    *authenticator.Authenticator
	clients mgmtapi.Factory
	cfg     *config.Config
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(auth *authenticator.Authenticator, clients mgmtapi.Factory, cfg *config.Config) *DashboardController {
	return &DashboardController{
		auth:    auth,
		clients: clients,
		cfg:     cfg,
	}
}

func pageData(title string, data any) models.PageData {
	return models.PageData{Title: title, Data: data}
}

// Index handles GET /
func (c *DashboardController) Index(w http.ResponseWriter, r *http.Request) {
	data := pageData("Sign in", map[string]string{
		"loginUrl":      "/api/auth/login",
		"redirectUri":   c.cfg.ServerRedirectURI(),
		"region":        c.cfg.Region,
		"protectedPath": c.cfg.ProtectedPath,
	})

	renderTemplate(w, "index.html", data)
}

type protectedView struct {
	Identity  *userctx.Identity
	ExpiresAt string
	Websites  []models.WebsiteAccess
	LoginPath string
}

// Protected handles GET /protected. The route guard has already checked
// the token structurally; the user's websites are loaded best effort.
func (c *DashboardController) Protected(w http.ResponseWriter, r *http.Request) {
	view := protectedView{LoginPath: c.cfg.LoginPath}
	if id, ok := userctx.FromContext(r.Context()); ok {
		view.Identity = &id
		if !id.ExpiresAt.IsZero() {
			view.ExpiresAt = id.ExpiresAt.Format(time.RFC1123)
		}
	}

	data := pageData("Protected", &view)

	websites, err := c.loadWebsites(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load websites")
		data.FlashMessage = &models.FlashMessage{Type: models.FlashInfo, Message: "Your websites could not be loaded."}
	}
	view.Websites = websites

	renderTemplate(w, "protected.html", data)
}

func (c *DashboardController) loadWebsites(r *http.Request) ([]models.WebsiteAccess, error) {
	if c.clients == nil {
		return nil, nil
	}

	token := c.auth.GetValidAccessToken(r.Context())
	if token == "" {
		return nil, nil
	}

	user, err := c.clients(token).Me(r.Context())
	if err != nil {
		return nil, err
	}
	return models.WebsitesFromUser(user), nil
}
