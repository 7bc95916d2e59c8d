package controllers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/authenticator"
	"github.com/blogem/agility-auth/config"
	"github.com/blogem/agility-auth/mgmtapi"
	"github.com/blogem/agility-auth/templates"
)

// renderTemplate renders a page inside the layout
func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	return renderTemplateWithStatus(w, http.StatusOK, pageTemplate, data)
}

// renderTemplateWithStatus renders a page inside the layout with the given status code
func renderTemplateWithStatus(w http.ResponseWriter, statusCode int, pageTemplate string, data any) error {
	tmpl, err := template.ParseFS(templates.FS, "layout.html", pageTemplate)
	if err != nil {
		log.Error().Err(err).Str("template", pageTemplate).Msg("Failed to parse template")
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}

	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Error().Err(err).Str("template", pageTemplate).Msg("Failed to render template")
		return err
	}
	return nil
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write JSON response")
	}
}

// Controllers holds all controller instances
type Controllers struct {
	Auth      *AuthController
	Dashboard *DashboardController
}

// NewControllers creates and initializes all controller instances.
// auth must be backed by a cookie store bound through tokenstore.BindHTTP.
func NewControllers(cfg *config.Config, auth *authenticator.Authenticator, clients mgmtapi.Factory) *Controllers {
	return &Controllers{
		Auth:      NewAuthController(auth, cfg),
		Dashboard: NewDashboardController(auth, clients, cfg),
	}
}
