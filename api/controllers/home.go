package controllers

import (
	"fmt"
	"net/http"

	"github.com/oaklinebank/oakline-backend/api/responses"
	"github.com/oaklinebank/oakline-backend/pkg/config"
)

// Home is the landing endpoint for authenticated frontends to probe.
func Home(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"message": fmt.Sprintf("Welcome to %s", cfg.Account.SiteName),
		})
	}
}
