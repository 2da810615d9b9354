// Package handler is the HTTP layer. Handlers bind and validate requests
// through the validation package, call the services and wrap results in
// the response envelope.
package handler

import (
	"github.com/deppfellow/users-api/internal/server"
	"github.com/deppfellow/users-api/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	User    *UserHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		User:    NewUserHandler(s, services.User),
		Health:  NewHealthHandler(s, services.User),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
