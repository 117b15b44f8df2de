package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"

	"whatsurv/internal/config"
	"whatsurv/internal/service"
)

// HealthChecker is a dependency reported by the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	UserService       service.UserService
	AuthService       service.AuthService
	PostService       service.PostService
	SubmissionService service.SubmissionService
	ReportService     service.ReportService
	HealthChecks      map[string]HealthChecker
	Cfg               *config.Config
	Validate          *validator.Validate
}

func NewHandlers(service *service.Service, config *config.Config, checks map[string]HealthChecker) *Handlers {
	return &Handlers{
		UserService:       service.User,
		AuthService:       service.Auth,
		PostService:       service.Post,
		SubmissionService: service.Submission,
		ReportService:     service.Report,
		HealthChecks:      checks,
		Cfg:               config,
		Validate:          validator.New(),
	}
}
