package service

import (
	"whatsurv/internal/config"
	"whatsurv/internal/repository"
	"whatsurv/internal/storage"
)

type Service struct {
	User       UserService
	Post       PostService
	Submission SubmissionService
	Report     ReportService
	Auth       AuthService
}

// NewService wires the services over the repositories. storage may be nil
// when image uploads are not configured.
func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage) *Service {
	return &Service{
		User:       NewUserService(rep.User),
		Post:       NewPostService(rep.Post, rep.Submission, rep.Image, storage),
		Submission: NewSubmissionService(rep.Post, rep.Submission, rep.User, rep.Report),
		Report:     NewReportService(rep.Post, rep.Submission, rep.Report),
		Auth:       NewAuthService(rep.User, cfg),
	}
}
