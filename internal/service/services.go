// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives
// validated payloads from the handlers, performs the user lifecycle
// operations and talks to the store through the repositories.
package service

import (
	"github.com/deppfellow/users-api/internal/lib/job"
	"github.com/deppfellow/users-api/internal/repository"
	"github.com/deppfellow/users-api/internal/server"
)

type Services struct {
	User *UserService
	Job  *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	// Left as a nil interface when jobs are disabled.
	var notifier WelcomeNotifier
	if s.Job != nil {
		notifier = s.Job
	}

	return &Services{
		User: NewUserService(repos.User, notifier, s.Logger),
		Job:  s.Job,
	}
}
