package api

import (
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/service"
	"github.com/yourname/smartcoach/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Repos() service.Repos
}

// Server is the App backed by a single storage.Store.
type Server struct {
	logger internal.Logger
	repos  service.Repos
}

func NewServer(logger internal.Logger, store storage.Store) *Server {
	return &Server{logger: logger, repos: service.NewRepos(store)}
}

func (s *Server) Logger() internal.Logger { return s.logger }
func (s *Server) Repos() service.Repos    { return s.repos }

var _ App = (*Server)(nil)
