package statusService

import (
	"context"

	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/models"
	"github.com/nikhil/tsview/internal/tsquery"
)

// Querier is the remote session driven by one refresh. *tsquery.Client
// satisfies it; tests substitute fakes.
type Querier interface {
	Login(user, password string) error
	Use(serverID uint64) error
	ServerInfo() (map[string]string, error)
	ChannelList() ([]tsquery.Channel, error)
	ClientList() ([]tsquery.OnlineClient, error)
	Logout() error
	Close() error
}

// DialFunc opens a fresh query session.
type DialFunc func(ctx context.Context) (Querier, error)

// ServiceConfig carries the credentials and server selection for a
// refresh session.
type ServiceConfig struct {
	Username string
	Password string
	ServerID uint64
}

// Service implements Source against a live ServerQuery endpoint. Every
// fetch runs a full session: connect, login, select server, enumerate,
// logout.
type Service struct {
	dial DialFunc
	cfg  ServiceConfig
	log  *logger.Logger
}

func NewService(dial DialFunc, cfg ServiceConfig, log *logger.Logger) *Service {
	return &Service{dial: dial, cfg: cfg, log: log}
}

// FetchStatus runs one enumeration session and builds the topology view.
// Any failure aborts the session and propagates; the session is closed on
// all paths.
func (s *Service) FetchStatus(ctx context.Context) (*models.ServerInfo, error) {
	s.log.Debug("fetching voice server status")

	q, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	if err := q.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return nil, err
	}
	if err := q.Use(s.cfg.ServerID); err != nil {
		return nil, err
	}

	meta, err := q.ServerInfo()
	if err != nil {
		return nil, err
	}
	channels, err := q.ChannelList()
	if err != nil {
		return nil, err
	}
	clients, err := q.ClientList()
	if err != nil {
		return nil, err
	}

	if err := q.Logout(); err != nil {
		return nil, err
	}

	return BuildServerInfo(meta, channels, clients, s.log), nil
}
