package service

import (
	"context"
	"fmt"
	"sync"

	"chatpulse/internal/config"
	"chatpulse/internal/dto"
	"chatpulse/internal/pkg/logger"
	"chatpulse/pkg/events"
	"chatpulse/pkg/realtime"
)

type ISyncService interface {
	Connect(ctx context.Context, identifier string) (*dto.SyncSessionResponse, error)
	Disconnect(ctx context.Context, identifier string) (*dto.SyncSessionResponse, error)
	Send(ctx context.Context, identifier string, req *dto.SendSyncMessageRequest) error
	Show(ctx context.Context, identifier string) (*dto.SyncSessionResponse, error)
	Shutdown()
}

// syncService owns one realtime.Client per identifier and turns their state
// changes and messages into live events.
type syncService struct {
	cfg       realtime.Config
	factory   realtime.TransportFactory
	publisher IPublisherService
	logger    logger.ILogger
	rtLogger  realtime.Logger
	clientOpt []realtime.Option

	mu       sync.Mutex
	sessions map[string]*realtime.Client
}

// NewSyncService builds the service. A nil factory dials real WebSockets;
// extra options are applied to every client after the service's own.
func NewSyncService(
	cfg config.SyncConfig,
	factory realtime.TransportFactory,
	publisher IPublisherService,
	log logger.ILogger,
	realtimeLog realtime.Logger,
	opts ...realtime.Option,
) ISyncService {
	return &syncService{
		cfg:       cfg.ClientConfig(),
		factory:   factory,
		publisher: publisher,
		logger:    log,
		rtLogger:  realtimeLog,
		clientOpt: opts,
		sessions:  make(map[string]*realtime.Client),
	}
}

func (s *syncService) Connect(ctx context.Context, identifier string) (*dto.SyncSessionResponse, error) {
	s.mu.Lock()
	client, existed := s.sessions[identifier]
	if !existed {
		client = s.newClient()
		s.sessions[identifier] = client
	}
	s.mu.Unlock()

	if err := client.Connect(identifier); err != nil {
		if !existed {
			s.mu.Lock()
			delete(s.sessions, identifier)
			s.mu.Unlock()
		}
		return nil, err
	}

	s.logger.Info("SyncService", "Sync session connecting", map[string]interface{}{"identifier": identifier})
	return snapshot(identifier, client), nil
}

func (s *syncService) Disconnect(ctx context.Context, identifier string) (*dto.SyncSessionResponse, error) {
	s.mu.Lock()
	client, ok := s.sessions[identifier]
	delete(s.sessions, identifier)
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, identifier)
	}
	client.Disconnect()
	s.logger.Info("SyncService", "Sync session closed", map[string]interface{}{"identifier": identifier})
	return snapshot(identifier, client), nil
}

func (s *syncService) Send(ctx context.Context, identifier string, req *dto.SendSyncMessageRequest) error {
	client, err := s.session(identifier)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{"type": req.Type}
	if req.Data != nil {
		payload["data"] = req.Data
	}
	return client.Send(payload)
}

func (s *syncService) Show(ctx context.Context, identifier string) (*dto.SyncSessionResponse, error) {
	client, err := s.session(identifier)
	if err != nil {
		return nil, err
	}
	return snapshot(identifier, client), nil
}

// Shutdown disconnects every session.
func (s *syncService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*realtime.Client)
	s.mu.Unlock()

	for _, client := range sessions {
		client.Disconnect()
	}
}

func (s *syncService) session(identifier string) (*realtime.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.sessions[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, identifier)
	}
	return client, nil
}

func (s *syncService) newClient() *realtime.Client {
	opts := []realtime.Option{
		realtime.WithStateObserver(s.onState),
		realtime.WithMessageObserver(s.onMessage),
	}
	if s.rtLogger != nil {
		opts = append(opts, realtime.WithLogger(s.rtLogger))
	}
	opts = append(opts, s.clientOpt...)
	return realtime.NewClient(s.cfg, s.factory, opts...)
}

func (s *syncService) onState(identifier string, state realtime.ConnectionState, err error) {
	data := map[string]interface{}{
		"phase":   state.Phase.String(),
		"attempt": state.Attempt,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	s.publish(events.NewLiveEvent(events.TypeSyncState, identifier, data))
}

func (s *syncService) onMessage(identifier string, msg realtime.Message, status realtime.GlobalSyncStatus) {
	s.publish(events.NewLiveEvent(events.TypeSyncMessage, identifier, map[string]interface{}{
		"message": events.ToMap(msg),
		"status":  events.ToMap(status),
	}))
}

func (s *syncService) publish(event events.LiveEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		s.logger.Warn("SyncService", "Failed to publish sync event", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
	}
}

func snapshot(identifier string, client *realtime.Client) *dto.SyncSessionResponse {
	res := &dto.SyncSessionResponse{
		Identifier:       identifier,
		State:            client.State(),
		Status:           client.Status(),
		Messages:         client.Messages(),
		TransportErrored: client.TransportErrored(),
	}
	if err := client.LastError(); err != nil {
		res.LastError = err.Error()
	}
	return res
}
