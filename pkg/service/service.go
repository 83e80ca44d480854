// Package service exposes the planner over NATS request/reply. Clients
// publish a PlanRequest to the service subject and receive a PlanResult.
// Each request is solved by a fresh planner; an admission limiter bounds
// how many requests are solved at once, since every solve saturates several
// CPUs with worker threads.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/storage"
)

// DefaultSubject is the subject the service listens on
const DefaultSubject = "daedalus.plan"

// DefaultQueue is the queue group, so multiple service instances share load
const DefaultQueue = "daedalus-planners"

// Service answers planning requests over NATS
type Service struct {
	*Handler

	conn    *nats.Conn
	subject string
	queue   string
	logger  *zap.Logger

	sub *nats.Subscription
}

// NewService creates a planning service on the given connection. The
// connection must already be established. The path store is optional; when
// nil, persistence requests are ignored.
func NewService(conn *nats.Conn, subject, queue string, logger *zap.Logger, store *storage.PathStore) (*Service, error) {
	if conn == nil {
		return nil, errors.New("NATS connection cannot be nil")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	if queue == "" {
		queue = DefaultQueue
	}

	handler, err := NewHandler(logger, store)
	if err != nil {
		return nil, err
	}

	logger.Info("Planning service configured",
		zap.String("subject", subject),
		zap.String("queue", queue))

	return &Service{
		Handler: handler,
		conn:    conn,
		subject: subject,
		queue:   queue,
		logger:  logger,
	}, nil
}

// Start subscribes to the service subject. Replies are sent on each
// request's reply inbox. Returns immediately; call Stop to drain.
func (s *Service) Start(ctx context.Context) error {
	sub, err := s.conn.QueueSubscribe(s.subject, s.queue, func(msg *nats.Msg) {
		go s.serve(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}
	s.sub = sub
	s.logger.Info("Planning service started", zap.String("subject", s.subject))
	return nil
}

// Stop drains the subscription so in-flight requests finish.
func (s *Service) Stop() error {
	if s.sub == nil {
		return nil
	}
	if err := s.sub.Drain(); err != nil {
		return fmt.Errorf("failed to drain subscription: %w", err)
	}
	s.logger.Info("Planning service stopped")
	return nil
}

func (s *Service) serve(ctx context.Context, msg *nats.Msg) {
	reply := s.Handle(ctx, msg.Data)
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to marshal plan result", zap.Error(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Error("Failed to respond to plan request",
			zap.String("session_id", reply.SessionID),
			zap.Error(err))
	}
}
