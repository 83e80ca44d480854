package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/concurrency"
	daederrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/planner"
	"github.com/wehubfusion/Daedalus/pkg/storage"
)

// Handler processes planning requests independently of any transport, so
// the planning logic can be exercised without a NATS server.
type Handler struct {
	logger  *zap.Logger
	tracer  trace.Tracer
	limiter *concurrency.Limiter
	store   *storage.PathStore
}

// NewHandler creates a request handler. The path store is optional; when
// nil, persistence requests are ignored.
func NewHandler(logger *zap.Logger, store *storage.PathStore) (*Handler, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	cfg := concurrency.LoadConfig()
	logger.Info("Plan handler configured",
		zap.Int("max_concurrent_requests", cfg.ServiceRequests))

	return &Handler{
		logger:  logger,
		tracer:  otel.Tracer("daedalus/service"),
		limiter: concurrency.NewLimiter(cfg.ServiceRequests),
		store:   store,
	}, nil
}

// Handle processes one encoded PlanRequest and returns the result. Errors
// never escape: they are reported in the result's Error field so the caller
// always gets a reply to send.
func (h *Handler) Handle(ctx context.Context, data []byte) *PlanResult {
	sessionID := uuid.New().String()
	result := &PlanResult{SessionID: sessionID}
	logger := h.logger.With(zap.String("session_id", sessionID))

	ctx, span := h.tracer.Start(ctx, "service.plan",
		trace.WithAttributes(attribute.String("session_id", sessionID)))
	defer span.End()

	var req PlanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		result.Error = daederrors.NewError("invalid_request", "failed to decode plan request", err).Error()
		return result
	}
	if err := req.Validate(); err != nil {
		result.Error = daederrors.NewError("invalid_request", "plan request failed validation", err).Error()
		return result
	}

	if err := h.limiter.GoSync(ctx, func() error {
		return h.solve(ctx, &req, result, logger)
	}); err != nil {
		logger.Error("Plan request failed", zap.Error(err))
		result.Error = daederrors.NewError("plan_failed", "planning did not complete", err).Error()
	}
	return result
}

func (h *Handler) solve(ctx context.Context, req *PlanRequest, result *PlanResult, logger *zap.Logger) error {
	def, err := req.buildProblem()
	if err != nil {
		return err
	}

	p, err := planner.NewPlanner(def, logger, nil)
	if err != nil {
		return err
	}
	if req.Threads > 0 {
		p.SetThreadCount(req.Threads)
	}
	if req.GoalBias != nil {
		if err := p.SetGoalBias(*req.GoalBias); err != nil {
			return err
		}
	}
	if req.Rho != nil {
		if err := p.SetRho(*req.Rho); err != nil {
			return err
		}
	}

	achieved, err := p.Solve(ctx, req.Duration())
	if err != nil {
		return err
	}

	result.Found = achieved
	// +Inf means no extension ever succeeded; the field stays unset so the
	// reply still encodes.
	if diff := def.Difference(); !math.IsInf(diff, 1) {
		result.Difference = &diff
	}
	if path, approximate := def.SolutionPath(); path != nil {
		result.Approximate = approximate
		result.Path = make([][]float64, path.Len())
		for i, st := range path.States {
			result.Path[i] = append([]float64(nil), st...)
		}
	}

	states := p.GetStates()
	result.StateCount = len(states)
	if req.IncludeStates {
		result.States = make([][]float64, len(states))
		for i, st := range states {
			result.States[i] = append([]float64(nil), st...)
		}
	}

	if req.Persist && h.store != nil && len(result.Path) > 0 {
		doc := storage.NewPathDocument(result.SessionID, def, achieved)
		url, err := h.store.SavePath(ctx, doc)
		if err != nil {
			// Persistence is best effort; the reply still carries the path.
			logger.Warn("Failed to persist solution path", zap.Error(err))
		} else {
			result.BlobURL = url
		}
	}

	return nil
}
