// Package app exposes the CampTrack operations to the CLI and MCP callers.
// It serializes access to the registry, ledger and mailbox and emits a
// notification after every successful camp mutation.
package app

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	platformotel "github.com/louisbranch/camptrack/internal/platform/otel"
	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
	"github.com/louisbranch/camptrack/internal/services/notifications/render"
)

const tracerName = "github.com/louisbranch/camptrack/internal/services/camps/app"

// Notification categories used for camp events.
const (
	CategoryCamp       = "CAMP"
	CategoryFood       = "FOOD"
	CategoryAssignment = "ASSIGNMENT"
	CategoryIncident   = "INCIDENT"
	CategoryCampers    = "CAMPERS"
	CategoryMessaging  = "MESSAGING"
)

// Options configures optional service collaborators.
type Options struct {
	// Localizer renders notification copy. Defaults to an English printer.
	Localizer render.Localizer
	Logger    *zap.Logger
	Tracer    trace.Tracer
}

// Service is the single entry point for CampTrack operations.
type Service struct {
	mu       sync.Mutex
	registry *camps.Registry
	ledger   *notifications.Ledger
	mailbox  *notifications.Mailbox
	loc      render.Localizer
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewService wires loaded domain components into a service.
func NewService(registry *camps.Registry, ledger *notifications.Ledger, mailbox *notifications.Mailbox, opts Options) *Service {
	if opts.Localizer == nil {
		opts.Localizer = message.NewPrinter(language.English)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tracer == nil {
		opts.Tracer = platformotel.Tracer(tracerName)
	}
	return &Service{
		registry: registry,
		ledger:   ledger,
		mailbox:  mailbox,
		loc:      opts.Localizer,
		logger:   opts.Logger,
		tracer:   opts.Tracer,
	}
}

// event is one notification emitted after a mutation.
type event struct {
	topic    string
	level    notifications.Level
	category string
	payload  render.Payload
}

// notify records an event. Failures are logged and never fail the mutation
// that produced the event.
func (s *Service) notify(ctx context.Context, e event) {
	out := render.Render(s.loc, render.Input{Topic: e.topic, Payload: e.payload})
	notificationContext := map[string]string{"topic": e.topic}
	if e.payload.Camp != "" {
		notificationContext["camp"] = e.payload.Camp
	}
	if e.payload.Leader != "" {
		notificationContext["leader"] = e.payload.Leader
	}
	_, added, err := s.ledger.Add(ctx, notifications.AddInput{
		Message:  out.BodyText,
		Level:    string(e.level),
		Category: e.category,
		Context:  notificationContext,
	})
	if err != nil {
		s.logger.Warn("notification not recorded", zap.String("topic", e.topic), zap.Error(err))
		return
	}
	if !added {
		s.logger.Debug("notification muted", zap.String("topic", e.topic), zap.String("category", e.category))
	}
}

// start opens a span for op and locks the service for its duration. The
// returned function ends both.
func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	s.mu.Lock()
	ctx, span := s.tracer.Start(ctx, "camptrack."+op, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
			s.logger.Info("operation failed", zap.String("op", op), zap.Error(*errp))
		}
		span.End()
		s.mu.Unlock()
	}
}
