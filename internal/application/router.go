package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"siren-node/internal/domain"
	"siren-node/internal/observe"
)

// SirenControl is what the router needs from the controller.
type SirenControl interface {
	PlayMessage(ctx context.Context, message string, opts PlayOptions) error
	StopAudio(ctx context.Context) error
}

// Router maps inbound command events to controller calls after identity and
// connectivity filtering. One Router serves one device.
type Router struct {
	deviceID string
	siren    SirenControl
	gate     ConnectivityGate
	acks     AckEmitter
	metrics  *observe.Metrics
	logger   *slog.Logger
}

func NewRouter(
	deviceID string,
	siren SirenControl,
	gate ConnectivityGate,
	acks AckEmitter,
	metrics *observe.Metrics,
	logger *slog.Logger,
) *Router {
	return &Router{
		deviceID: deviceID,
		siren:    siren,
		gate:     gate,
		acks:     acks,
		metrics:  metrics,
		logger:   logger,
	}
}

// HandleSingle processes a single-target command. A command addressed to
// another device is a silent no-op: no acknowledgement, no state change.
func (r *Router) HandleSingle(ctx context.Context, cmd domain.Command) {
	if cmd.TargetID != r.deviceID {
		r.logger.Debug("command not for this siren", "targetId", cmd.TargetID)
		return
	}
	r.dispatch(ctx, cmd)
}

// HandleMulti processes a multi-target command; it applies only when this
// device's identifier is in the target list.
func (r *Router) HandleMulti(ctx context.Context, cmd domain.Command) {
	if !cmd.Targets(r.deviceID) {
		r.logger.Debug("multi command not for this siren", "targets", len(cmd.TargetIDs))
		return
	}
	r.logger.Info("siren included in multi-target command")
	r.dispatch(ctx, cmd)
}

func (r *Router) dispatch(ctx context.Context, cmd domain.Command) {
	lang := domain.ResolveLanguage(cmd.Language)
	if lang != strings.ToLower(cmd.Language) {
		r.logger.Warn("unsupported language, falling back",
			"requested", cmd.Language, "fallback", lang)
	}

	if !r.gate.Allowed(ctx, cmd.ConnectionType) {
		r.logger.Warn("required connection type not available",
			"connectionType", cmd.ConnectionType)
		r.metrics.CommandsRejected.Add(ctx, 1,
			metric.WithAttributes(attribute.String("reason", "connectivity")))
		if err := r.acks.Emit(ctx, domain.EventAckOff); err != nil {
			r.logger.Warn("emitting acknowledgement", "event", domain.EventAckOff, "error", err)
		}
		return
	}

	opts := PlayOptions{
		AlertType:  cmd.AlertType,
		Language:   lang,
		GapSeconds: cmd.GapSeconds,
		Frequency:  cmd.Frequency,
	}

	var err error
	switch cmd.Action {
	case domain.ActionOn:
		r.logger.Info("executing 'on' command", "alertType", cmd.AlertType)
		err = r.siren.PlayMessage(ctx, "", opts)
	case domain.ActionOff:
		r.logger.Info("executing 'off' command")
		err = r.siren.StopAudio(ctx)
	case "":
		r.logger.Warn("command with empty action, ignoring")
		return
	default:
		r.logger.Info("playing message", "length", len(cmd.Action), "language", lang)
		err = r.siren.PlayMessage(ctx, cmd.Action, opts)
	}

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrBusy):
		// Already counted and logged by the controller.
	default:
		r.logger.Error("command execution failed", "action", cmd.Action, "error", err)
	}
}
