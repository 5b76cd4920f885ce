// Package control maintains the websocket session to the fleet controller:
// registration on connect, inbound command decoding, outbound
// acknowledgements, and reconnection with backoff.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"siren-node/internal/domain"
)

// Handler receives decoded commands. Each command is dispatched on its own
// goroutine so a blocking playback never starves the read loop; that is what
// lets an "off" command preempt an "on" still playing.
type Handler interface {
	HandleSingle(ctx context.Context, cmd domain.Command)
	HandleMulti(ctx context.Context, cmd domain.Command)
}

// envelope is the wire frame in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Session struct {
	url        string
	deviceID   string
	backoff    time.Duration
	maxBackoff time.Duration
	logger     *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewSession(url, deviceID string, backoff, maxBackoff time.Duration, logger *slog.Logger) *Session {
	return &Session{
		url:        url,
		deviceID:   deviceID,
		backoff:    backoff,
		maxBackoff: maxBackoff,
		logger:     logger,
	}
}

// Run connects and serves the session until ctx is cancelled, redialing with
// doubling backoff after every disconnect. Registration is re-announced on
// each successful connect.
func (s *Session) Run(ctx context.Context, handler Handler) error {
	delay := s.backoff
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := websocket.Dial(ctx, s.url, nil)
		if err != nil {
			s.logger.Warn("control session dial failed", "url", s.url, "error", err, "retryIn", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.maxBackoff {
				delay = s.maxBackoff
			}
			continue
		}
		delay = s.backoff

		s.setConn(conn)
		s.logger.Info("control session established", "url", s.url)

		if err := s.Emit(ctx, domain.EventRegister); err != nil {
			s.logger.Warn("registration failed", "error", err)
		}

		err = s.readLoop(ctx, conn, handler)
		s.setConn(nil)
		conn.Close(websocket.StatusNormalClosure, "")

		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("control session lost, reconnecting", "error", err)
	}
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn, handler Handler) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("discarding malformed frame", "error", err)
			continue
		}

		switch env.Event {
		case domain.EventControlSingle, domain.EventControlMulti:
			var cmd domain.Command
			if err := json.Unmarshal(env.Data, &cmd); err != nil {
				s.logger.Warn("discarding malformed command", "event", env.Event, "error", err)
				continue
			}
			cmd.ApplyDefaults()
			if env.Event == domain.EventControlSingle {
				go handler.HandleSingle(ctx, cmd)
			} else {
				go handler.HandleMulti(ctx, cmd)
			}
		default:
			s.logger.Debug("ignoring event", "event", env.Event)
		}
	}
}

// Emit sends an event frame carrying this device's identifier. It fails when
// the session is down; callers treat that as best-effort.
func (s *Session) Emit(ctx context.Context, event string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("control session not connected")
	}

	data, err := json.Marshal(envelope{
		Event: event,
		Data:  mustJSON(s.deviceID),
	})
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (s *Session) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func mustJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
