package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"task_tracker/internal/domain"
	"task_tracker/internal/logger"

	"github.com/nats-io/nats.go"
)

const (
	subjectPrefix   = "tasks."
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
)

// NATS publishes events to tasks.<event type> subjects.
type NATS struct {
	nc *nats.Conn
}

// ConnectNATS dials url and keeps reconnecting in the background.
func ConnectNATS(url string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("task-tracker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	logger.Info("nats connected", "url", url)
	return &NATS{nc: nc}, nil
}

// Subject returns the subject an event of type t is published to.
func Subject(t domain.EventType) string {
	return subjectPrefix + string(t)
}

func (n *NATS) Publish(ctx context.Context, e domain.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.WithContext(ctx).Error("marshal event failed", "type", e.Type, "error", err)
		return
	}

	msg := nats.NewMsg(Subject(e.Type))
	msg.Data = data
	msg.Header.Set(headerUserID, e.UserID.String())
	if rid := logger.RequestID(ctx); rid != "" {
		msg.Header.Set(headerRequestID, rid)
	}

	if err := n.nc.PublishMsg(msg); err != nil {
		logger.WithContext(ctx).Warn("nats publish failed", "subject", msg.Subject, "error", err)
	}
}

// Connected reports whether the connection is currently usable.
func (n *NATS) Connected() bool {
	return n.nc.IsConnected()
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() error {
	if err := n.nc.Drain(); err != nil {
		n.nc.Close()
		return err
	}
	return nil
}
