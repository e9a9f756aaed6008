// Package audit records order events asynchronously. Events go to an actor
// that writes them to a Sink, so callers never wait on the audit store.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/possales/pkg/repository"
	"go.uber.org/zap"
)

const (
	ActionOrderFinalized = "order_finalized"

	serviceName  = "possales"
	writeTimeout = 5 * time.Second
)

type Event struct {
	Action  string
	OrderID uint
	UserID  uint
	Data    map[string]interface{}
	At      time.Time
}

type Sink interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

type Recorder struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func NewRecorder(sink Sink, logger *zap.Logger) (*Recorder, error) {
	logger = logger.Named("audit")
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &auditActor{sink: sink, logger: logger}
	})
	pid, err := system.Root.SpawnNamed(props, "audit-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn audit actor: %w", err)
	}

	return &Recorder{system: system, pid: pid, logger: logger}, nil
}

// Record queues e and returns immediately.
func (r *Recorder) Record(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	r.system.Root.Send(r.pid, &e)
}

// Stop waits for queued events to be written, then stops the actor.
func (r *Recorder) Stop() {
	if err := r.system.Root.PoisonFuture(r.pid).Wait(); err != nil {
		r.logger.Warn("Audit actor did not stop cleanly", zap.Error(err))
	}
	r.system.Shutdown()
}

type auditActor struct {
	sink   Sink
	logger *zap.Logger
}

func (a *auditActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.logger.Info("Audit actor started")

	case *Event:
		wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		err := a.sink.CreateAuditLog(wctx, &repository.AuditLog{
			Service:   serviceName,
			Action:    msg.Action,
			EntityID:  msg.OrderID,
			UserID:    msg.UserID,
			Data:      msg.Data,
			CreatedAt: msg.At,
		})
		if err != nil {
			a.logger.Error("Failed to write audit log",
				zap.String("action", msg.Action),
				zap.Uint("order_id", msg.OrderID),
				zap.Error(err))
		}

	case *actor.Stopping:
		a.logger.Info("Audit actor stopping")
	}
}
