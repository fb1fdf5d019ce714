package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/realtime"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
	"github.com/anonto42/campus-connect/backend/pkg/logger"
	"github.com/anonto42/campus-connect/backend/pkg/worker"
)

// Audience selects how the recipients of an event are resolved.
type Audience int

const (
	// AudienceDirect is the single Recipient of the event.
	AudienceDirect Audience = iota
	// AudienceGroup is every member of Group except the actor.
	AudienceGroup
	// AudienceAdmins is every user with the admin role.
	AudienceAdmins
)

// Event describes one triggering action to fan out.
type Event struct {
	Audience  Audience
	Actor     string
	Recipient string
	Group     *models.Group

	Subject models.Subject
	Render  Renderer

	// DomainEvent, when set, is emitted to each recipient before the
	// notification. DomainPayload builds the per-recipient body.
	DomainEvent   string
	DomainPayload func(recipient string) interface{}
	// EchoActor also sends the domain event to the actor's own channel.
	EchoActor bool
}

// Router resolves the recipients of an event and delivers to each of them.
type Router struct {
	users      repositories.UserRepository
	aggregator *Aggregator
	transport  realtime.Transport
	pool       *worker.Pool
}

func NewRouter(users repositories.UserRepository, aggregator *Aggregator, transport realtime.Transport, pool *worker.Pool) *Router {
	return &Router{users: users, aggregator: aggregator, transport: transport, pool: pool}
}

// ResolveRecipients returns the identities that must be notified of ev.
func (r *Router) ResolveRecipients(ctx context.Context, ev Event) ([]string, error) {
	switch ev.Audience {
	case AudienceDirect:
		if ev.Recipient == "" {
			return nil, apperrors.InvalidInput("Recipient is required")
		}
		return []string{ev.Recipient}, nil

	case AudienceGroup:
		if ev.Group == nil {
			return nil, apperrors.InvalidInput("Group is required")
		}
		recipients := make([]string, 0, len(ev.Group.Members))
		for _, m := range ev.Group.Members {
			if m != ev.Actor {
				recipients = append(recipients, m)
			}
		}
		return recipients, nil

	case AudienceAdmins:
		admins, err := r.users.ListIDsByRole(ctx, models.RoleAdmin)
		if err != nil {
			return nil, apperrors.Storage(err, "list admins")
		}
		if len(admins) == 0 {
			return nil, apperrors.NoRecipients("No admins found to notify")
		}
		return admins, nil
	}
	return nil, apperrors.InvalidInput("Unknown audience")
}

// Fanout resolves the recipients of ev and dispatches to them.
func (r *Router) Fanout(ctx context.Context, ev Event) error {
	recipients, err := r.ResolveRecipients(ctx, ev)
	if err != nil {
		return err
	}
	return r.Dispatch(ctx, ev, recipients)
}

// Dispatch delivers ev to recipients. Every recipient is attempted; the
// first notification storage failure is returned after all have run.
// Recipients without a live session are skipped by the transport.
func (r *Router) Dispatch(ctx context.Context, ev Event, recipients []string) error {
	if ev.EchoActor && ev.DomainEvent != "" && ev.Actor != "" {
		emit(ctx, r.transport, ev.Actor, ev.DomainEvent, r.domainPayload(ev, ev.Actor))
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	deliver := func(ctx context.Context, recipient string) {
		if ev.DomainEvent != "" {
			emit(ctx, r.transport, recipient, ev.DomainEvent, r.domainPayload(ev, recipient))
		}
		if _, err := r.aggregator.Upsert(ctx, recipient, ev.Subject, ev.Render); err != nil {
			logger.Error("notification upsert failed",
				zap.String("recipient", recipient),
				zap.String("kind", string(ev.Subject.Kind())),
				zap.Error(err),
			)
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	}

	if r.pool == nil || len(recipients) < 2 {
		for _, recipient := range recipients {
			deliver(ctx, recipient)
		}
	} else {
		r.pool.Each(ctx, recipients, deliver)
	}
	return firstErr
}

func (r *Router) domainPayload(ev Event, recipient string) interface{} {
	if ev.DomainPayload == nil {
		return nil
	}
	return ev.DomainPayload(recipient)
}
