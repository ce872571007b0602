package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// SetAccountStatusMessage activates or deactivates an account. Deactivation
// blocks new logins immediately; tokens already in flight expire on their own.
type SetAccountStatusMessage struct {
	UserID int64    `json:"user_id" doc:"Account being updated"`
	Active bool     `json:"active" doc:"Target active flag"`
	Actor  ActorRef `json:"-"`
}

func (p SetAccountStatusMessage) Type() string { return "user.account_status" }

type SetAccountStatusHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

// NewSetAccountStatusHandler creates a handler with sane defaults.
func NewSetAccountStatusHandler(repo RepositoryManager) *SetAccountStatusHandler {
	return &SetAccountStatusHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit status change events.
func (h *SetAccountStatusHandler) WithActivitySink(sink ActivitySink) *SetAccountStatusHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *SetAccountStatusHandler) WithLogger(logger Logger) *SetAccountStatusHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SetAccountStatusHandler) Execute(ctx context.Context, event SetAccountStatusMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account status change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SetAccountStatusHandler) execute(ctx context.Context, event SetAccountStatusMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var previous bool

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByID(ctx, event.UserID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for status change")
		}

		previous = user.IsActive
		if previous == event.Active {
			return nil
		}

		return h.repo.Users().SetActiveTx(ctx, tx, user.ID, event.Active)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account status transaction failed")
	}

	if previous == event.Active {
		return nil
	}

	actor := event.Actor
	if actor.Type == "" {
		actor.Type = "system"
	}

	if err := h.activity.Record(ctx, ActivityEvent{
		EventType: ActivityEventAccountStatusChanged,
		Actor:     actor,
		UserID:    event.UserID,
		Metadata: map[string]any{
			"active": event.Active,
		},
		OccurredAt: time.Now(),
	}); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}

	return nil
}
