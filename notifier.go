package auth

import "context"

// ResetIntent is handed to the notification collaborator when a password
// reset is requested. The session id doubles as the reset record id.
type ResetIntent struct {
	Session  string
	Username string
}

// Notifier is the outbound notification collaborator. Delivery is
// fire-and-forget: failures are logged by the caller, never propagated back
// to the requester, so the acknowledgment stays identical either way.
type Notifier interface {
	Notify(ctx context.Context, email string, intent ResetIntent) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, email string, intent ResetIntent) error

func (f NotifierFunc) Notify(ctx context.Context, email string, intent ResetIntent) error {
	if f == nil {
		return nil
	}
	return f(ctx, email, intent)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, ResetIntent) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
