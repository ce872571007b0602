package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// AccountRegistrerer is the interface we need to handle new user registrations
type AccountRegistrerer interface {
	RegisterUser(ctx context.Context, email, username, password string) (*User, error)
}

// UserProvider resolves identities from a UserStore and verifies credentials.
// It is the only component that ever sees both the plaintext password and the
// stored hash; neither is retained past the call.
type UserProvider struct {
	store     UserStore
	hasher    PasswordAuthenticator
	Validator func(*User) error
	logger    Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:     store,
		hasher:    BcryptHasher{cost: DefaultBcryptCost},
		logger:    defLogger{},
		Validator: defaultValidator,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// WithHasher overrides the password hasher, e.g. to apply a configured cost.
func (u *UserProvider) WithHasher(h PasswordAuthenticator) *UserProvider {
	if h != nil {
		u.hasher = h
	}
	return u
}

func (u *UserProvider) validate(user *User) error {
	if u.Validator != nil {
		return u.Validator(user)
	}
	return defaultValidator(user)
}

// VerifyIdentity will find the user, compare the password, and return the
// identity. An unknown identifier and a wrong password are the same failure:
// both return ErrInvalidCredentials, and the unknown path still burns a hash
// comparison so the two are not separable by timing either.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			_ = u.hasher.ComparePasswordAndHash(password, dummyPasswordHash)
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := u.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Only after the password matched may the rejection become specific.
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier resolves an identity without touching credentials
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

// RecordLastSeen refreshes the user's last-login timestamp. Single-row
// update; callers treat failures as non-fatal.
func (u *UserProvider) RecordLastSeen(ctx context.Context, identity Identity) error {
	if identity == nil {
		return ErrIdentityNotFound
	}

	user := &User{ID: identity.ID()}
	return u.store.TrackSuccessfulLogin(ctx, user)
}

var _ IdentityProvider = (*UserProvider)(nil)
var _ LastSeenRecorder = (*UserProvider)(nil)

func defaultValidator(u *User) error {
	if u.Role.IsValid() {
		return nil
	}
	return goerrors.New("user has an unknown or invalid role", goerrors.CategoryAuth).
		WithTextCode("INVALID_ROLE").
		WithMetadata(map[string]any{"role": u.Role, "user_id": u.ID})
}
