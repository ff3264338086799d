package domain

import (
	"context"
	"time"
)

// User is a registered account. Every registrant is granted the staff flag,
// making the account organizer-capable.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
}

// Identity is the authenticated caller, threaded explicitly from the auth
// middleware into every service call that needs it. A nil *Identity means
// anonymous.
type Identity struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// RegisterInput carries the fields for account registration.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// ProfileInput carries the writable profile fields. Nil pointers leave the
// current value unchanged.
type ProfileInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(identity *Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated identity.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *User) error
}

// UserService defines registration, login, and profile operations.
type UserService interface {
	Register(ctx context.Context, input *RegisterInput) (*User, error)
	// Login checks credentials and returns a signed token plus the profile.
	// Failures are reported as ErrInvalidCredentials without disclosing which
	// field was wrong, or ErrInactiveAccount for disabled accounts.
	Login(ctx context.Context, username, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, actor *Identity, input *ProfileInput) (*User, error)
}
