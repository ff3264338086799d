package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlistings/internal/domain"
)

// fakeUserRepo implements domain.UserRepository in memory for tests.
type fakeUserRepo struct {
	byID      map[int64]*domain.User
	nextID    int64
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*domain.User)}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	if u.ID == 0 {
		f.nextID++
		u.ID = f.nextID
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(identity *domain.Identity, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + identity.Username, nil
}

// fakeEmailService records welcome sends.
type fakeEmailService struct {
	sent []*domain.WelcomeEmailData
	err  error
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

func newUserService(repo *fakeUserRepo, emails *fakeEmailService) domain.UserService {
	var emailSvc domain.EmailService
	if emails != nil {
		emailSvc = emails
	}
	return NewUserService(repo, fakePasswordHasher{}, &fakeTokenIssuer{}, time.Hour, emailSvc, testTimeout)
}

func registerInput() *domain.RegisterInput {
	return &domain.RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "sup3rsecret",
		PasswordConfirm: "sup3rsecret",
		FirstName:       "Alice",
		LastName:        "Mwangi",
	}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success grants staff and sends welcome", func(t *testing.T) {
		emails := &fakeEmailService{}
		svc := newUserService(newFakeUserRepo(), emails)

		user, err := svc.Register(ctx, registerInput())
		require.NoError(t, err)
		assert.True(t, user.IsStaff)
		assert.True(t, user.IsActive)
		assert.Equal(t, "hash-sup3rsecret", user.PasswordHash)
		require.Len(t, emails.sent, 1)
		assert.Equal(t, "alice@example.com", emails.sent[0].Email)
	})

	t.Run("email failure does not fail registration", func(t *testing.T) {
		emails := &fakeEmailService{err: errors.New("ses down")}
		svc := newUserService(newFakeUserRepo(), emails)

		_, err := svc.Register(ctx, registerInput())
		require.NoError(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(&domain.User{Username: "bob", Email: "alice@example.com"})
		svc := newUserService(repo, nil)

		_, err := svc.Register(ctx, registerInput())
		var fieldErrs domain.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, []string{"A user with this email already exists."}, fieldErrs["email"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(&domain.User{Username: "alice", Email: "other@example.com"})
		svc := newUserService(repo, nil)

		_, err := svc.Register(ctx, registerInput())
		var fieldErrs domain.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "username")
	})

	t.Run("weak and mismatched passwords aggregated", func(t *testing.T) {
		svc := newUserService(newFakeUserRepo(), nil)
		input := registerInput()
		input.Password = "short"
		input.PasswordConfirm = "different"

		_, err := svc.Register(ctx, input)
		var fieldErrs domain.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, []string{"Password must be at least 8 characters."}, fieldErrs["password"])
		assert.Equal(t, []string{"Password fields did not match."}, fieldErrs["password_confirm"])
	})

	t.Run("create race maps duplicates to field errors", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.createErr = domain.ErrDuplicateEmail
		svc := newUserService(repo, nil)

		_, err := svc.Register(ctx, registerInput())
		var fieldErrs domain.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "email")
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	seeded := func(active bool) *fakeUserRepo {
		repo := newFakeUserRepo()
		repo.add(&domain.User{
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "hash-sup3rsecret",
			Salt:         "salt",
			IsStaff:      true,
			IsActive:     active,
		})
		return repo
	}

	t.Run("success", func(t *testing.T) {
		svc := newUserService(seeded(true), nil)
		token, user, err := svc.Login(ctx, "alice", "sup3rsecret")
		require.NoError(t, err)
		assert.Equal(t, "token-alice", token)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		svc := newUserService(seeded(true), nil)

		_, _, err := svc.Login(ctx, "nobody", "sup3rsecret")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)

		_, _, err = svc.Login(ctx, "alice", "wrongpassword")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		svc := newUserService(seeded(false), nil)
		_, _, err := svc.Login(ctx, "alice", "sup3rsecret")
		require.ErrorIs(t, err, domain.ErrInactiveAccount)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	seeded := func() (*fakeUserRepo, *domain.Identity) {
		repo := newFakeUserRepo()
		u := repo.add(&domain.User{Username: "alice", Email: "alice@example.com", FirstName: "Alice"})
		return repo, &domain.Identity{UserID: u.ID, Username: u.Username}
	}

	t.Run("anonymous rejected", func(t *testing.T) {
		repo, _ := seeded()
		svc := newUserService(repo, nil)
		_, err := svc.UpdateProfile(ctx, nil, &domain.ProfileInput{})
		require.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("partial update", func(t *testing.T) {
		repo, actor := seeded()
		svc := newUserService(repo, nil)

		last := "Wanjiru"
		user, err := svc.UpdateProfile(ctx, actor, &domain.ProfileInput{LastName: &last})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "Wanjiru", user.LastName)
		assert.Equal(t, "Alice", user.FirstName)
	})

	t.Run("taken username rejected", func(t *testing.T) {
		repo, actor := seeded()
		repo.add(&domain.User{Username: "bob", Email: "bob@example.com"})
		svc := newUserService(repo, nil)

		taken := "bob"
		_, err := svc.UpdateProfile(ctx, actor, &domain.ProfileInput{Username: &taken})
		var fieldErrs domain.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "username")
	})
}
