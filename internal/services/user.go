package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"eventlistings/internal/domain"
)

const minPasswordLength = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repository and auth
// ports. The email service may be nil, in which case no welcome email is
// sent.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, emailService domain.EmailService, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		emailService:   emailService,
		contextTimeout: timeout,
	}
}

func (s *userService) Register(ctx context.Context, input *domain.RegisterInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	errs := domain.FieldErrors{}
	if input.Username == "" {
		errs.Add("username", "Username is required.")
	}
	if input.Email == "" {
		errs.Add("email", "Email is required.")
	} else if !emailRegexp.MatchString(input.Email) {
		errs.Add("email", "Enter a valid email address.")
	}
	if len(input.Password) < minPasswordLength {
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}
	if input.Password != input.PasswordConfirm {
		errs.Add("password_confirm", "Password fields did not match.")
	}

	if input.Username != "" {
		exists, err := s.userRepo.UsernameExists(ctx, input.Username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if exists {
			errs.Add("username", "A user with this username already exists.")
		}
	}
	if input.Email != "" {
		exists, err := s.userRepo.EmailExists(ctx, input.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			errs.Add("email", "A user with this email already exists.")
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Salt:         salt,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		// Every account is organizer-capable.
		IsStaff:    true,
		IsActive:   true,
		DateJoined: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Concurrent registration can slip past the existence checks.
		switch {
		case errors.Is(err, domain.ErrDuplicateUsername):
			errs.Add("username", "A user with this username already exists.")
			return nil, errs
		case errors.Is(err, domain.ErrDuplicateEmail):
			errs.Add("email", "A user with this email already exists.")
			return nil, errs
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeEmailData{
			Email:     user.Email,
			Username:  user.Username,
			FirstName: user.FirstName,
		}
		if err := s.emailService.SendWelcome(ctx, data); err != nil {
			// Registration already succeeded; the email is best effort.
			log.Printf("[EMAIL] Failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, domain.ErrInactiveAccount
	}

	identity := &domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
	}
	token, err := s.tokenIssuer.Issue(identity, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, actor *domain.Identity, input *domain.ProfileInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	errs := domain.FieldErrors{}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			errs.Add("username", "Username is required.")
		} else if username != user.Username {
			exists, err := s.userRepo.UsernameExists(ctx, username)
			if err != nil {
				return nil, fmt.Errorf("check username: %w", err)
			}
			if exists {
				errs.Add("username", "A user with this username already exists.")
			}
			user.Username = username
		}
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if !emailRegexp.MatchString(email) {
			errs.Add("email", "Enter a valid email address.")
		} else if email != user.Email {
			exists, err := s.userRepo.EmailExists(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if exists {
				errs.Add("email", "A user with this email already exists.")
			}
			user.Email = email
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
