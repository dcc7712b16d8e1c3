package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/types"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	ActivationMailTemplate = "activation-mail"
	ActivationMailSubject  = "Activate your account!"
)

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*entity.User, error)
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

// Notifier delivers templated mail. Implementations may deliver
// asynchronously; a returned error means the mail was not accepted.
type Notifier interface {
	Send(ctx context.Context, mail *dto.Mail) error
}

type UserAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*dto.RegisterResult, error)
	Activate(ctx context.Context, req *types.ActivateRequest) (*entity.User, error)
	Login(ctx context.Context, req *types.LoginRequest) (*dto.LoginResult, error)
	GetUser(ctx context.Context, userID uint64) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
}

type UserAuthServiceOption func(*userAuthService)

type userAuthService struct {
	userRepo userRepository
	hasher   PasswordHasher
	tickets  ActivationTicketCodec
	tokens   SessionTokenIssuer
	notifier Notifier
	policy   config.PasswordPolicy
	now      func() time.Time
}

func NewUserAuthService(
	userRepo userRepository,
	hasher PasswordHasher,
	tickets ActivationTicketCodec,
	tokens SessionTokenIssuer,
	notifier Notifier,
	cfg *config.Config,
	opts ...UserAuthServiceOption,
) UserAuthService {
	svc := &userAuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tickets:  tickets,
		tokens:   tokens,
		notifier: notifier,
		policy:   cfg.Password.Policy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithClock(now func() time.Time) UserAuthServiceOption {
	return func(s *userAuthService) {
		if now != nil {
			s.now = now
		}
	}
}

func (s *userAuthService) Register(ctx context.Context, req *types.RegisterRequest) (*dto.RegisterResult, error) {
	email := NormalizeEmail(req.Email)

	if err := s.ensureUnique(ctx, email, req.PhoneNumber); err != nil {
		return nil, err
	}

	if err := s.policy.Validate(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.Issue(&entity.PendingUser{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	err = s.notifier.Send(ctx, &dto.Mail{
		Recipient: email,
		Subject:   ActivationMailSubject,
		Template:  ActivationMailTemplate,
		Context: map[string]any{
			"name":           req.Name,
			"activationCode": ticket.Code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("send activation mail: %w", err)
	}

	return &dto.RegisterResult{
		ActivationToken: ticket.Token,
		ExpiresAt:       ticket.ExpiresAt,
	}, nil
}

func (s *userAuthService) Activate(ctx context.Context, req *types.ActivateRequest) (*entity.User, error) {
	pending, err := s.tickets.Redeem(req.ActivationToken, req.ActivationCode)
	if err != nil {
		return nil, err
	}

	// The same ticket stays valid until it expires, and another registration
	// may have been activated in the meantime.
	if err = s.ensureUnique(ctx, pending.Email, pending.PhoneNumber); err != nil {
		return nil, err
	}

	now := s.now()
	user := &entity.User{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		PhoneNumber:  pending.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		case errors.Is(err, repository.ErrDuplicatePhone):
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Debug("activated user persisted")
	return user, nil
}

func (s *userAuthService) Login(ctx context.Context, req *types.LoginRequest) (*dto.LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		User:   user,
		Tokens: tokens,
	}, nil
}

func (s *userAuthService) GetUser(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userAuthService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userAuthService) ensureUnique(ctx context.Context, email, phoneNumber string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}

	existing, err = s.userRepo.FindByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicatePhone
	}

	return nil
}
