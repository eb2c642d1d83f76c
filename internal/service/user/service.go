package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/email"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/token"
)

const verificationTokenBytes = 32

type UserServiceImpl struct {
	user.UserRepository
	emailService email.EmailService
	// verifyURL is the front-end page that posts the token back.
	verifyURL string
}

func NewUserService(userRepo user.UserRepository, emailService email.EmailService, publicBaseURL string) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepo,
		emailService:   emailService,
		verifyURL:      strings.TrimRight(publicBaseURL, "/") + "/verify-email",
	}
}

// FindOrCreateByLine implements user.UserService.
func (s *UserServiceImpl) FindOrCreateByLine(ctx context.Context, lineUserID string, displayName string, pictureURL *string) (user.User, error) {
	existing, err := s.UserRepository.GetByLineUserID(ctx, lineUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, fmt.Errorf("failed to get user by line id: %w", err)
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = "LINE user"
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		LineUserID:  lineUserID,
		DisplayName: displayName,
		PictureURL:  pictureURL,
	})
	if errors.Is(err, user.ErrLineUserExists) {
		// Lost a race with a concurrent first login.
		return s.UserRepository.GetByLineUserID(ctx, lineUserID)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", created.ID)
	return created, nil
}

// GetProfile implements user.UserService.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (user.UserResponse, error) {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

// UpdateProfile implements user.UserService.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.DisplayName != nil && *req.DisplayName != u.DisplayName {
		u, err = s.UserRepository.UpdateProfile(ctx, u.ID, *req.DisplayName, nil)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	if req.Email != nil && !sameEmail(u.Email, *req.Email) {
		u, err = s.changeEmail(ctx, u, *req.Email)
		if err != nil {
			return user.UserResponse{}, err
		}
	}

	return user.NewUserResponse(u), nil
}

func (s *UserServiceImpl) changeEmail(ctx context.Context, u user.User, address string) (user.User, error) {
	if address == "" {
		updated, err := s.UserRepository.SetEmail(ctx, u.ID, nil, nil)
		if err != nil {
			return user.User{}, fmt.Errorf("failed to clear email: %w", err)
		}
		return updated, nil
	}

	verificationToken, err := token.Generate(verificationTokenBytes)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to generate verification token: %w", err)
	}

	updated, err := s.UserRepository.SetEmail(ctx, u.ID, &address, &verificationToken)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to set email: %w", err)
	}

	link := s.verifyURL + "?token=" + verificationToken
	if err := s.emailService.SendEmailVerification(ctx, address, updated.DisplayName, link); err != nil {
		// The address is stored; the user can request the link again by re-saving it.
		slog.Error("failed to send verification email", "user_id", u.ID, "error", err)
	}

	return updated, nil
}

// VerifyEmail implements user.UserService.
func (s *UserServiceImpl) VerifyEmail(ctx context.Context, req user.VerifyEmailRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.VerifyEmail(ctx, req.Token)
	if err != nil {
		return user.UserResponse{}, err
	}

	return user.NewUserResponse(u), nil
}

func sameEmail(current *string, next string) bool {
	if current == nil {
		return next == ""
	}
	return *current == next
}
