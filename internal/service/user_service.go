package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"lingochat-backend/internal/model"
	"lingochat-backend/internal/notify"
	"lingochat-backend/internal/storage"
	"lingochat-backend/pkg/logger"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService manages the single local user profile.
type UserService struct {
	store     storage.Storage
	mailer    notify.Mailer
	publisher notify.Publisher
	mu        sync.Mutex
	now       func() time.Time
}

func NewUserService(store storage.Storage, mailer notify.Mailer, publisher notify.Publisher) *UserService {
	if mailer == nil {
		mailer = notify.NopMailer{}
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &UserService{
		store:     store,
		mailer:    mailer,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *UserService) AvatarOptions() []string {
	out := make([]string, len(model.AvatarOptions))
	copy(out, model.AvatarOptions)
	return out
}

func validAvatar(avatar string) bool {
	for _, a := range model.AvatarOptions {
		if a == avatar {
			return true
		}
	}
	return false
}

func validateProfile(p *model.UserProfile) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if !emailPattern.MatchString(p.Email) {
		return fmt.Errorf("%w: invalid email address %q", ErrInvalidProfile, p.Email)
	}
	if !validAvatar(p.Avatar) {
		return fmt.Errorf("%w: unknown avatar %q", ErrInvalidProfile, p.Avatar)
	}
	return nil
}

// Onboard stores the profile once. Emails are sent best-effort afterwards;
// a delivery failure is reported but does not undo the onboarding.
func (s *UserService) Onboard(ctx context.Context, name, email, avatar string) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.LoadProfile(); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, storage.ErrProfileNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if avatar == "" {
		avatar = model.AvatarOptions[0]
	}

	now := s.now()
	profile := &model.UserProfile{
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Avatar:    avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if err := s.store.SaveProfile(profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	logger.Infof("User %s onboarded", profile.Email)

	s.sendWelcome(ctx, profile)

	out := *profile
	return &out, nil
}

func (s *UserService) sendWelcome(ctx context.Context, p *model.UserProfile) {
	if err := s.mailer.SendWelcome(ctx, p.Name, p.Email); err != nil {
		logger.Warnf("Failed to send welcome email to %s: %v", p.Email, err)
		s.publisher.Publish(notify.LevelWarning, "Welcome email not sent", err.Error())
	} else {
		s.publisher.Publish(notify.LevelSuccess, "Welcome aboard", fmt.Sprintf("A welcome email was sent to %s.", p.Email))
	}

	if err := s.mailer.NotifySender(ctx, p.Name, p.Email); err != nil {
		logger.Warnf("Failed to send registration notice: %v", err)
	}
}

func (s *UserService) Profile() (*model.UserProfile, error) {
	return s.store.LoadProfile()
}

func (s *UserService) UpdateProfile(patch model.UserProfilePatch) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.store.LoadProfile()
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		profile.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		profile.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Avatar != nil {
		profile.Avatar = *patch.Avatar
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	profile.UpdatedAt = s.now()
	if err := s.store.SaveProfile(profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}
