package service

import (
	"context"
	"errors"
	"testing"

	"lingochat-backend/internal/model"
	"lingochat-backend/internal/notify"
	"lingochat-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	welcomeErr error
	welcomed   []string
	notified   []string
}

func (m *fakeMailer) SendWelcome(_ context.Context, name, email string) error {
	m.welcomed = append(m.welcomed, email)
	return m.welcomeErr
}

func (m *fakeMailer) NotifySender(_ context.Context, name, email string) error {
	m.notified = append(m.notified, email)
	return nil
}

func TestOnboard(t *testing.T) {
	store := storage.NewMemoryStorage()
	mailer := &fakeMailer{}
	hub := notify.NewHub()
	events, cancel := hub.Subscribe()
	defer cancel()

	svc := NewUserService(store, mailer, hub)

	_, err := svc.Profile()
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)

	profile, err := svc.Onboard(context.Background(), "  Ana  ", "ana@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, model.AvatarOptions[0], profile.Avatar)
	assert.False(t, profile.CreatedAt.IsZero())

	assert.Equal(t, []string{"ana@example.com"}, mailer.welcomed)
	assert.Equal(t, []string{"ana@example.com"}, mailer.notified)
	require.Len(t, events, 1)
	assert.Equal(t, notify.LevelSuccess, (<-events).Level)

	_, err = svc.Onboard(context.Background(), "Bob", "bob@example.com", "")
	assert.ErrorIs(t, err, ErrProfileExists)

	stored, err := svc.Profile()
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", stored.Email)
}

func TestOnboard_Validation(t *testing.T) {
	svc := NewUserService(storage.NewMemoryStorage(), nil, nil)

	cases := []struct {
		name, email, avatar string
	}{
		{"", "ana@example.com", ""},
		{"   ", "ana@example.com", ""},
		{"Ana", "ana@example", ""},
		{"Ana", "ana example@x.com", ""},
		{"Ana", "ana@example.com", "/images/unknown.png"},
	}
	for _, c := range cases {
		_, err := svc.Onboard(context.Background(), c.name, c.email, c.avatar)
		assert.ErrorIs(t, err, ErrInvalidProfile, "%+v", c)
	}

	_, err := svc.Profile()
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
}

func TestOnboard_MailFailureKeepsProfile(t *testing.T) {
	store := storage.NewMemoryStorage()
	hub := notify.NewHub()
	events, cancel := hub.Subscribe()
	defer cancel()

	svc := NewUserService(store, &fakeMailer{welcomeErr: errors.New("smtp down")}, hub)

	_, err := svc.Onboard(context.Background(), "Ana", "ana@example.com", model.AvatarOptions[2])
	require.NoError(t, err)

	n := <-events
	assert.Equal(t, notify.LevelWarning, n.Level)
	assert.Contains(t, n.Description, "smtp down")

	profile, err := store.LoadProfile()
	require.NoError(t, err)
	assert.Equal(t, model.AvatarOptions[2], profile.Avatar)
}

func TestUpdateProfile(t *testing.T) {
	svc := NewUserService(storage.NewMemoryStorage(), nil, nil)

	name := "Ana Maria"
	_, err := svc.UpdateProfile(model.UserProfilePatch{Name: &name})
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)

	_, err = svc.Onboard(context.Background(), "Ana", "ana@example.com", "")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(model.UserProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)

	bad := "not-an-email"
	_, err = svc.UpdateProfile(model.UserProfilePatch{Email: &bad})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	current, err := svc.Profile()
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", current.Email)

	assert.Equal(t, model.AvatarOptions, svc.AvatarOptions())
}
