package service

import (
	"context"
	"errors"
	"goal_pilot_backend/internal/config"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/util"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestUserProfile(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.users, repository.NewPreferenceRepository(f.db))
	alice := f.seedUser(t, "alice@example.com")
	f.seedUser(t, "bob@example.com")

	if _, err := svc.UpdateProfile(alice.ID, ProfileInput{Name: "Alice", Email: "BOB@example.com"}); !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("taken email: got %v", err)
	}
	if _, err := svc.UpdateProfile(alice.ID, ProfileInput{Name: "Alice", Email: "not-an-email"}); !errors.Is(err, util.ErrInvalidProfile) {
		t.Errorf("invalid email: got %v", err)
	}

	user, err := svc.UpdateProfile(alice.ID, ProfileInput{Name: " Alice A ", Email: "Alice.A@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "Alice A" || user.Email != "alice.a@example.com" {
		t.Errorf("profile = %+v", user)
	}

	if _, err := svc.GetProfile(999); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestUserPreferences(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.users, repository.NewPreferenceRepository(f.db))

	pref, err := svc.GetPreferences(7)
	if err != nil {
		t.Fatal(err)
	}
	if pref.Theme != "system" || !pref.EmailNotifications || pref.DefaultTaskDuration != 30 {
		t.Errorf("defaults = %+v", pref)
	}

	off := false
	saved, err := svc.UpdatePreferences(7, PreferencesInput{Theme: strPtr("dark"), EmailNotifications: &off})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Theme != "dark" || saved.EmailNotifications || saved.ID == 0 {
		t.Errorf("saved = %+v", saved)
	}

	again, err := svc.UpdatePreferences(7, PreferencesInput{WeekStartsOn: strPtr("monday")})
	if err != nil {
		t.Fatal(err)
	}
	if again.Theme != "dark" || again.WeekStartsOn != "monday" || again.EmailNotifications {
		t.Errorf("partial update lost fields: %+v", again)
	}

	for _, in := range []PreferencesInput{
		{Theme: strPtr("neon")},
		{WeekStartsOn: strPtr("friday")},
		{DailyReminderTime: strPtr("25:00")},
	} {
		if _, err := svc.UpdatePreferences(7, in); !errors.Is(err, util.ErrInvalidProfile) {
			t.Errorf("%+v: got %v", in, err)
		}
	}
}

func TestUserPreferencesWithoutTable(t *testing.T) {
	f := newFixture(t)
	if err := f.db.Migrator().DropTable(&model.UserPreference{}); err != nil {
		t.Fatal(err)
	}
	svc := NewUserService(f.users, repository.NewPreferenceRepository(f.db))

	pref, err := svc.GetPreferences(1)
	if err != nil || pref.Timezone != "UTC" {
		t.Fatalf("defaults = %+v, %v", pref, err)
	}
	updated, err := svc.UpdatePreferences(1, PreferencesInput{Timezone: strPtr("Europe/Madrid")})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Timezone != "Europe/Madrid" {
		t.Errorf("merged = %+v", updated)
	}
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	blacklist := NewMemoryTokenBlacklist()
	svc := NewAuthService(f.users, blacklist, cfg)

	user, err := svc.Register("Ana", "Ana@Example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "ana@example.com" || user.Password == "password123" {
		t.Errorf("registered user = %+v", user)
	}
	if _, err := svc.Register("Ana", "ana@example.com", "password123"); !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("duplicate: got %v", err)
	}
	if _, err := svc.Register("Ana", "x@example.com", "short"); !errors.Is(err, util.ErrInvalidProfile) {
		t.Errorf("short password: got %v", err)
	}

	if _, _, err := svc.Login("ana@example.com", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	token, _, err := svc.Login("ANA@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := util.ParseJWT(token, cfg.JWT.Secret)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatal(err)
	}
	revoked, _ := blacklist.IsRevoked(context.Background(), claims.ID)
	if !revoked {
		t.Error("token should be revoked after logout")
	}
}
