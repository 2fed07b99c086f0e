package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/planwerk/planwerk/internal/domain"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name       string
		input      RegisterInput
		wantErr    error
		setupStore func(*MockStore)
	}{
		{
			name: "success",
			input: RegisterInput{
				Username:        "maria",
				Email:           "maria@example.com",
				Password:        "pw1234",
				PasswordConfirm: "pw1234",
			},
		},
		{
			name: "missing fields",
			input: RegisterInput{
				Username: "maria",
				Email:    "maria@example.com",
			},
			wantErr: ErrMissingFields,
		},
		{
			name: "password mismatch",
			input: RegisterInput{
				Username:        "maria",
				Email:           "maria@example.com",
				Password:        "pw1234",
				PasswordConfirm: "pw9999",
			},
			wantErr: ErrPasswordMismatch,
		},
		{
			name: "invalid email",
			input: RegisterInput{
				Username:        "maria",
				Email:           "not-an-email",
				Password:        "pw1234",
				PasswordConfirm: "pw1234",
			},
			wantErr: ErrInvalidEmail,
		},
		{
			name: "duplicate email",
			input: RegisterInput{
				Username:        "maria",
				Email:           "taken@example.com",
				Password:        "pw1234",
				PasswordConfirm: "pw1234",
			},
			wantErr: domain.ErrUserAlreadyExists,
			setupStore: func(m *MockStore) {
				m.users["u1"] = &domain.User{ID: "u1", Email: "taken@example.com"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewMockStore()
			if tt.setupStore != nil {
				tt.setupStore(st)
			}

			svc := NewUserService(st, zerolog.Nop())
			user, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if user.Username != tt.input.Username {
				t.Errorf("expected username %s, got %s", tt.input.Username, user.Username)
			}
			if user.PasswordHash == tt.input.Password {
				t.Error("password stored in plain text")
			}
		})
	}
}

func TestUserService_Register_FirstUserIsAdmin(t *testing.T) {
	st := NewMockStore()
	svc := NewUserService(st, zerolog.Nop())

	first, err := svc.Register(context.Background(), RegisterInput{
		Username:        "first",
		Email:           "first@example.com",
		Password:        "pw1234",
		PasswordConfirm: "pw1234",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.IsAdmin {
		t.Error("expected first registered user to be admin")
	}
	if domain.HasAdminSettings(first) {
		t.Error("admin settings must only attach on explicit promotion")
	}

	second, err := svc.Register(context.Background(), RegisterInput{
		Username:        "second",
		Email:           "second@example.com",
		Password:        "pw1234",
		PasswordConfirm: "pw1234",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.IsAdmin {
		t.Error("expected second registered user not to be admin")
	}
}

func TestUserService_Register_IdentityProvider(t *testing.T) {
	st := NewMockStore()
	st.passwordLogin = false
	svc := NewUserService(st, zerolog.Nop())

	user, err := svc.Register(context.Background(), RegisterInput{
		Username:        "cloudy",
		Email:           "cloudy@example.com",
		Password:        "pw1234",
		PasswordConfirm: "pw1234",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("cloud profile must not carry a password hash")
	}
	if len(st.identityMade) != 1 || st.identityMade[0] != "cloudy@example.com" {
		t.Errorf("expected identity account for cloudy@example.com, got %v", st.identityMade)
	}
	if _, exists := st.users[user.ID]; !exists {
		t.Error("expected profile document to be stored")
	}
}

func TestUserService_Authenticate(t *testing.T) {
	const password = "test1234"

	tests := []struct {
		name       string
		email      string
		password   string
		wantErr    error
		setupStore func(*MockStore, string)
	}{
		{
			name:     "success",
			email:    "user@example.com",
			password: password,
			setupStore: func(m *MockStore, hash string) {
				m.users["u1"] = &domain.User{ID: "u1", Email: "user@example.com", PasswordHash: hash}
			},
		},
		{
			name:     "wrong password",
			email:    "user@example.com",
			password: "falsch",
			wantErr:  domain.ErrInvalidCredentials,
			setupStore: func(m *MockStore, hash string) {
				m.users["u1"] = &domain.User{ID: "u1", Email: "user@example.com", PasswordHash: hash}
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: password,
			wantErr:  domain.ErrInvalidCredentials,
		},
	}

	hash := hashPassword(t, password)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewMockStore()
			if tt.setupStore != nil {
				tt.setupStore(st, hash)
			}

			svc := NewUserService(st, zerolog.Nop())
			user, err := svc.Authenticate(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if user.Email != tt.email {
				t.Errorf("expected email %s, got %s", tt.email, user.Email)
			}
		})
	}
}

func TestUserService_Authenticate_CloudSkipsPasswordCheck(t *testing.T) {
	st := NewMockStore()
	st.passwordLogin = false
	st.users["u1"] = &domain.User{ID: "u1", Email: "cloud@example.com"}

	svc := NewUserService(st, zerolog.Nop())
	user, err := svc.Authenticate(context.Background(), "cloud@example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected user u1, got %s", user.ID)
	}
}

func TestUserService_SetAdminStatus(t *testing.T) {
	tests := []struct {
		name      string
		actorID   string
		targetID  string
		isAdmin   bool
		wantErr   error
		wantAdmin bool
	}{
		{
			name:      "promote",
			actorID:   "admin",
			targetID:  "member",
			isAdmin:   true,
			wantAdmin: true,
		},
		{
			name:      "demote other",
			actorID:   "admin",
			targetID:  "other-admin",
			isAdmin:   false,
			wantAdmin: false,
		},
		{
			name:     "self demotion blocked",
			actorID:  "admin",
			targetID: "admin",
			isAdmin:  false,
			wantErr:  domain.ErrSelfDemotion,
		},
		{
			name:     "unknown target",
			actorID:  "admin",
			targetID: "ghost",
			isAdmin:  true,
			wantErr:  domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewMockStore()
			st.users["admin"] = &domain.User{ID: "admin", Email: "admin@example.com", IsAdmin: true}
			st.users["member"] = &domain.User{ID: "member", Email: "member@example.com"}
			st.users["other-admin"] = &domain.User{ID: "other-admin", Email: "oa@example.com", IsAdmin: true}

			svc := NewUserService(st, zerolog.Nop())
			user, err := svc.SetAdminStatus(context.Background(), tt.actorID, tt.targetID, tt.isAdmin)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if user.IsAdmin != tt.wantAdmin {
				t.Errorf("expected is_admin=%v, got %v", tt.wantAdmin, user.IsAdmin)
			}
		})
	}
}

func TestUserService_SetAdminStatus_AttachesSettingsOnce(t *testing.T) {
	st := NewMockStore()
	st.users["admin"] = &domain.User{ID: "admin", IsAdmin: true}
	st.users["member"] = &domain.User{ID: "member"}

	svc := NewUserService(st, zerolog.Nop())

	user, err := svc.SetAdminStatus(context.Background(), "admin", "member", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !domain.HasAdminSettings(user) {
		t.Fatal("expected default admin settings after promotion")
	}

	// A later demotion keeps the stored settings.
	user, err = svc.SetAdminStatus(context.Background(), "admin", "member", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !domain.HasAdminSettings(user) {
		t.Error("demotion must not remove stored admin settings")
	}
}

func TestUserService_SetAdminStatus_RollsBackOnClaimFailure(t *testing.T) {
	st := NewMockStore()
	st.users["admin"] = &domain.User{ID: "admin", IsAdmin: true}
	st.users["member"] = &domain.User{ID: "member"}
	st.claimErr = errBackend

	svc := NewUserService(st, zerolog.Nop())

	_, err := svc.SetAdminStatus(context.Background(), "admin", "member", true)
	if err == nil {
		t.Fatal("expected error when claim update fails")
	}
	if st.users["member"].IsAdmin {
		t.Error("expected admin flag rolled back after claim failure")
	}
}

func TestUserService_PromoteByEmail(t *testing.T) {
	st := NewMockStore()
	st.users["member"] = &domain.User{ID: "member", Email: "member@example.com"}

	svc := NewUserService(st, zerolog.Nop())

	user, err := svc.PromoteByEmail(context.Background(), "member@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsAdmin {
		t.Error("expected user to be admin after promotion")
	}

	if _, err := svc.PromoteByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected domain.ErrUserNotFound, got %v", err)
	}
}
