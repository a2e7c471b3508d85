package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blog/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	listByIDsFn     func(ctx context.Context, ids []int64) ([]domain.User, error)
	createFn        func(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	if m.listByIDsFn != nil {
		return m.listByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, email, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, Email: email, PasswordHash: passwordHash}, nil
}

type mockTokens struct {
	issueFn  func(userID int64) (string, error)
	verifyFn func(token string) (int64, error)
}

func (m *mockTokens) Issue(userID int64) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID)
	}
	return "token", nil
}

func (m *mockTokens) Verify(token string) (int64, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return 0, errors.New("invalid")
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		createFn: func(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
			if username != "a" || email != "a@x.com" {
				t.Errorf("unexpected user %q %q", username, email)
			}
			if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("p")) != nil {
				t.Error("password was not hashed with bcrypt")
			}
			return &domain.User{ID: 7, Username: username, Email: email}, nil
		},
	}
	tokens := &mockTokens{issueFn: func(userID int64) (string, error) {
		if userID != 7 {
			t.Errorf("expected token for user 7, got %d", userID)
		}
		return "signed", nil
	}}

	svc := NewAuthService(users, tokens)
	user, token, err := svc.Register(ctx, " a ", "A@X.com", "p")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != 7 || token != "signed" {
		t.Errorf("unexpected result %+v %q", user, token)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	taken := &domain.User{ID: 1, Username: "taken", Email: "taken@x.com"}
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			if email == taken.Email {
				return taken, nil
			}
			return nil, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			if username == taken.Username {
				return taken, nil
			}
			return nil, nil
		},
		createFn: func(_ context.Context, username, _, _ string) (*domain.User, error) {
			if username == "racer" {
				return nil, domain.ErrDuplicate
			}
			return &domain.User{ID: 2}, nil
		},
	}
	svc := NewAuthService(users, &mockTokens{})

	tests := []struct {
		name, username, email, password string
	}{
		{"missing username", "", "u@x.com", "p"},
		{"missing email", "u", "", "p"},
		{"missing password", "u", "u@x.com", ""},
		{"malformed email", "u", "not-an-email", "p"},
		{"email in use", "u", "taken@x.com", "p"},
		{"username taken", "taken", "u@x.com", "p"},
		{"duplicate on insert", "racer", "racer@x.com", "p"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.username, tc.email, tc.password)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	storeErr := errors.New("db down")

	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			switch email {
			case "a@x.com":
				return &domain.User{ID: 1, Email: email, PasswordHash: string(hash)}, nil
			case "sso@x.com":
				return &domain.User{ID: 2, Email: email}, nil
			case "broken@x.com":
				return nil, storeErr
			}
			return nil, nil
		},
	}
	svc := NewAuthService(users, &mockTokens{})

	tests := []struct {
		name, email, password string
		wantErr               error
	}{
		{"success", "a@x.com", "correct", nil},
		{"wrong password", "a@x.com", "wrong", ErrInvalidCredentials},
		{"unknown email", "nobody@x.com", "correct", ErrInvalidCredentials},
		{"password-less account", "sso@x.com", "anything", ErrInvalidCredentials},
		{"missing fields", "", "", ErrValidation},
		{"store failure", "broken@x.com", "correct", storeErr},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, token, err := svc.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && (user == nil || token == "") {
				t.Fatalf("expected user and token, got %+v %q", user, token)
			}
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	users := &mockUserRepo{
		getByIDFn: func(_ context.Context, id int64) (*domain.User, error) {
			if id == 1 {
				return &domain.User{ID: 1, Username: "a"}, nil
			}
			return nil, nil
		},
	}
	tokens := &mockTokens{verifyFn: func(token string) (int64, error) {
		switch token {
		case "good":
			return 1, nil
		case "orphan":
			return 99, nil
		}
		return 0, errors.New("bad signature")
	}}
	svc := NewAuthService(users, tokens)

	user, err := svc.Authenticate(context.Background(), "good")
	if err != nil || user.Username != "a" {
		t.Fatalf("expected user a, got %+v %v", user, err)
	}
	for _, tok := range []string{"", "forged", "orphan"} {
		if _, err := svc.Authenticate(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("token %q: expected ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestAuthService_LoginWithSSO_ExistingUser(t *testing.T) {
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 3, Username: "ssouser", Email: email}, nil
		},
		createFn: func(context.Context, string, string, string) (*domain.User, error) {
			t.Fatal("existing user must not be recreated")
			return nil, nil
		},
	}
	svc := NewAuthService(users, &mockTokens{})

	user, token, err := svc.LoginWithSSO(context.Background(), "SSO@x.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != 3 || token == "" {
		t.Errorf("unexpected result %+v %q", user, token)
	}
}

func TestAuthService_LoginWithSSO_NewUser(t *testing.T) {
	var created string
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			if username == "jane" {
				return &domain.User{ID: 1, Username: "jane"}, nil
			}
			return nil, nil
		},
		createFn: func(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
			if passwordHash != "" {
				t.Error("sso users must not get a password")
			}
			created = username
			return &domain.User{ID: 4, Username: username, Email: email}, nil
		},
	}
	svc := NewAuthService(users, &mockTokens{})

	if _, _, err := svc.LoginWithSSO(context.Background(), "jane@corp.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(created, "jane-") || len(created) != len("jane-")+8 {
		t.Errorf("expected suffixed username, got %q", created)
	}

	if _, _, err := svc.LoginWithSSO(context.Background(), ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for empty email, got %v", err)
	}
}
