package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/internal/users"
	"github.com/zahabi-gold/zahabi-backend/pkg/config"
	pkgmodels "github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUserRepository struct {
	data      map[string]*pkgmodels.User
	created   *pkgmodels.User
	createErr error
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{data: map[string]*pkgmodels.User{}}
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*pkgmodels.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

type stubAccountOpener struct {
	opened  *pkgmodels.Account
	openErr error
}

func (s *stubAccountOpener) Open(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*pkgmodels.Account, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	account := &pkgmodels.Account{ID: uuid.New(), UserID: userID, Status: enums.AccountStatusActive}
	s.opened = account
	return account, nil
}

type registerTestSetup struct {
	service  RegisterService
	userRepo *stubUserRepository
	accounts *stubAccountOpener
}

func newRegisterTestSetup(t *testing.T) *registerTestSetup {
	t.Helper()
	userRepo := newStubUserRepository()
	accounts := &stubAccountOpener{}
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubTxRunner{},
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return userRepo
		},
		Accounts:       accounts,
		PasswordConfig: config.PasswordConfig{BcryptCost: 4},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return &registerTestSetup{
		service:  svc,
		userRepo: userRepo,
		accounts: accounts,
	}
}

func sampleRegisterRequest(email string) RegisterRequest {
	return RegisterRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     email,
		Password:  "Secret123456",
		AcceptTOS: true,
	}
}

func TestRegisterCreatesUserAndWallet(t *testing.T) {
	setup := newRegisterTestSetup(t)
	req := sampleRegisterRequest("new@example.com")

	dto, err := setup.service.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if setup.userRepo.created == nil {
		t.Fatalf("expected user to be created")
	}
	if setup.userRepo.created.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", setup.userRepo.created.Role)
	}
	if setup.accounts.opened == nil {
		t.Fatalf("expected wallet account to be opened")
	}
	if setup.accounts.opened.UserID != setup.userRepo.created.ID {
		t.Fatalf("wallet not linked to created user")
	}
	if dto == nil || dto.Email != "new@example.com" {
		t.Fatalf("unexpected response dto %+v", dto)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	setup := newRegisterTestSetup(t)
	req := sampleRegisterRequest("  MiXeD@Example.COM ")

	dto, err := setup.service.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if dto.Email != "mixed@example.com" {
		t.Fatalf("expected lowercased email, got %q", dto.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setup := newRegisterTestSetup(t)
	req := sampleRegisterRequest("dupe@example.com")

	if _, err := setup.service.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := setup.service.Register(context.Background(), req)
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	setup := newRegisterTestSetup(t)
	req := sampleRegisterRequest("weak@example.com")
	req.Password = "short1"

	_, err := setup.service.Register(context.Background(), req)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if setup.userRepo.created != nil {
		t.Fatalf("user should not be created for weak password")
	}
}

func TestRegisterRequiresTOS(t *testing.T) {
	setup := newRegisterTestSetup(t)
	req := sampleRegisterRequest("tos@example.com")
	req.AcceptTOS = false

	_, err := setup.service.Register(context.Background(), req)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
