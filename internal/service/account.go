package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"moodcal/internal/logger"
	"moodcal/internal/model"
	"moodcal/internal/repository"
	"moodcal/internal/store"
)

// AccountService handles registration, login and username lookup. It ties
// the identity provider (accounts in Postgres) to the app-facing records in
// the key-value store (username directory, profiles).
type AccountService struct {
	accounts  repository.AccountRepository
	directory store.IdentityDirectory
	profiles  store.ProfileStore
}

func NewAccountService(accounts repository.AccountRepository, directory store.IdentityDirectory, profiles store.ProfileStore) *AccountService {
	return &AccountService{
		accounts:  accounts,
		directory: directory,
		profiles:  profiles,
	}
}

// Register creates an account, claims the username and saves the profile.
//
// The username availability check and the directory write are two separate
// operations. Two concurrent registrations of the same name can both pass
// the check and the later write wins; the race is documented behavior and
// is not papered over with a transactional primitive.
func (s *AccountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Profile, error) {
	username := store.Normalize(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	res, err := s.directory.Resolve(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if res.Kind != model.ResolutionAbsent {
		return nil, model.ErrUsernameTaken
	}

	exists, err := s.accounts.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.directory.Register(ctx, username, account.ID); err != nil {
		return nil, fmt.Errorf("failed to claim username: %w", err)
	}

	profile := model.Profile{ID: account.ID, Username: username, Email: account.Email}
	if err := s.profiles.Save(ctx, account.ID, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return &profile, nil
}

// Login authenticates a user by username and password. Usernames resolve
// through the directory; a legacy mapping (raw email value) still signs the
// user in by that email and is repaired on the way out.
func (s *AccountService) Login(ctx context.Context, req *model.LoginRequest) (*model.Profile, error) {
	username := store.Normalize(req.Username)

	res, err := s.directory.Resolve(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}

	switch res.Kind {
	case model.ResolutionLegacyEmail:
		account, err := s.authenticate(ctx, res.Email, req.Password)
		if err != nil {
			return nil, err
		}
		profile := model.Profile{ID: account.ID, Username: username, Email: account.Email}
		s.repairLegacyMapping(ctx, username, profile)
		return &profile, nil

	case model.ResolutionID:
		profile := s.profiles.Get(ctx, res.UserID)
		if profile == nil {
			return nil, model.ErrInvalidCredentials
		}
		if _, err := s.authenticate(ctx, profile.Email, req.Password); err != nil {
			return nil, err
		}
		return profile, nil

	default:
		return nil, model.ErrInvalidCredentials
	}
}

// GetProfile returns the profile for an authenticated user id.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile := s.profiles.Get(ctx, userID)
	if profile == nil {
		return nil, model.ErrUserNotFound
	}
	return profile, nil
}

// Lookup resolves a username to a profile for public search. Legacy
// mappings report not-found: an email is never usable as an identifier.
func (s *AccountService) Lookup(ctx context.Context, username string) (*model.Profile, error) {
	res, err := s.directory.Resolve(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}
	if res.Kind != model.ResolutionID {
		return nil, model.ErrUserNotFound
	}

	profile := s.profiles.Get(ctx, res.UserID)
	if profile == nil {
		return nil, model.ErrUserNotFound
	}
	return profile, nil
}

// authenticate checks the password against the stored bcrypt hash. Every
// failure collapses to ErrInvalidCredentials so callers cannot probe which
// part was wrong.
func (s *AccountService) authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return account, nil
}

// repairLegacyMapping upgrades a pre-migration directory entry to point at
// the user identifier and upserts the profile. Best effort: a failure keeps
// the legacy mapping in place and the repair runs again on the next login.
func (s *AccountService) repairLegacyMapping(ctx context.Context, username string, profile model.Profile) {
	if err := s.directory.Register(ctx, username, profile.ID); err != nil {
		logger.Log.Warnf("[AccountService] legacy repair failed: username=%s err=%v", username, err)
		return
	}
	if err := s.profiles.Save(ctx, profile.ID, profile); err != nil {
		logger.Log.Warnf("[AccountService] legacy profile upsert failed: user=%s err=%v", profile.ID, err)
		return
	}
	logger.Log.Infof("[AccountService] legacy mapping repaired: username=%s user=%s", username, profile.ID)
}
