package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/logging"
	"github.com/tavrin/realmportal/internal/server/auth"
	"github.com/tavrin/realmportal/internal/server/config"
	"github.com/tavrin/realmportal/internal/server/models"
	"github.com/tavrin/realmportal/internal/server/repositories/repomanager"
	"github.com/tavrin/realmportal/internal/srp"
)

// AccountService authenticates against the SRP6 salt/verifier rows the game
// servers share with the portal, creates accounts, and answers ban and GM
// level questions.
type AccountService struct {
	db            *sql.DB
	rm            repomanager.AuthRepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
	access        *accessCache
}

func NewAccountService(db *sql.DB, rm repomanager.AuthRepositoryManager, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:            db,
		rm:            rm,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AccessTokenValidityDuration,
		logger:        logger.With("module", "accounts"),
		access:        newAccessCache(cfg.AccessCacheTTL),
	}
}

// Authenticate verifies the password against the stored salt/verifier pair.
// An unknown username and a wrong password are indistinguishable to the
// caller. On success it returns the sanitized account view and a signed
// access token; salt and verifier never leave this service.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.AccountInfo, string, error) {
	repo := s.rm.Accounts(s.db)

	account, err := repo.GetByUsername(ctx, srp.Canonical(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", common.ErrInternal
	}

	if !srp.Verify(account.Username, password, account.Salt, account.Verifier) {
		return nil, "", common.ErrInvalidCredentials
	}

	banned, err := repo.IsBanned(ctx, account.ID)
	if err != nil {
		return nil, "", common.ErrInternal
	}
	if banned {
		return nil, "", common.ErrAccountBanned
	}

	token, err := auth.GenerateToken(account.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return account.Info(), token, nil
}

// Create registers a new account under the canonical username, generating a
// fresh salt/verifier pair. The existence pre-check keeps the common path
// clean; the unique constraint on username is the backstop for the race.
func (s *AccountService) Create(ctx context.Context, username, password, email string) (*models.AccountInfo, error) {
	canonical := srp.Canonical(username)
	if canonical == "" || password == "" {
		return nil, common.ErrInvalidRequest
	}

	repo := s.rm.Accounts(s.db)

	if _, err := repo.GetByUsername(ctx, canonical); err == nil {
		return nil, common.ErrAccountExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	salt, verifier, err := srp.Generate(canonical, password)
	if err != nil {
		return nil, common.ErrInternal
	}

	account := &models.Account{
		Username: canonical,
		Salt:     salt,
		Verifier: verifier,
		Email:    email,
	}
	account, err = repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrAccountExists) {
			return nil, common.ErrAccountExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.access.Invalidate(account.ID)
	s.logger.Info(ctx, "account created", "username", canonical, "account_id", account.ID)

	return account.Info(), nil
}

// IsBanned reports whether the account currently has an active ban.
func (s *AccountService) IsBanned(ctx context.Context, accountID int64) (bool, error) {
	return s.rm.Accounts(s.db).IsBanned(ctx, accountID)
}

// GMLevel returns the highest GM level granted to the account for the realm
// (rows scoped to all realms included). Lookups are cached for a short TTL;
// account mutations call the cache's invalidation hook.
func (s *AccountService) GMLevel(ctx context.Context, accountID int64, realmID int32) (int, error) {
	if level, ok := s.access.Get(accountID, realmID); ok {
		return level, nil
	}

	level, err := s.rm.Accounts(s.db).GMLevel(ctx, accountID, realmID)
	if err != nil {
		return 0, err
	}

	s.access.Put(accountID, realmID, level)
	return level, nil
}
