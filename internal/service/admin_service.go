package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialdesk/internal/core/metrics"
	"socialdesk/internal/domain"
	"socialdesk/internal/repo"
)

// AdminService guards the admin accounts. Credential failures are reported
// uniformly so callers cannot tell which admin ids exist.
type AdminService struct {
	db     *gorm.DB
	hasher domain.PasswordHasher
	creds  domain.CredentialSetter
	log    *zap.Logger
	dummy  string // 未知账号也跑一次校验，抹平耗时差异
}

func NewAdminService(db *gorm.DB, hasher domain.PasswordHasher, creds domain.CredentialSetter, l *zap.Logger) (*AdminService, error) {
	if l == nil {
		l = zap.NewNop()
	}
	dummy, err := hasher.Hash("socialdesk-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AdminService{db: db, hasher: hasher, creds: creds, log: l.Named("admin"), dummy: dummy}, nil
}

func (s *AdminService) Authenticate(ctx context.Context, adminID, password string) (p domain.AdminProfile, err error) {
	defer func() { metrics.AdminAuth.WithLabelValues("login", metrics.Outcome(err)).Inc() }()

	a, err := repo.NewAdminRepo(s.db).FindByID(ctx, adminID)
	if err != nil {
		return p, fmt.Errorf("load admin: %w", err)
	}
	if a == nil {
		s.hasher.Verify(password, s.dummy)
		return p, domain.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, a.PasswordHash) {
		return p, domain.ErrInvalidCredentials
	}
	return a.Profile(), nil
}

// ChangePassword replaces the admin's own password. The write is conditional on
// the hash that was verified, so a concurrent change makes this one fail.
func (s *AdminService) ChangePassword(ctx context.Context, adminID, oldPassword, newPassword string) (err error) {
	defer func() { metrics.AdminAuth.WithLabelValues("change_password", metrics.Outcome(err)).Inc() }()

	if newPassword == "" {
		return domain.ErrInvalidInput
	}
	admins := repo.NewAdminRepo(s.db)
	a, err := admins.FindByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	if a == nil {
		return domain.ErrNotFound
	}
	// 旧口令校验在改密开关之前
	if !s.hasher.Verify(oldPassword, a.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if !a.CanChangePassword {
		return domain.ErrUnauthorized
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if domain.IsBusiness(err) {
			return err
		}
		return fmt.Errorf("hash password: %w", err)
	}
	swapped, err := admins.SwapPasswordHash(ctx, adminID, a.PasswordHash, hash)
	if err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	if !swapped {
		return domain.ErrInvalidCredentials
	}
	s.log.Info("admin password changed", zap.String("admin", adminID))
	return nil
}

// ResetPassword sets an end user's password on the auth provider on behalf of requestingAdminID.
func (s *AdminService) ResetPassword(ctx context.Context, targetUserID, newPassword, requestingAdminID string) (err error) {
	defer func() { metrics.AdminAuth.WithLabelValues("reset_password", metrics.Outcome(err)).Inc() }()

	if targetUserID == "" || newPassword == "" {
		return domain.ErrInvalidInput
	}
	a, err := repo.NewAdminRepo(s.db).FindByID(ctx, requestingAdminID)
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	if a == nil {
		return domain.ErrUnauthorized
	}
	if err := s.creds.SetPassword(ctx, targetUserID, newPassword); err != nil {
		if domain.IsBusiness(err) {
			return err
		}
		return fmt.Errorf("set user password: %w", err)
	}
	s.log.Info("user password reset", zap.String("admin", requestingAdminID), zap.String("user", targetUserID))
	return nil
}

// Bootstrap creates the configured admins that do not exist yet and returns how
// many were created. Existing accounts, and their passwords, are left alone.
func (s *AdminService) Bootstrap(ctx context.Context, seeds []domain.AdminSeed) (int, error) {
	admins := repo.NewAdminRepo(s.db)
	created := 0
	for _, seed := range seeds {
		id := strings.TrimSpace(seed.ID)
		if id == "" || seed.Password == "" {
			s.log.Warn("admin seed skipped: id and password are required", zap.String("id", id))
			continue
		}
		hash, err := s.hasher.Hash(seed.Password)
		if err != nil {
			return created, fmt.Errorf("hash seed %s: %w", id, err)
		}
		role := seed.Role
		if role == "" {
			role = "admin"
		}
		name := seed.Name
		if name == "" {
			name = id
		}
		ok, err := admins.CreateIfAbsent(ctx, &domain.AdminAccount{
			ID:                id,
			PasswordHash:      hash,
			Name:              name,
			Role:              role,
			CanChangePassword: seed.CanChangePassword,
		})
		if err != nil {
			return created, fmt.Errorf("create admin %s: %w", id, err)
		}
		if ok {
			created++
			s.log.Info("admin account created", zap.String("id", id), zap.String("role", role))
		}
	}
	return created, nil
}
