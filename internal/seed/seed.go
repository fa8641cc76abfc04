package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/auth"
)

// UniversityStore is the part of the university repository seeding needs
type UniversityStore interface {
	Create(ctx context.Context, university *appModels.University) error
	GetBySlug(ctx context.Context, slug string) (*appModels.University, error)
}

// UserStore is the part of the user repository seeding needs
type UserStore interface {
	Create(ctx context.Context, user *appModels.User) error
	GetByEmail(ctx context.Context, email string) (*appModels.User, error)
}

// Options describes the default tenant and its first administrator
type Options struct {
	UniversityName   string
	UniversitySlug   string
	UniversityDomain string
	AdminEmail       string
	AdminPassword    string
}

// CreateDefaultData creates the default university and its admin if they don't exist.
// Running it twice is a no-op.
func CreateDefaultData(ctx context.Context, universities UniversityStore, users UserStore, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Str("slug", opts.UniversitySlug).Msg("Checking/Creating default data (University/Admin)...")

	university, err := ensureUniversity(ctx, universities, opts)
	if err != nil {
		return err
	}

	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		lgr.Warn().Msg("Seed admin credentials not configured, skipping admin account")
		return nil
	}

	existing, err := users.GetByEmail(ctx, opts.AdminEmail)
	switch {
	case err == nil:
		if existing.RoleType != appModels.RoleUniversityAdmin {
			lgr.Warn().Str("email", opts.AdminEmail).Msg("Seed admin email belongs to a non-admin account")
		}
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("looking up seed admin: %w", err)
	}

	hashed, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing seed admin password: %w", err)
	}

	admin := &appModels.User{
		UniversityID: university.ID,
		Email:        opts.AdminEmail,
		Password:     hashed,
		FirstName:    "University",
		LastName:     "Admin",
		RoleType:     appModels.RoleUniversityAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		return fmt.Errorf("creating seed admin: %w", err)
	}

	lgr.Info().Int64("userID", admin.ID).Int64("universityID", university.ID).Msg("Seed admin created")
	return nil
}

func ensureUniversity(ctx context.Context, universities UniversityStore, opts Options) (*appModels.University, error) {
	university := &appModels.University{Name: opts.UniversityName, Slug: opts.UniversitySlug}
	if domain := strings.ToLower(strings.TrimSpace(opts.UniversityDomain)); domain != "" {
		university.EmailDomain = &domain
	}

	err := universities.Create(ctx, university)
	if err == nil {
		return university, nil
	}
	if !errors.Is(err, apperrors.ErrUniversityExists) {
		return nil, fmt.Errorf("creating default university: %w", err)
	}

	existing, err := universities.GetBySlug(ctx, opts.UniversitySlug)
	if err != nil {
		return nil, fmt.Errorf("loading default university: %w", err)
	}
	return existing, nil
}
