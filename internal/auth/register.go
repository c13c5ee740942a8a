package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/internal/users"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/security"
)

func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if req.IsFarmer && strings.TrimSpace(req.CompanyName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name is required for farmers")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	verifyToken := uuid.NewString()
	var created *users.UserDTO

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		var slug *string
		if req.IsFarmer {
			value, err := users.EnsureUniqueSlug(ctx, repo, users.Slugify(req.CompanyName), uuid.Nil)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute slug")
			}
			slug = &value
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			IsFarmer:     req.IsFarmer,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			Phone:        req.Phone,
			Province:     strings.TrimSpace(req.Province),
			City:         strings.TrimSpace(req.City),
			CompanyName:  strings.TrimSpace(req.CompanyName),
			Slug:         slug,
			VerifyToken:  &verifyToken,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendMail(ctx, email, verifySubject, verifyBody(s.publicBaseURL, verifyToken))
	return created, nil
}
