package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgAuth "github.com/paolomureddu/agrikmzero-backend/pkg/auth"
	"github.com/paolomureddu/agrikmzero-backend/pkg/auth/session"
	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "agrikmzero-test",
	ExpirationMinutes: 15,
}

type stubUserRepo struct {
	byEmail       map[string]*models.User
	byVerifyToken map[string]*models.User
	byResetToken  map[string]*models.User
	byID          map[uuid.UUID]*models.User

	verifiedIDs  []uuid.UUID
	resetTokens  map[uuid.UUID]string
	passwordSets map[uuid.UUID]string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail:       map[string]*models.User{},
		byVerifyToken: map[string]*models.User{},
		byResetToken:  map[string]*models.User{},
		byID:          map[uuid.UUID]*models.User{},
		resetTokens:   map[uuid.UUID]string{},
		passwordSets:  map[uuid.UUID]string{},
	}
}

func (s *stubUserRepo) add(u *models.User) {
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
	if u.VerifyToken != nil {
		s.byVerifyToken[*u.VerifyToken] = u
	}
	if u.ResetToken != nil {
		s.byResetToken[*u.ResetToken] = u
	}
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByVerifyToken(_ context.Context, token string) (*models.User, error) {
	if u, ok := s.byVerifyToken[token]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	if u, ok := s.byResetToken[token]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	s.verifiedIDs = append(s.verifiedIDs, id)
	return nil
}

func (s *stubUserRepo) SetResetToken(_ context.Context, id uuid.UUID, token string, _ time.Time) error {
	s.resetTokens[id] = token
	return nil
}

func (s *stubUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.passwordSets[id] = hash
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return "rotated-" + oldAccessID, "refresh-rotated", nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	html    string
}

func (s *stubMailer) Send(_ context.Context, to, subject, html string) error {
	s.sent = append(s.sent, sentMail{to: to, subject: subject, html: html})
	return s.err
}

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r *sqliteTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_farmer INTEGER NOT NULL DEFAULT 0,
  display_name TEXT NOT NULL DEFAULT '',
  phone TEXT,
  province TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  latitude REAL,
  longitude REAL,
  company_name TEXT NOT NULL DEFAULT '',
  company_description TEXT NOT NULL DEFAULT '',
  company_logo_url TEXT,
  company_cover_url TEXT,
  slug TEXT UNIQUE,
  delivery_available INTEGER NOT NULL DEFAULT 0,
  email_verified INTEGER NOT NULL DEFAULT 0,
  verify_token TEXT,
  reset_token TEXT,
  reset_token_expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func newTestService(t *testing.T, repo userRepository, sessions sessionManager, mailer mailSender, tx txRunner) *service {
	t.Helper()
	if tx == nil {
		tx = &sqliteTxRunner{db: setupAuthTestDB(t)}
	}
	svc, err := NewService(ServiceParams{
		DB:             tx,
		UserRepo:       repo,
		SessionManager: sessions,
		Mailer:         mailer,
		JWTConfig:      testJWTConfig,
		PublicBaseURL:  "https://agrikmzero.it",
	})
	require.NoError(t, err)
	return svc.(*service)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	return hash
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubUserRepo()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "maria",
		Email:        "maria@example.com",
		PasswordHash: mustHash(t, "segretissima"),
		IsFarmer:     true,
	}
	repo.add(user)
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions, &stubMailer{}, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Maria@Example.com", Password: "segretissima"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Len(t, sessions.generated, 1)
	assert.Equal(t, "refresh-"+sessions.generated[0], resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.True(t, claims.IsFarmer)
	assert.Equal(t, sessions.generated[0], claims.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "maria@example.com",
		PasswordHash: mustHash(t, "segretissima"),
	})
	svc := newTestService(t, repo, &stubSessionManager{}, &stubMailer{}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "maria@example.com", Password: "sbagliata"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{}, &stubMailer{}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRegisterFarmerAssignsSlugAndSendsVerification(t *testing.T) {
	db := setupAuthTestDB(t)
	mailer := &stubMailer{}
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{}, mailer, &sqliteTxRunner{db: db})

	dto, err := svc.Register(context.Background(), RegisterRequest{
		Username:    "mariasanna",
		Email:       "Maria@Example.com",
		Password:    "segretissima",
		IsFarmer:    true,
		DisplayName: "Maria Sanna",
		Province:    "Cagliari",
		City:        "Pula",
		CompanyName: "Orto di Maria",
	})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", dto.Email)
	assert.True(t, dto.IsFarmer)

	var stored models.User
	require.NoError(t, db.Where("email = ?", "maria@example.com").First(&stored).Error)
	require.NotNil(t, stored.Slug)
	assert.Equal(t, "orto-di-maria", *stored.Slug)
	require.NotNil(t, stored.VerifyToken)
	assert.False(t, stored.EmailVerified)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "maria@example.com", mailer.sent[0].to)
	assert.Equal(t, verifySubject, mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].html, *stored.VerifyToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{}, &stubMailer{}, &sqliteTxRunner{db: db})

	req := RegisterRequest{
		Username:    "mariasanna",
		Email:       "maria@example.com",
		Password:    "segretissima",
		DisplayName: "Maria",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	req.Username = "altroutente"
	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRegisterFarmerSlugCollisionGetsSuffix(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{}, &stubMailer{}, &sqliteTxRunner{db: db})

	first := RegisterRequest{
		Username:    "primo",
		Email:       "primo@example.com",
		Password:    "segretissima",
		IsFarmer:    true,
		DisplayName: "Primo",
		CompanyName: "Orto di Maria",
	}
	_, err := svc.Register(context.Background(), first)
	require.NoError(t, err)

	second := first
	second.Username = "secondo"
	second.Email = "secondo@example.com"
	_, err = svc.Register(context.Background(), second)
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.Where("email = ?", "secondo@example.com").First(&stored).Error)
	require.NotNil(t, stored.Slug)
	assert.Equal(t, "orto-di-maria-2", *stored.Slug)
}

func TestRegisterFarmerRequiresCompanyName(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{}, &stubMailer{}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:    "maria",
		Email:       "maria@example.com",
		Password:    "segretissima",
		IsFarmer:    true,
		DisplayName: "Maria",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestVerifyEmail(t *testing.T) {
	repo := newStubUserRepo()
	token := uuid.NewString()
	user := &models.User{ID: uuid.New(), Email: "maria@example.com", VerifyToken: &token}
	repo.add(user)
	svc := newTestService(t, repo, &stubSessionManager{}, &stubMailer{}, nil)

	require.NoError(t, svc.VerifyEmail(context.Background(), token))
	require.Len(t, repo.verifiedIDs, 1)
	assert.Equal(t, user.ID, repo.verifiedIDs[0])

	err := svc.VerifyEmail(context.Background(), "bogus")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRequestPasswordResetUnknownEmailStaysSilent(t *testing.T) {
	mailer := &stubMailer{}
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{}, mailer, nil)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.sent)
}

func TestRequestPasswordResetSendsToken(t *testing.T) {
	repo := newStubUserRepo()
	user := &models.User{ID: uuid.New(), Email: "maria@example.com"}
	repo.add(user)
	mailer := &stubMailer{}
	svc := newTestService(t, repo, &stubSessionManager{}, mailer, nil)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "maria@example.com"))
	token, ok := repo.resetTokens[user.ID]
	require.True(t, ok)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, resetSubject, mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].html, token)
}

func TestResetPassword(t *testing.T) {
	repo := newStubUserRepo()
	token := uuid.NewString()
	expiry := time.Now().UTC().Add(time.Hour)
	user := &models.User{ID: uuid.New(), Email: "maria@example.com", ResetToken: &token, ResetTokenExpiresAt: &expiry}
	repo.add(user)
	svc := newTestService(t, repo, &stubSessionManager{}, &stubMailer{}, nil)

	require.NoError(t, svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, Password: "nuovapassword"}))
	hash, ok := repo.passwordSets[user.ID]
	require.True(t, ok)

	valid, err := security.VerifyPassword("nuovapassword", hash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	repo := newStubUserRepo()
	token := uuid.NewString()
	expiry := time.Now().UTC().Add(-time.Minute)
	repo.add(&models.User{ID: uuid.New(), Email: "maria@example.com", ResetToken: &token, ResetTokenExpiresAt: &expiry})
	svc := newTestService(t, repo, &stubSessionManager{}, &stubMailer{}, nil)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, Password: "nuovapassword"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubUserRepo()
	user := &models.User{ID: uuid.New(), Email: "maria@example.com", IsFarmer: true}
	repo.add(user)
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions, &stubMailer{}, nil)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		IsFarmer: true,
		JTI:      "old-jti",
	})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "refresh-old"})
	require.NoError(t, err)
	assert.Equal(t, "refresh-rotated", resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "rotated-old-jti", claims.ID)
}

func TestRefreshInvalidRefreshToken(t *testing.T) {
	repo := newStubUserRepo()
	user := &models.User{ID: uuid.New(), Email: "maria@example.com"}
	repo.add(user)
	sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, repo, sessions, &stubMailer{}, nil)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), pkgAuth.AccessTokenPayload{UserID: user.ID, JTI: "old"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "bad"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogout(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := newTestService(t, newStubUserRepo(), sessions, &stubMailer{}, nil)

	require.NoError(t, svc.Logout(context.Background(), "some-jti"))
	assert.Equal(t, []string{"some-jti"}, sessions.revoked)

	err := svc.Logout(context.Background(), " ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}
