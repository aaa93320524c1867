package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/auth"
	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

type UserServiceConfig struct {
	ResetTokenTTL time.Duration
	FrontendURL   string
}

type UserService struct {
	users  UserStore
	tokens *auth.TokenService
	hasher models.PasswordHasher
	mailer ResetMailer
	cfg    UserServiceConfig
	now    func() time.Time
}

func NewUserService(
	users UserStore,
	tokens *auth.TokenService,
	hasher models.PasswordHasher,
	mailer ResetMailer,
	cfg UserServiceConfig,
) *UserService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 15 * time.Minute
	}
	return &UserService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		mailer: mailer,
		cfg:    cfg,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Firstname string
	Lastname  string
	Email     string
	Mobile    string
	Address   string
	Password  string
	Role      string
}

// Session is the result of a login or a refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	const op = "UserService.Register"

	if err := checkPasswordLength(in.Password); err != nil {
		return models.User{}, err
	}

	_, err := s.users.FindByEmail(ctx, models.NormalizeEmail(in.Email))
	switch {
	case err == nil:
		return models.User{}, apperr.ErrEmailTaken
	case !errors.Is(err, database.ErrNotFound):
		return models.User{}, storeErr(op, err, "user not found")
	}

	user, err := models.NewUser(models.NewUserParams(in), s.hasher)
	if errors.Is(err, models.ErrUnknownRole) {
		return models.User{}, apperr.BadRequest(err.Error())
	}
	if err != nil {
		return models.User{}, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return models.User{}, apperr.ErrEmailTaken
		}
		return models.User{}, storeErr(op, err, "user not found")
	}

	slog.With("op", op).Info("user registered", "user_id", user.ID.Hex(), "role", user.Role)
	return user, nil
}

// Login checks the credentials and starts a session. Unknown email and wrong
// password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "UserService.Login"

	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, database.ErrNotFound) {
		return Session{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, storeErr(op, err, "user not found")
	}
	if !auth.CheckPassword(user.Password, password) {
		return Session{}, apperr.ErrInvalidCredentials
	}
	if user.IsBlocked {
		return Session{}, apperr.ErrAccountBlocked
	}

	return s.startSession(ctx, op, user)
}

// Refresh exchanges the refresh token stored on the user for a new pair.
// The old refresh token stops working.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	const op = "UserService.Refresh"

	if refreshToken == "" {
		return Session{}, apperr.ErrMissingToken
	}
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return Session{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return Session{}, apperr.ErrInvalidToken
	}
	if err != nil {
		return Session{}, storeErr(op, err, "user not found")
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return Session{}, apperr.ErrInvalidToken
	}
	if user.IsBlocked {
		return Session{}, apperr.ErrAccountBlocked
	}

	return s.startSession(ctx, op, user)
}

func (s *UserService) startSession(ctx context.Context, op string, user models.User) (Session, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return Session{}, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return Session{}, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return Session{}, storeErr(op, err, "user not found")
	}

	user.RefreshToken = refresh
	return Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	const op = "UserService.Logout"
	return storeErr(op, s.users.SetRefreshToken(ctx, userID, ""), "user not found")
}

// ForgotPassword mails a reset link when email belongs to a user. It reports
// success for unknown addresses too.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	const op = "UserService.ForgotPassword"
	log := slog.With("op", op)

	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, database.ErrNotFound) {
		log.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return storeErr(op, err, "user not found")
	}

	raw, digest, err := auth.NewResetToken()
	if err != nil {
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	expires := s.now().UTC().Add(s.cfg.ResetTokenTTL)
	if err := s.users.SetPasswordReset(ctx, user.ID, digest, expires); err != nil {
		return storeErr(op, err, "user not found")
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password/" + raw
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Firstname, link); err != nil {
		return apperr.Internal(fmt.Errorf("%s: send mail: %w", op, err))
	}

	log.Info("password reset mail sent", "user_id", user.ID.Hex())
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	const op = "UserService.ResetPassword"

	if err := checkPasswordLength(password); err != nil {
		return err
	}

	now := s.now().UTC()
	user, err := s.users.FindByResetToken(ctx, auth.DigestResetToken(token), now)
	if errors.Is(err, database.ErrNotFound) {
		return apperr.BadRequest("reset token is invalid or has expired")
	}
	if err != nil {
		return storeErr(op, err, "user not found")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return storeErr(op, s.users.ChangePassword(ctx, user.ID, hash, now), "user not found")
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	const op = "UserService.Get"

	user, err := s.users.FindByID(ctx, id)
	return user, storeErr(op, err, "user not found")
}

func (s *UserService) List(ctx context.Context, f models.UserFilter) (Paged[models.User], error) {
	const op = "UserService.List"

	f.Search = strings.TrimSpace(f.Search)
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return Paged[models.User]{}, storeErr(op, err, "")
	}
	return newPaged(users, total, f.Page), nil
}

func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, u models.UserUpdate) (models.User, error) {
	const op = "UserService.Update"

	if u.Email != nil {
		email := models.NormalizeEmail(*u.Email)
		u.Email = &email
	}
	user, err := s.users.Update(ctx, id, u)
	if errors.Is(err, database.ErrDuplicate) {
		return models.User{}, apperr.Conflict("email or mobile already in use")
	}
	return user, storeErr(op, err, "user not found")
}

func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	const op = "UserService.Delete"
	return storeErr(op, s.users.Delete(ctx, id), "user not found")
}

func checkPasswordLength(password string) error {
	switch {
	case len(password) < auth.MinPasswordLength:
		return apperr.BadRequest("password must be at least 8 characters")
	case len(password) > auth.MaxPasswordLength:
		return apperr.BadRequest("password must be at most 72 bytes")
	}
	return nil
}
