package usersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/corray333/jersey-shop/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/dal/uow"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/corray333/jersey-shop/pkg/auth"
	"github.com/corray333/jersey-shop/pkg/validation"
)

const latestUsers = 5

// UserService manages accounts and issues access tokens.
type UserService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	issuer   tokenIssuer
	now      func() time.Time
}

type unitOfWork interface {
	UserRepository() iuserrepo.Repository
}

type tokenIssuer interface {
	Issue(userID int64, role string) (string, error)
}

// Profile holds the fields a user submits on registration or update.
type Profile struct {
	Firstname string `json:"firstname" validate:"required,humanname"`
	Lastname  string `json:"lastname" validate:"required,humanname"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Telephone string `json:"telephone" validate:"required,telephone"`
	Address   string `json:"address" validate:"required,label"`
	Zipcode   string `json:"zipcode" validate:"required,zipcode"`
	Password  string `json:"password" validate:"required,password"`
}

// Session is the result of a successful login.
type Session struct {
	User  user.User
	Token string
}

type option func(*UserService)

// MustNewUserService creates a new UserService.
func MustNewUserService(opts ...option) *UserService {
	s := &UserService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.issuer == nil {
		panic("usersvc: token issuer is required")
	}
	if s.newUOW == nil {
		if s.pgClient == nil {
			panic("usersvc: postgres client is required")
		}
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the UserService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *UserService) {
		s.pgClient = pgClient
	}
}

// WithTokenIssuer sets the signer used by Login.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTokenIssuer(issuer tokenIssuer) option {
	return func(s *UserService) {
		s.issuer = issuer
	}
}

func (s *UserService) repo() iuserrepo.Repository {
	return s.newUOW().UserRepository()
}

func (p Profile) normalized() Profile {
	p.Firstname = strings.TrimSpace(p.Firstname)
	p.Lastname = strings.TrimSpace(p.Lastname)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Telephone = strings.TrimSpace(p.Telephone)
	p.Address = strings.TrimSpace(p.Address)
	p.Zipcode = strings.TrimSpace(p.Zipcode)

	return p
}

func (p Profile) toUser(id int64, role user.Role, hash string) user.User {
	return user.User{
		ID:           id,
		Role:         role,
		Firstname:    p.Firstname,
		Lastname:     p.Lastname,
		Email:        p.Email,
		PasswordHash: hash,
		Telephone:    p.Telephone,
		Address:      p.Address,
		Zipcode:      p.Zipcode,
	}
}

func (s *UserService) save(ctx context.Context, id int64, role user.Role, p Profile) (user.User, error) {
	p = p.normalized()
	if err := validation.Struct(p); err != nil {
		return user.User{}, err
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return user.User{}, err
	}

	if id == 0 {
		return s.repo().Insert(ctx, p.toUser(0, role, hash))
	}

	return s.repo().Update(ctx, p.toUser(id, role, hash))
}

// Register creates an account with the user role.
func (s *UserService) Register(ctx context.Context, p Profile) (user.User, error) {
	u, err := s.save(ctx, 0, user.RoleUser, p)
	if err != nil {
		return user.User{}, err
	}

	slog.Info("User registered", "user_id", u.ID)

	return u, nil
}

// Login checks credentials and returns a signed token. Unknown email and
// wrong password fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.repo().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperr.ErrNotFound) {
		return Session{}, fmt.Errorf("bad credentials: %w", apperr.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return Session{}, fmt.Errorf("bad credentials: %w", apperr.ErrUnauthorized)
	}

	token, err := s.issuer.Issue(u.ID, string(u.Role))
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	if err := s.repo().TouchLastLogin(ctx, u.ID, now); err != nil {
		slog.Error("Failed to record login", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	return Session{User: u, Token: token}, nil
}

// GetUser returns one account.
func (s *UserService) GetUser(ctx context.Context, id int64) (user.User, error) {
	return s.repo().Get(ctx, id)
}

// GetUsers lists accounts by id.
func (s *UserService) GetUsers(ctx context.Context, p page.Page) ([]user.User, error) {
	return s.repo().Query(ctx, &user.QueryUsersModel{Page: p})
}

// GetLatestUsers returns the five newest accounts.
func (s *UserService) GetLatestUsers(ctx context.Context) ([]user.User, error) {
	return s.repo().Query(ctx, &user.QueryUsersModel{
		Latest: true,
		Page:   page.Page{Limit: latestUsers},
	})
}

// UpdateProfile lets a user edit their own account. The role is kept.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, p Profile) (user.User, error) {
	current, err := s.repo().Get(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	return s.save(ctx, id, current.Role, p)
}

// UpdateUser is the administrative edit and may change the role.
func (s *UserService) UpdateUser(ctx context.Context, id int64, p Profile, role string) (user.User, error) {
	if _, err := s.repo().Get(ctx, id); err != nil {
		return user.User{}, err
	}

	return s.save(ctx, id, user.ParseRole(role), p)
}

// DeleteUser removes an account that has no orders.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo().Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("User deleted", "user_id", id)

	return nil
}

// EnsureAdmin creates an administrator with the given credentials unless
// the email is already registered.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.repo().GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if !validation.IsStrongPassword(password) {
		return apperr.Invalid("password", "failed on 'password'")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	u, err := s.repo().Insert(ctx, user.User{
		Role:         user.RoleAdmin,
		Firstname:    "Admin",
		Lastname:     "Admin",
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("Administrator created", "user_id", u.ID)

	return nil
}
