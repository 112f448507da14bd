package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogstack/internal/common"
)

var (
	ErrWrongAuthMethod   = errors.New("wrong authentication method")
	ErrUseGoogleAuth     = fmt.Errorf("%w: account was created with google", ErrWrongAuthMethod)
	ErrUsePasswordAuth   = fmt.Errorf("%w: account was created with a password", ErrWrongAuthMethod)
	ErrIncorrectPassword = errors.New("incorrect password")
)

type Option func(*UserService)

// WithSignupHook registers fn to be called with the signup method after every created account.
func WithSignupHook(fn func(method string)) Option {
	return func(s *UserService) {
		s.onSignup = fn
	}
}

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h PasswordHasher) Option {
	return func(s *UserService) {
		s.hasher = h
	}
}

func NewUserService(db *sql.DB, mb common.MessageProducer, tokens *TokenService, verifier IdentityVerifier, logger *slog.Logger, opts ...Option) *UserService {
	m := newUserModel(db)
	s := &UserService{
		m:        m,
		hasher:   NewBcryptHasher(bcryptCost),
		tokens:   tokens,
		verifier: verifier,
		names:    newUsernameAllocator(m.usernameExists),
		mb:       mb,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Signup creates a password account and returns a session for it.
func (s *UserService) Signup(ctx context.Context, fullname, email, password string) (*AuthResponse, error) {
	v := common.NewValidator()
	validateSignup(v, fullname, email, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Fullname: fullname,
		Email:    email,
	}

	err := u.Password.set(s.hasher, password)
	if err != nil {
		return nil, err
	}

	u.Username, err = s.names.allocate(ctx, email)
	if err != nil {
		return nil, err
	}
	u.ProfileImg = defaultProfileImg()

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	s.userCreated(ctx, &u, SignupMethodPassword)

	return s.authResponse(&u)
}

// SignIn authenticates a password account. Accounts created through google never
// reach the password comparison.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if u.GoogleAuth {
		return nil, ErrUseGoogleAuth
	}

	ok, err := u.Password.compare(s.hasher, password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrIncorrectPassword
	}

	return s.authResponse(u)
}

// FederatedSignIn signs in, or signs up, the owner of a google id token.
func (s *UserService) FederatedSignIn(ctx context.Context, providerToken string) (*AuthResponse, error) {
	identity, err := s.verifier.Verify(ctx, providerToken)
	if err != nil {
		return nil, err
	}

	u, err := s.m.getUserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if !u.GoogleAuth {
			return nil, ErrUsePasswordAuth
		}
		return s.authResponse(u)
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	u = &User{
		Fullname:   identity.Name,
		Email:      identity.Email,
		ProfileImg: identity.Picture,
		GoogleAuth: true,
	}
	if u.ProfileImg == "" {
		u.ProfileImg = defaultProfileImg()
	}

	u.Username, err = s.names.allocate(ctx, identity.Email)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, u)
	if err != nil {
		return nil, err
	}

	s.userCreated(ctx, u, SignupMethodGoogle)

	return s.authResponse(u)
}

// SearchUsers returns up to 50 public profiles whose username contains query.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]Profile, error) {
	return s.m.searchUsers(ctx, query, searchUsersLimit)
}

// Authenticate resolves a bearer token to the id of the user it was issued for.
func (s *UserService) Authenticate(token string) (int64, error) {
	return s.tokens.Verify(token)
}

func (s *UserService) authResponse(u *User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken: token,
		ProfileImg:  u.ProfileImg,
		Username:    u.Username,
		Fullname:    u.Fullname,
	}, nil
}

// userCreated announces the new account. The account already exists at this point,
// so a broker failure is only logged.
func (s *UserService) userCreated(ctx context.Context, u *User, method string) {
	if s.onSignup != nil {
		s.onSignup(method)
	}

	if s.mb == nil {
		return
	}

	event := common.UserCreatedEvent{
		UserID:     u.ID,
		Email:      u.Email,
		Fullname:   u.Fullname,
		Username:   u.Username,
		GoogleAuth: u.GoogleAuth,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := common.PublishJSON(ctx, s.mb, event, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		s.logger.Error("could not publish user.created event", slog.String("username", u.Username), slog.String("error", err.Error()))
	}
}
