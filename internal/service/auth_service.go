package service

import (
	"log/slog"
	"strings"

	"civicreport/internal/apperr"
	"civicreport/internal/auth"
	"civicreport/internal/email"
	"civicreport/internal/models"
	"civicreport/internal/repository"
)

// RegisterInput is the citizen signup payload.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginResult carries the issued token and the authenticated identity.
type LoginResult struct {
	Token string         `json:"token"`
	Actor auth.ActorType `json:"actor"`
	ID    uint           `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Roles []string       `json:"roles,omitempty"`
}

// AuthService handles citizen signup and login for all three actor kinds.
type AuthService struct {
	users       *repository.UserRepository
	officers    *repository.OfficerRepository
	maintainers *repository.MaintainerRepository
	tokens      *auth.Service
	mailer      *email.Service
}

func NewAuthService(users *repository.UserRepository, officers *repository.OfficerRepository, maintainers *repository.MaintainerRepository, tokens *auth.Service, mailer *email.Service) *AuthService {
	return &AuthService{
		users:       users,
		officers:    officers,
		maintainers: maintainers,
		tokens:      tokens,
		mailer:      mailer,
	}
}

// RegisterCitizen creates a citizen account.
func (s *AuthService) RegisterCitizen(input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, apperr.Validationf("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperr.Validationf("password must be at least 8 characters")
	}

	existing, err := s.users.GetByEmail(input.Email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to check email")
	}
	if existing != nil {
		return nil, apperr.Conflictf("an account with email %s already exists", input.Email)
	}

	hash, err := s.tokens.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to hash password")
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}
	if err := s.users.Create(user); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create account")
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.DisplayName()); err != nil {
			slog.Warn("failed to send welcome mail", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

var errBadCredentials = apperr.Authorizationf("invalid email or password")

// LoginCitizen authenticates a citizen and issues a token.
func (s *AuthService) LoginCitizen(email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load account")
	}
	if user == nil || s.tokens.VerifyPassword(user.PasswordHash, password) != nil {
		return nil, errBadCredentials
	}

	token, _, err := s.tokens.GenerateToken(user.ID, user.Email, auth.ActorCitizen, nil)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to issue token")
	}
	return &LoginResult{
		Token: token,
		Actor: auth.ActorCitizen,
		ID:    user.ID,
		Email: user.Email,
		Name:  user.DisplayName(),
	}, nil
}

// LoginOfficer authenticates an officer. The token carries the distinct
// roles the officer holds, office-independent; office-level checks are
// always re-run against the directory.
func (s *AuthService) LoginOfficer(email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	officer, err := s.officers.GetByEmail(email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load officer")
	}
	if officer == nil || s.tokens.VerifyPassword(officer.PasswordHash, password) != nil {
		return nil, errBadCredentials
	}

	roles := []string{}
	seen := map[string]struct{}{}
	for _, p := range officer.Positions {
		role := string(p.Role)
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}

	token, _, err := s.tokens.GenerateToken(officer.ID, officer.Email, auth.ActorOfficer, roles)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to issue token")
	}
	return &LoginResult{
		Token: token,
		Actor: auth.ActorOfficer,
		ID:    officer.ID,
		Email: officer.Email,
		Name:  officer.DisplayName(),
		Roles: roles,
	}, nil
}

// LoginMaintainer authenticates a maintainer.
func (s *AuthService) LoginMaintainer(email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	maintainer, err := s.maintainers.GetByEmail(email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load maintainer")
	}
	if maintainer == nil || s.tokens.VerifyPassword(maintainer.PasswordHash, password) != nil {
		return nil, errBadCredentials
	}

	token, _, err := s.tokens.GenerateToken(maintainer.ID, maintainer.Email, auth.ActorMaintainer, nil)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to issue token")
	}
	return &LoginResult{
		Token: token,
		Actor: auth.ActorMaintainer,
		ID:    maintainer.ID,
		Email: maintainer.Email,
		Name:  maintainer.Name,
	}, nil
}
