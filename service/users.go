package service

import (
	"errors"
	"strings"
	"time"

	"github.com/odese/athenaeum/data"
	"github.com/odese/athenaeum/internal/mailer"
	"github.com/odese/athenaeum/internal/validator"
	"github.com/odese/athenaeum/repository"
)

type users interface {
	RegisterUser(name string, email string, password string) (*data.User, error)
	ActivateUser(token string) (*data.User, error)
	GetUser(userID int64) (*data.User, error)
	GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error)
}

// RegisterUser service registers a new user. Every new user is granted the
// USER role and receives a welcome email with an activation token.
func (s *service) RegisterUser(name string, email string, password string) (*data.User, error) {
	user := &data.User{
		Name:      name,
		Email:     email,
		Activated: false,
	}
	err := user.Password.Set(password)
	if err != nil {
		return nil, err
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.RegisterUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("email", "a user with this email address already exists")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	err = s.repo.AddRoleForUser(user.ID, data.RoleUser)
	if err != nil {
		return nil, err
	}
	user.Roles = []string{data.RoleUser}
	// Generate a new activation token for the user
	token, err := s.repo.CreateNewToken(user.ID, 3*24*time.Hour, data.ScopeActivation)
	if err != nil {
		return nil, err
	}
	// Send welcome email in a background goroutine to speed up response time
	s.background(func() {
		data := map[string]string{
			"userName":        strings.Split(user.Name, " ")[0],
			"activationToken": token.Plaintext,
		}
		mailer := mailer.New(s.config.SMTP.Host, s.config.SMTP.Port, s.config.SMTP.Username, s.config.SMTP.Password, s.config.SMTP.Sender)
		err := mailer.Send(user.Email, "user_welcome.tmpl", data)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
	return user, nil
}

// ActivateUser service activates a newly registered user.
func (s *service) ActivateUser(token string) (*data.User, error) {
	v := validator.New()
	if data.ValidateTokenPlaintext(v, token); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserForToken(data.ScopeActivation, token)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			v.AddError("token", "invalid or expired activation token")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	user.Activated = true
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	err = s.repo.DeleteAllTokensForUser(data.ScopeActivation, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser service retrieves the details of a user.
func (s *service) GetUser(userID int64) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// GetUserForToken service retrieves the user associated with an unexpired
// token in the given scope.
func (s *service) GetUserForToken(tokenScope, tokenPlaintext string) (*data.User, error) {
	user, err := s.repo.GetUserForToken(tokenScope, tokenPlaintext)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrFailedValidation
		default:
			return nil, err
		}
	}
	return user, nil
}
