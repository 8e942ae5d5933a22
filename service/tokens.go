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

type tokens interface {
	CreateActivationToken(email string) error
	CreateAuthenticationToken(email string, password string) (*data.Token, error)
	DeleteAuthenticationToken(userID int64) error
}

// CreateActivationToken service creates a new activation token for a user
// who hasn't activated their account yet.
func (s *service) CreateActivationToken(email string) error {
	v := validator.New()
	if data.ValidateEmail(v, email); !v.Valid() {
		return s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			v.AddError("email", "no matching email address found")
			return s.failedValidation(v.Errors)
		default:
			return err
		}
	}
	if user.Activated {
		v.AddError("email", "user with this email has already been activated")
		return s.failedValidation(v.Errors)
	}
	token, err := s.repo.CreateNewToken(user.ID, 3*24*time.Hour, data.ScopeActivation)
	if err != nil {
		return err
	}
	s.background(func() {
		data := map[string]string{
			"userName":        strings.Split(user.Name, " ")[0],
			"activationToken": token.Plaintext,
		}
		mailer := mailer.New(s.config.SMTP.Host, s.config.SMTP.Port, s.config.SMTP.Username, s.config.SMTP.Password, s.config.SMTP.Sender)
		err := mailer.Send(user.Email, "token_activation.tmpl", data)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
	return nil
}

// CreateAuthenticationToken service creates a new authentication token for a
// user with valid credentials.
func (s *service) CreateAuthenticationToken(email string, password string) (*data.Token, error) {
	v := validator.New()
	data.ValidateEmail(v, email)
	data.ValidatePasswordPlaintext(v, password)
	if !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}
	match, err := user.Password.Matches(password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return s.repo.CreateNewToken(user.ID, 24*time.Hour, data.ScopeAuthentication)
}

// DeleteAuthenticationToken deletes all authentication tokens for a user.
func (s *service) DeleteAuthenticationToken(userID int64) error {
	return s.repo.DeleteAllTokensForUser(data.ScopeAuthentication, userID)
}
