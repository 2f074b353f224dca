package domain

import (
	"context"
	"errors"
	"fmt"

	"businessboard/backend/models"
)

const msgEmailTaken = "The email has already been taken."

// CreateUser registers a sales representative with the default password and
// sends a welcome message. The message is best-effort.
func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	ve := &ValidationError{}
	name := checkName(ve, "name", req.Name)
	email := checkEmail(ve, req.Email)
	if err := ve.Err(); err != nil {
		return models.User{}, err
	}

	hash, err := s.hash(s.defaultPassword)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.st.InsertUser(ctx, models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return models.User{}, &ConflictError{Field: "email", Message: msgEmailTaken}
		}
		return models.User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user created")
	s.notifyWelcome(u)
	return u, nil
}
