package domain

import (
	"context"
	"errors"
	"strings"

	"businessboard/backend/models"
)

const (
	msgStateNameRequired = "State name is required."
	msgStateNameTaken    = "A state with this name already exists."
	msgStateInUse        = "You cannot delete a state that has businesses associated with it."
)

func (s *Service) ListStates(ctx context.Context) ([]models.State, error) {
	return s.st.States(ctx)
}

// CreateState adds a column. Names are unique, compared case-sensitively.
func (s *Service) CreateState(ctx context.Context, name string) (models.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		ve := &ValidationError{}
		ve.Add("name", msgStateNameRequired)
		return models.State{}, ve
	}
	st, err := s.st.InsertState(ctx, name)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return models.State{}, &ConflictError{Field: "name", Message: msgStateNameTaken}
		}
		return models.State{}, err
	}
	s.log.WithField("state_id", st.ID).Info("state created")
	return st, nil
}

// RenameState renames a column in place. Renaming to the current name is a
// no-op reported with changed=false; the row is not written.
func (s *Service) RenameState(ctx context.Context, id int64, name string) (st models.State, changed bool, err error) {
	current, err := s.st.State(ctx, id)
	if err != nil {
		return models.State{}, false, notFound(err, "State", id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		ve := &ValidationError{}
		ve.Add("name", msgStateNameRequired)
		return models.State{}, false, ve
	}
	if name == current.Name {
		return current, false, nil
	}
	st, err = s.st.RenameState(ctx, id, name)
	switch {
	case errors.Is(err, ErrDuplicate):
		return models.State{}, false, &ConflictError{Field: "name", Message: msgStateNameTaken}
	case err != nil:
		return models.State{}, false, notFound(err, "State", id)
	}
	return st, true, nil
}

// DeleteState removes a column that holds no businesses. The emptiness check
// and the delete happen in one store operation.
func (s *Service) DeleteState(ctx context.Context, id int64) error {
	err := s.st.DeleteStateIfUnused(ctx, id)
	switch {
	case errors.Is(err, ErrInUse):
		return &InvariantViolation{Message: msgStateInUse}
	case err != nil:
		return notFound(err, "State", id)
	}
	s.log.WithField("state_id", id).Info("state deleted")
	return nil
}
