package boardclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"businessboard/backend/models"
)

// API is the server surface the Store needs. *Client implements it.
type API interface {
	Board(ctx context.Context) (models.Board, error)
	CreateBusiness(ctx context.Context, in models.BusinessInput) (models.Business, error)
	UpdateBusiness(ctx context.Context, id int64, in models.BusinessInput) (models.Business, error)
	DeleteBusiness(ctx context.Context, id int64) error
	CreateState(ctx context.Context, name string) (models.State, error)
	RenameState(ctx context.Context, id int64, name string) (models.StateResponse, error)
	DeleteState(ctx context.Context, id int64) error
	CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error)
}

var ErrUnknownBusiness = errors.New("business is not on the board")

// Store holds the authoritative local board. Mutations call the server first
// and dispatch only on success, so a failed call leaves the board unchanged.
type Store struct {
	api API

	mu    sync.RWMutex
	board models.Board
}

func NewStore(api API) *Store {
	return &Store{api: api}
}

// Board returns the current snapshot.
func (s *Store) Board() models.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.board = Reduce(s.board, a)
	s.mu.Unlock()
}

// Refresh replaces the local board with the server's.
func (s *Store) Refresh(ctx context.Context) error {
	b, err := s.api.Board(ctx)
	if err != nil {
		return err
	}
	s.Dispatch(Loaded{Board: b})
	return nil
}

func (s *Store) CreateBusiness(ctx context.Context, in models.BusinessInput) (models.Business, error) {
	b, err := s.api.CreateBusiness(ctx, in)
	if err != nil {
		return models.Business{}, err
	}
	s.Dispatch(BusinessCreated{Business: b})
	return b, nil
}

// Move places a business in another state, sending its current fields along
// with the new state_id.
func (s *Store) Move(ctx context.Context, id, stateID int64) error {
	cur, ok := s.business(id)
	if !ok {
		return ErrUnknownBusiness
	}
	if cur.StateID == stateID {
		return nil
	}
	return s.EditBusiness(ctx, id, models.BusinessInput{
		Name:           models.Some(cur.Name),
		BusinessTypeID: models.Some(cur.BusinessTypeID),
		UserID:         models.Some(cur.UserID),
		StateID:        models.Some(stateID),
		Value:          models.Some(cur.Value),
	})
}

func (s *Store) EditBusiness(ctx context.Context, id int64, in models.BusinessInput) error {
	b, err := s.api.UpdateBusiness(ctx, id, in)
	if err != nil {
		return err
	}
	s.Dispatch(BusinessUpdated{Business: b})
	return nil
}

func (s *Store) DeleteBusiness(ctx context.Context, id int64) error {
	if err := s.api.DeleteBusiness(ctx, id); err != nil {
		return err
	}
	s.Dispatch(BusinessDeleted{ID: id})
	return nil
}

func (s *Store) CreateState(ctx context.Context, name string) (models.State, error) {
	st, err := s.api.CreateState(ctx, name)
	if err != nil {
		return models.State{}, err
	}
	s.Dispatch(StateCreated{State: st})
	return st, nil
}

// RenameState reports changed=false without a server call when the trimmed
// name equals the current one.
func (s *Store) RenameState(ctx context.Context, id int64, name string) (bool, error) {
	name = strings.TrimSpace(name)
	cur, ok := s.state(id)
	if !ok {
		return false, fmt.Errorf("state %d is not on the board", id)
	}
	if cur.Name == name {
		return false, nil
	}
	res, err := s.api.RenameState(ctx, id, name)
	if err != nil {
		return false, err
	}
	s.Dispatch(StateRenamed{State: res.State})
	return true, nil
}

func (s *Store) DeleteState(ctx context.Context, id int64) error {
	if err := s.api.DeleteState(ctx, id); err != nil {
		return err
	}
	s.Dispatch(StateDeleted{ID: id})
	return nil
}

func (s *Store) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	u, err := s.api.CreateUser(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	s.Dispatch(UserCreated{User: u})
	return u, nil
}

func (s *Store) business(id int64) (models.Business, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexBusiness(s.board.Businesses, id); i >= 0 {
		return s.board.Businesses[i], true
	}
	return models.Business{}, false
}

func (s *Store) state(id int64) (models.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.board.States {
		if st.ID == id {
			return st, true
		}
	}
	return models.State{}, false
}
