package domain

import (
	"context"

	"businessboard/backend/models"
)

// Ref names an entity that a business references.
type Ref int

const (
	RefBusinessType Ref = iota
	RefUser
	RefState
)

// Store is the persistence the board runs on. Implementations return
// ErrNotFound, ErrDuplicate, ErrInUse or *MissingReferenceError for the
// conditions they describe. Every list is in insertion order.
type Store interface {
	Ping(ctx context.Context) error

	// Board reads all four collections as one snapshot.
	Board(ctx context.Context) (models.Board, error)

	Businesses(ctx context.Context) ([]models.Business, error)
	// Business returns the row with its type, user and state populated.
	Business(ctx context.Context, id int64) (models.Business, error)
	InsertBusiness(ctx context.Context, b models.Business) (models.Business, error)
	UpdateBusiness(ctx context.Context, id int64, p models.BusinessPatch) (models.Business, error)
	DeleteBusiness(ctx context.Context, id int64) error

	States(ctx context.Context) ([]models.State, error)
	State(ctx context.Context, id int64) (models.State, error)
	InsertState(ctx context.Context, name string) (models.State, error)
	RenameState(ctx context.Context, id int64, name string) (models.State, error)
	// DeleteStateIfUnused deletes the state only when no business references
	// it, as one atomic step. It returns ErrInUse otherwise.
	DeleteStateIfUnused(ctx context.Context, id int64) error

	BusinessTypes(ctx context.Context) ([]models.BusinessType, error)
	InsertBusinessType(ctx context.Context, name string) (models.BusinessType, error)

	Users(ctx context.Context) ([]models.User, error)
	InsertUser(ctx context.Context, u models.User) (models.User, error)

	Exists(ctx context.Context, ref Ref, id int64) (bool, error)
}

// Notifier delivers best-effort messages to users.
type Notifier interface {
	SendWelcome(ctx context.Context, u models.User) error
}

// NopNotifier drops every message.
type NopNotifier struct{}

func (NopNotifier) SendWelcome(context.Context, models.User) error { return nil }
