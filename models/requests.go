package models

// BusinessInput is the create/update payload for a business. Each field keeps
// its presence so a partial update never overwrites an omitted field.
type BusinessInput struct {
	Name           Optional[string] `json:"name,omitzero"`
	BusinessTypeID Optional[int64]  `json:"business_type_id,omitzero"`
	UserID         Optional[int64]  `json:"user_id,omitzero"`
	StateID        Optional[int64]  `json:"state_id,omitzero"`
	Value          Optional[Money]  `json:"value,omitzero"`
}

// BusinessPatch is a validated partial update; nil fields are left untouched.
type BusinessPatch struct {
	Name           *string
	BusinessTypeID *int64
	UserID         *int64
	StateID        *int64
	Value          *Money
}

func (p BusinessPatch) Empty() bool {
	return p.Name == nil && p.BusinessTypeID == nil && p.UserID == nil && p.StateID == nil && p.Value == nil
}

type StateRequest struct {
	Name string `json:"name"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MessageResponse is the {message} body of delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// StateResponse is the {message, state} body of state writes.
type StateResponse struct {
	Message string `json:"message"`
	State   State  `json:"state"`
}
