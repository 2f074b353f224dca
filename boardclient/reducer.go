package boardclient

import (
	"slices"

	"businessboard/backend/models"
)

// Action is a confirmed server-side change applied to the local board.
type Action interface{ action() }

type (
	Loaded          struct{ Board models.Board }
	BusinessCreated struct{ Business models.Business }
	BusinessUpdated struct{ Business models.Business }
	BusinessDeleted struct{ ID int64 }
	StateCreated    struct{ State models.State }
	StateRenamed    struct{ State models.State }
	StateDeleted    struct{ ID int64 }
	UserCreated     struct{ User models.User }
)

func (Loaded) action()          {}
func (BusinessCreated) action() {}
func (BusinessUpdated) action() {}
func (BusinessDeleted) action() {}
func (StateCreated) action()    {}
func (StateRenamed) action()    {}
func (StateDeleted) action()    {}
func (UserCreated) action()     {}

// Reduce returns the board after a. The input board is never modified.
func Reduce(b models.Board, a Action) models.Board {
	switch a := a.(type) {
	case Loaded:
		return a.Board
	case BusinessCreated:
		b.Businesses = append(slices.Clone(b.Businesses), withRelations(b, a.Business))
	case BusinessUpdated:
		b.Businesses = slices.Clone(b.Businesses)
		if i := indexBusiness(b.Businesses, a.Business.ID); i >= 0 {
			b.Businesses[i] = withRelations(b, a.Business)
		}
	case BusinessDeleted:
		b.Businesses = slices.DeleteFunc(slices.Clone(b.Businesses), func(x models.Business) bool { return x.ID == a.ID })
	case StateCreated:
		b.States = append(slices.Clone(b.States), a.State)
	case StateRenamed:
		b.States = slices.Clone(b.States)
		if i := slices.IndexFunc(b.States, func(s models.State) bool { return s.ID == a.State.ID }); i >= 0 {
			b.States[i] = a.State
		}
		b.Businesses = slices.Clone(b.Businesses)
		for i := range b.Businesses {
			if b.Businesses[i].StateID == a.State.ID {
				st := a.State
				b.Businesses[i].State = &st
			}
		}
	case StateDeleted:
		b.States = slices.DeleteFunc(slices.Clone(b.States), func(s models.State) bool { return s.ID == a.ID })
	case UserCreated:
		b.Users = append(slices.Clone(b.Users), a.User)
	}
	return b
}

func indexBusiness(list []models.Business, id int64) int {
	return slices.IndexFunc(list, func(x models.Business) bool { return x.ID == id })
}

// withRelations fills relations the server omitted from the board's lists.
func withRelations(b models.Board, biz models.Business) models.Business {
	if biz.BusinessType == nil {
		if i := slices.IndexFunc(b.BusinessTypes, func(t models.BusinessType) bool { return t.ID == biz.BusinessTypeID }); i >= 0 {
			t := b.BusinessTypes[i]
			biz.BusinessType = &t
		}
	}
	if biz.User == nil {
		if i := slices.IndexFunc(b.Users, func(u models.User) bool { return u.ID == biz.UserID }); i >= 0 {
			u := b.Users[i]
			biz.User = &u
		}
	}
	if biz.State == nil {
		if i := slices.IndexFunc(b.States, func(s models.State) bool { return s.ID == biz.StateID }); i >= 0 {
			s := b.States[i]
			biz.State = &s
		}
	}
	return biz
}

// Filter keeps the businesses of one type; 0 keeps all.
func Filter(b models.Board, typeID int64) models.Board { return b.FilterByType(typeID) }

func ColumnSummaries(b models.Board) []models.ColumnSummary { return b.ColumnSummaries() }

func Totals(b models.Board) models.BoardTotals { return b.Totals() }
