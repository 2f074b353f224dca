package models

import "github.com/shopspring/decimal"

// ColumnSummary aggregates the businesses of one state.
type ColumnSummary struct {
	State      State   `json:"state"`
	Count      int     `json:"count"`
	Total      Money   `json:"total"`
	Average    Money   `json:"average"`
	Percentage float64 `json:"percentage"` // share of all businesses, two decimals
}

// BoardTotals aggregates every business on the board.
type BoardTotals struct {
	Count       int    `json:"count"`
	Total       Money  `json:"total"`
	Average     Money  `json:"average"`
	MostPopular *State `json:"most_popular,omitempty"`
}

// FilterByType returns a copy of the board keeping only businesses of the
// given type. A zero typeID keeps everything.
func (b Board) FilterByType(typeID int64) Board {
	out := b
	out.Businesses = make([]Business, 0, len(b.Businesses))
	for _, biz := range b.Businesses {
		if typeID == 0 || biz.BusinessTypeID == typeID {
			out.Businesses = append(out.Businesses, biz)
		}
	}
	return out
}

// InState returns the businesses placed in the given state, in board order.
func (b Board) InState(stateID int64) []Business {
	var out []Business
	for _, biz := range b.Businesses {
		if biz.StateID == stateID {
			out = append(out, biz)
		}
	}
	return out
}

// ColumnSummaries returns one summary per state, in state order.
func (b Board) ColumnSummaries() []ColumnSummary {
	all := len(b.Businesses)
	out := make([]ColumnSummary, 0, len(b.States))
	for _, st := range b.States {
		col := b.InState(st.ID)
		total := sum(col)
		s := ColumnSummary{State: st, Count: len(col), Total: total, Average: average(total, len(col))}
		if all > 0 {
			pct, _ := decimal.NewFromInt(int64(len(col))).
				Div(decimal.NewFromInt(int64(all))).
				Mul(decimal.NewFromInt(100)).
				Round(2).
				Float64()
			s.Percentage = pct
		}
		out = append(out, s)
	}
	return out
}

// Totals aggregates the whole board. Ties for most popular go to the
// earliest state.
func (b Board) Totals() BoardTotals {
	total := sum(b.Businesses)
	t := BoardTotals{Count: len(b.Businesses), Total: total, Average: average(total, len(b.Businesses))}
	best := -1
	for _, s := range b.ColumnSummaries() {
		if s.Count > best {
			best = s.Count
			st := s.State
			t.MostPopular = &st
		}
	}
	return t
}

func sum(list []Business) Money {
	var total Money
	for _, biz := range list {
		total = total.Add(biz.Value)
	}
	return total
}

func average(total Money, n int) Money {
	if n == 0 {
		return Money{}
	}
	return NewMoney(total.Decimal().Div(decimal.NewFromInt(int64(n))))
}
