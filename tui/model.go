// Package tui renders the board in a terminal and drives it through a
// boardclient.Store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"businessboard/backend/boardclient"
	"businessboard/backend/models"
)

const callTimeout = 10 * time.Second

// resultMsg reports a finished server call.
type resultMsg struct {
	status string
	err    error
}

type inputMode int

const (
	modeBoard inputMode = iota
	modeNewState
	modeRename
)

type Model struct {
	store *boardclient.Store
	keys  keyMap

	col, row int
	typeIdx  int // 0 = all types, otherwise index+1 into BusinessTypes

	mode  inputMode
	input textinput.Model

	status    string
	statusErr bool
	width     int
}

func New(store *boardclient.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 255
	return Model{store: store, keys: defaultKeys(), input: ti, width: 100}
}

// Run starts the program on the alternate screen.
func Run(store *boardclient.Store) error {
	_, err := tea.NewProgram(New(store), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.call("board loaded", m.store.Refresh)
}

// call runs fn off the update loop and reports the outcome as a resultMsg.
func (m Model) call(status string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return resultMsg{status: status, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case resultMsg:
		if msg.err != nil {
			m.status, m.statusErr = describe(msg.err), true
		} else {
			m.status, m.statusErr = msg.status, false
		}
		m.clamp()
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeBoard {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Left):
		m.col--
		m.row = 0
	case key.Matches(msg, k.Right):
		m.col++
		m.row = 0
	case key.Matches(msg, k.Up):
		m.row--
	case key.Matches(msg, k.Down):
		m.row++
	case key.Matches(msg, k.MoveLeft):
		return m.moveSelected(-1)
	case key.Matches(msg, k.MoveRight):
		return m.moveSelected(1)
	case key.Matches(msg, k.Delete):
		biz, ok := m.selected()
		if !ok {
			return m, nil
		}
		id := biz.ID
		return m, m.call("removed "+biz.Name, func(ctx context.Context) error { return m.store.DeleteBusiness(ctx, id) })
	case key.Matches(msg, k.DeleteState):
		st, ok := m.column()
		if !ok {
			return m, nil
		}
		id := st.ID
		return m, m.call("deleted column "+st.Name, func(ctx context.Context) error { return m.store.DeleteState(ctx, id) })
	case key.Matches(msg, k.NewState):
		m.mode = modeNewState
		m.input.SetValue("")
		m.input.Placeholder = "New column name..."
		return m, m.input.Focus()
	case key.Matches(msg, k.Rename):
		st, ok := m.column()
		if !ok {
			return m, nil
		}
		m.mode = modeRename
		m.input.SetValue(st.Name)
		m.input.CursorEnd()
		m.input.Placeholder = "Column name..."
		return m, m.input.Focus()
	case key.Matches(msg, k.Filter):
		m.typeIdx = (m.typeIdx + 1) % (len(m.store.Board().BusinessTypes) + 1)
		m.row = 0
	case key.Matches(msg, k.Refresh):
		return m, m.call("board refreshed", m.store.Refresh)
	}
	m.clamp()
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBoard
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = modeBoard
		m.input.Blur()
		if name == "" {
			m.status, m.statusErr = "State name is required.", true
			return m, nil
		}
		if mode == modeNewState {
			return m, m.call("created column "+name, func(ctx context.Context) error {
				_, err := m.store.CreateState(ctx, name)
				return err
			})
		}
		st, ok := m.column()
		if !ok {
			return m, nil
		}
		id := st.ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()
			changed, err := m.store.RenameState(ctx, id, name)
			if err == nil && !changed {
				return resultMsg{status: "No changes were made. The state name remains the same."}
			}
			return resultMsg{status: "renamed column to " + name, err: err}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) moveSelected(dir int) (tea.Model, tea.Cmd) {
	biz, ok := m.selected()
	if !ok {
		return m, nil
	}
	states := m.store.Board().States
	to := m.col + dir
	if to < 0 || to >= len(states) {
		return m, nil
	}
	target := states[to]
	m.col = to
	id := biz.ID
	return m, m.call(fmt.Sprintf("moved %s to %s", biz.Name, target.Name), func(ctx context.Context) error {
		return m.store.Move(ctx, id, target.ID)
	})
}

func (m Model) visible() models.Board {
	b := m.store.Board()
	return boardclient.Filter(b, m.typeID(b))
}

func (m Model) typeID(b models.Board) int64 {
	if m.typeIdx <= 0 || m.typeIdx > len(b.BusinessTypes) {
		return 0
	}
	return b.BusinessTypes[m.typeIdx-1].ID
}

func (m Model) column() (models.State, bool) {
	states := m.store.Board().States
	if m.col < 0 || m.col >= len(states) {
		return models.State{}, false
	}
	return states[m.col], true
}

func (m Model) selected() (models.Business, bool) {
	st, ok := m.column()
	if !ok {
		return models.Business{}, false
	}
	cards := m.visible().InState(st.ID)
	if m.row < 0 || m.row >= len(cards) {
		return models.Business{}, false
	}
	return cards[m.row], true
}

func (m *Model) clamp() {
	states := m.store.Board().States
	m.col = max(0, min(m.col, len(states)-1))
	n := 0
	if st, ok := m.column(); ok {
		n = len(m.visible().InState(st.ID))
	}
	m.row = max(0, min(m.row, n-1))
}

func (m Model) View() string {
	b := m.visible()
	var header strings.Builder
	header.WriteString(titleStyle.Render("Business Board"))
	if id := m.typeID(b); id != 0 {
		header.WriteString("  " + accentStyle.Render("type: "+b.BusinessTypes[m.typeIdx-1].Name))
	}

	colWidth := 24
	if n := len(b.States); n > 0 && m.width/n-4 > colWidth {
		colWidth = min(m.width/n-4, 40)
	}
	cols := make([]string, 0, len(b.States))
	for i, s := range boardclient.ColumnSummaries(b) {
		lines := []string{
			titleStyle.Render(truncate(s.State.Name, colWidth)),
			mutedStyle.Render(fmt.Sprintf("%d | %s | %.2f%%", s.Count, s.Total, s.Percentage)),
			"",
		}
		for j, biz := range b.InState(s.State.ID) {
			card := truncate(biz.Name, colWidth-10) + " " + biz.Value.String()
			if i == m.col && j == m.row {
				card = selectedCard.Render(card)
			}
			lines = append(lines, card)
		}
		style := columnStyle
		if i == m.col {
			style = activeColumnStyle
		}
		cols = append(cols, style.Width(colWidth).Render(strings.Join(lines, "\n")))
	}

	t := boardclient.Totals(b)
	footer := fmt.Sprintf("%d businesses | total %s | average %s", t.Count, t.Total, t.Average)
	if t.MostPopular != nil {
		footer += " | most popular " + t.MostPopular.Name
	}

	parts := []string{header.String(), lipgloss.JoinHorizontal(lipgloss.Top, cols...), mutedStyle.Render(footer)}
	if m.mode != modeBoard {
		parts = append(parts, m.input.View())
	}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, successStyle.Render(m.status))
		}
	}
	parts = append(parts, helpLine(m.keys))
	return strings.Join(parts, "\n")
}

func helpLine(k keyMap) string {
	items := make([]string, 0, len(k.help()))
	for _, b := range k.help() {
		h := b.Help()
		items = append(items, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(items, " | "))
}

func describe(err error) string {
	var apiErr *boardclient.APIError
	if errors.As(err, &apiErr) {
		if fields := apiErr.FieldErrors(); len(fields) > 1 {
			return strings.Join(fields, " ")
		}
		return apiErr.Error()
	}
	return err.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
