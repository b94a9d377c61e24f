// Package tui is a terminal frontend for the game built on tview.
package tui

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/domain"
	"github.com/jaminalder/time-travel-tic-tac-toe/internal/view"
)

const hintText = "  [dimgray]arrows/hjkl[-] move  [dimgray]enter[-] play  [dimgray][ ][-] step  [dimgray]0-9[-] jump  [dimgray]r[-] reverse  [dimgray]n[-] new  [dimgray]q[-] quit"

var (
	cellColor    = tcell.ColorWhite
	cursorColor  = tcell.ColorDarkCyan
	winningColor = tcell.ColorOlive
)

// GameUI owns one game and renders it into tview primitives.
type GameUI struct {
	app     *tview.Application
	flex    *tview.Flex
	board   *tview.Table
	moves   *tview.List
	status  *tview.TextView
	hint    *tview.TextView
	state   domain.State
	entries []view.Entry
	cursor  int
	log     *slog.Logger
}

// NewGameUI builds the layout. app may be nil, in which case quitting is a
// no-op.
func NewGameUI(app *tview.Application, logger *slog.Logger) *GameUI {
	if logger == nil {
		logger = slog.Default()
	}
	g := &GameUI{
		app:    app,
		state:  domain.New(),
		cursor: 4,
		log:    logger.With("component", "tui"),
	}

	g.board = tview.NewTable()
	g.board.SetBorders(true)
	g.board.SetBorder(true)
	g.board.SetTitle(" Board ")

	g.status = tview.NewTextView()
	g.status.SetBorder(true)
	g.status.SetBorderPadding(0, 0, 1, 1)
	g.status.SetTitle(" Status ")
	g.status.SetTitleAlign(tview.AlignLeft)

	g.moves = tview.NewList()
	g.moves.SetBorder(true)
	g.moves.SetTitle(" History ")
	g.moves.ShowSecondaryText(false)
	g.moves.SetHighlightFullLine(true)
	g.moves.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		if index < len(g.entries) {
			g.jump(g.entries[index].Step)
		}
	})

	g.hint = tview.NewTextView()
	g.hint.SetDynamicColors(true)
	g.hint.SetText(hintText)

	side := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(g.status, 3, 0, false).
		AddItem(g.moves, 0, 1, false)
	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(g.board, 15, 0, true).
		AddItem(side, 0, 1, false)
	g.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, true).
		AddItem(g.hint, 1, 0, false)
	g.flex.SetInputCapture(g.HandleKey)

	g.refresh()
	return g
}

// Flex returns the root container.
func (g *GameUI) Flex() *tview.Flex {
	return g.flex
}

// State returns the game being shown.
func (g *GameUI) State() domain.State {
	return g.state
}

// Cursor returns the selected cell index.
func (g *GameUI) Cursor() int {
	return g.cursor
}

// HandleKey processes keyboard input. Consumed keys return nil.
func (g *GameUI) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		g.moveCursor(0, -1)
	case tcell.KeyDown:
		g.moveCursor(0, 1)
	case tcell.KeyLeft:
		g.moveCursor(-1, 0)
	case tcell.KeyRight:
		g.moveCursor(1, 0)
	case tcell.KeyEnter:
		g.play(g.cursor)
	case tcell.KeyRune:
		r := event.Rune()
		switch {
		case r >= '0' && r <= '9':
			g.jump(int(r - '0'))
		case r == ' ':
			g.play(g.cursor)
		case r == 'h':
			g.moveCursor(-1, 0)
		case r == 'j':
			g.moveCursor(0, 1)
		case r == 'k':
			g.moveCursor(0, -1)
		case r == 'l':
			g.moveCursor(1, 0)
		case r == '[':
			g.jump(g.state.Step - 1)
		case r == ']':
			g.jump(g.state.Step + 1)
		case r == 'r':
			g.state = g.state.ToggleReverse()
			g.refresh()
		case r == 'n':
			g.state = domain.New()
			g.cursor = 4
			g.log.Debug("new game")
			g.refresh()
		case r == 'q':
			if g.app != nil {
				g.app.Stop()
			}
		default:
			return event
		}
	default:
		return event
	}
	return nil
}

func (g *GameUI) moveCursor(dx, dy int) {
	row, col := domain.Location(g.cursor)
	row = clamp(row+dy, 0, 2)
	col = clamp(col+dx, 0, 2)
	g.cursor = row*3 + col
	g.refresh()
}

func (g *GameUI) play(idx int) {
	next, ok := g.state.Play(idx)
	if !ok {
		g.log.Debug("move rejected", "cell", idx)
		return
	}
	g.state = next
	g.log.Debug("move played", "cell", idx, "step", next.Step)
	g.refresh()
}

func (g *GameUI) jump(step int) {
	g.state = g.state.JumpTo(step)
	g.refresh()
}

// refresh redraws every primitive from the current state.
func (g *GameUI) refresh() {
	v := view.Project(g.state)

	for _, c := range v.Cells {
		text := " · "
		if c.Mark != "" {
			text = fmt.Sprintf(" %s ", c.Mark)
		}
		cell := tview.NewTableCell(text).
			SetAlign(tview.AlignCenter).
			SetSelectable(false).
			SetTextColor(cellColor)
		switch {
		case c.Index == g.cursor && !v.Over:
			cell.SetBackgroundColor(cursorColor)
		case c.Winning:
			cell.SetBackgroundColor(winningColor)
		}
		g.board.SetCell(c.Row, c.Col, cell)
	}

	g.status.SetText(v.Status)

	g.entries = v.Entries
	g.moves.Clear()
	selected := 0
	for i, e := range v.Entries {
		label := e.Label
		if e.Location != "" {
			label += " " + e.Location
		}
		if e.Current {
			label = "[::b]" + label + "[::-]"
		}
		g.moves.AddItem(label, "", 0, nil)
		if e.Step == v.Step {
			selected = i
		}
	}
	g.moves.SetCurrentItem(selected)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
