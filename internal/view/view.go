// Package view projects a game state onto what a renderer needs: the grid with
// its winning cells, a status line and the list of history entries.
package view

import (
	"fmt"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/domain"
)

// CellView is one square of the rendered grid.
type CellView struct {
	Index   int
	Row     int
	Col     int
	Mark    string
	Winning bool
}

// Entry is one item of the move list.
type Entry struct {
	Step     int
	Label    string
	Location string
	Current  bool
}

// Game is the projection of a domain.State.
type Game struct {
	Cells    [9]CellView
	Rows     [3][3]CellView
	Status   string
	Entries  []Entry
	Step     int
	Over     bool
	Reversed bool
}

// Project builds the view of s. It holds no logic beyond formatting.
func Project(s domain.State) Game {
	cur := s.Current()
	res := domain.Evaluate(cur.Board)

	g := Game{
		Status:   Status(s.Next, res),
		Entries:  Entries(s),
		Step:     s.Step,
		Over:     res.Over(),
		Reversed: s.Reversed,
	}
	for i, c := range cur.Board {
		row, col := domain.Location(i)
		g.Cells[i] = CellView{Index: i, Row: row, Col: col, Mark: c.String()}
	}
	if res.Outcome == domain.Win {
		for _, i := range res.Line {
			g.Cells[i].Winning = true
		}
	}
	for _, c := range g.Cells {
		g.Rows[c.Row][c.Col] = c
	}
	return g
}

// Status is the line shown above the move list.
func Status(next domain.Cell, res domain.Result) string {
	switch res.Outcome {
	case domain.Win:
		return "Winner: " + res.Winner.String()
	case domain.Draw:
		return "Draw"
	default:
		return "Next player: " + next.String()
	}
}

// Entries lists every recorded step, newest first when s.Reversed is set.
// The entry for s.Step is marked current unless it is the latest one.
func Entries(s domain.State) []Entry {
	last := len(s.History) - 1
	out := make([]Entry, 0, len(s.History))
	for step, snap := range s.History {
		e := Entry{Step: step, Label: Label(step), Current: step == s.Step && step != last}
		if snap.Move != domain.NoMove {
			e.Location = Coordinates(snap.Move)
		}
		out = append(out, e)
	}
	if s.Reversed {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Label describes a history step.
func Label(step int) string {
	if step == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d", step)
}

// Coordinates formats a cell as 1-based "(col, row)".
func Coordinates(idx int) string {
	row, col := domain.Location(idx)
	return fmt.Sprintf("(%d, %d)", col+1, row+1)
}
