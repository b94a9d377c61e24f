package domain

// NoMove marks the initial snapshot, which has no cell played.
const NoMove = -1

// Snapshot is a board captured after one move.
type Snapshot struct {
	Board Board
	Move  int
}

// State is a full game: its history, the step being viewed, the mark to play
// next and the move list ordering flag.
//
// History[0] is always the empty board. Values of State are never modified by
// the functions in this package; each transition returns a new State.
type State struct {
	History  []Snapshot
	Step     int
	Next     Cell
	Reversed bool
}

// New returns a game at its start with X to move.
func New() State {
	return State{
		History: []Snapshot{{Move: NoMove}},
		Next:    X,
	}
}

// Current returns the snapshot at Step.
func (s State) Current() Snapshot {
	return s.History[s.Step]
}

// Result evaluates the board at Step.
func (s State) Result() Result {
	return Evaluate(s.Current().Board)
}

// Moves is the number of moves recorded in the history.
func (s State) Moves() int {
	return len(s.History) - 1
}

// Play places the active mark at idx. Snapshots after Step are discarded
// before the new one is appended. The second return value is false, and s is
// returned untouched, when idx is out of range, the cell is taken or the game
// at Step is already decided.
func (s State) Play(idx int) (State, bool) {
	if idx < 0 || idx >= len(Board{}) {
		return s, false
	}
	cur := s.Current()
	if cur.Board[idx] != Empty || Evaluate(cur.Board).Over() {
		return s, false
	}

	history := make([]Snapshot, s.Step+1, s.Step+2)
	copy(history, s.History[:s.Step+1])
	history = append(history, Snapshot{Board: cur.Board.Place(idx, s.Next), Move: idx})

	return State{
		History:  history,
		Step:     len(history) - 1,
		Next:     s.Next.Opponent(),
		Reversed: s.Reversed,
	}, true
}

// JumpTo moves the view to step. X moves on even steps. History is kept, so
// a later JumpTo can return to any recorded step until a new move is played.
// Steps outside the history leave s unchanged.
func (s State) JumpTo(step int) State {
	if step < 0 || step >= len(s.History) {
		return s
	}
	s.Step = step
	if step%2 == 0 {
		s.Next = X
	} else {
		s.Next = O
	}
	return s
}

// ToggleReverse flips the move list ordering.
func (s State) ToggleReverse() State {
	s.Reversed = !s.Reversed
	return s
}
