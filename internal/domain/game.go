package domain

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// String renders the mark as shown on the board; Empty renders as "".
func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other mark. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Place returns a copy of b with mark at idx. b itself is left as is.
func (b Board) Place(idx int, mark Cell) Board {
	b[idx] = mark
	return b
}

// Full reports whether no Empty cell is left.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Location maps a cell index to its zero-based row and column.
func Location(idx int) (row, col int) {
	return idx / 3, idx % 3
}

// Lines are the eight winning triples, in evaluation order.
var Lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Outcome classifies a board.
type Outcome uint8

const (
	None Outcome = iota
	Win
	Draw
)

// Result is what Evaluate reports for a board. Winner and Line are only set
// for a Win.
type Result struct {
	Outcome Outcome
	Winner  Cell
	Line    [3]int
}

// Over reports whether no further move is accepted.
func (r Result) Over() bool { return r.Outcome != None }

// Evaluate scans Lines and returns the first completed one. A full board with
// no completed line is a Draw.
func Evaluate(b Board) Result {
	for _, ln := range Lines {
		m := b[ln[0]]
		if m != Empty && b[ln[1]] == m && b[ln[2]] == m {
			return Result{Outcome: Win, Winner: m, Line: ln}
		}
	}
	if b.Full() {
		return Result{Outcome: Draw}
	}
	return Result{}
}
