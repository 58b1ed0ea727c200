package models

// Mark represents a play token on the board
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"
	Empty Mark = ""
)

// Winner values beyond the two marks
const (
	NoWinner = ""
	Draw     = "Draw"
)

// Other returns the opposing mark
func (m Mark) Other() Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

// Board represents the 3x3 game board
type Board [9]Mark

// GameState represents the current state of a game.
// It is treated as an immutable value: every applied move produces a new one.
type GameState struct {
	Board         Board  `json:"board"`
	CurrentPlayer Mark   `json:"currentPlayer"`
	MoveHistoryX  []int  `json:"moveHistoryX"`
	MoveHistoryO  []int  `json:"moveHistoryO"`
	Winner        string `json:"winner"`
	WinningLine   []int  `json:"winningLine,omitempty"`
}

// Finished reports whether the game has ended with a win or a draw.
func (g GameState) Finished() bool {
	return g.Winner != NoWinner
}

// Clone returns a deep copy of the state so histories are never shared
// with a mutated successor.
func (g GameState) Clone() GameState {
	c := g
	c.MoveHistoryX = cloneInts(g.MoveHistoryX)
	c.MoveHistoryO = cloneInts(g.MoveHistoryO)
	c.WinningLine = cloneInts(g.WinningLine)
	return c
}

// cloneInts copies a slice, keeping nil nil so wire shapes stay stable.
func cloneInts(s []int) []int {
	if s == nil {
		return nil
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// History returns the move history for the given mark, oldest first.
func (g GameState) History(m Mark) []int {
	if m == MarkX {
		return g.MoveHistoryX
	}
	return g.MoveHistoryO
}
