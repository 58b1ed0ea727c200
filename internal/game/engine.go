package game

import (
	"errors"
	"fmt"

	"tictacfade/internal/models"
)

var (
	ErrNotYourTurn     = errors.New("Not your turn")
	ErrGameFinished    = errors.New("Game already finished")
	ErrInvalidPosition = errors.New("Invalid move position")
	ErrCellOccupied    = errors.New("Cell already occupied")
)

// maxPieces is the sliding-window limit: a mark's 4th placement evicts
// its oldest piece from the board.
const maxPieces = 3

// winLines defines all possible winning combinations, in scan order
var winLines = [8][3]int{
	{0, 1, 2}, // top row
	{3, 4, 5}, // middle row
	{6, 7, 8}, // bottom row
	{0, 3, 6}, // left column
	{1, 4, 7}, // middle column
	{2, 5, 8}, // right column
	{0, 4, 8}, // diagonal
	{2, 4, 6}, // anti-diagonal
}

// New returns a fresh game: empty board, X to move.
func New() models.GameState {
	return models.GameState{
		Board:         models.Board{},
		CurrentPlayer: models.MarkX,
		MoveHistoryX:  []int{},
		MoveHistoryO:  []int{},
		Winner:        models.NoWinner,
	}
}

// Apply validates a move and returns the resulting state. The input
// state is never mutated; rejections leave it untouched and return an
// unchanged zero-value state alongside the error.
func Apply(state models.GameState, position int, mark models.Mark) (models.GameState, error) {
	if state.CurrentPlayer != mark {
		return models.GameState{}, ErrNotYourTurn
	}
	if state.Finished() {
		return models.GameState{}, ErrGameFinished
	}
	if position < 0 || position > 8 {
		return models.GameState{}, ErrInvalidPosition
	}
	if state.Board[position] != models.Empty {
		return models.GameState{}, ErrCellOccupied
	}

	next := state.Clone()

	history := next.History(mark)
	history = append(history, position)
	if len(history) > maxPieces {
		oldest := history[0]
		history = history[1:]
		next.Board[oldest] = models.Empty
	}
	if mark == models.MarkX {
		next.MoveHistoryX = history
	} else {
		next.MoveHistoryO = history
	}

	next.Board[position] = mark
	next.CurrentPlayer = mark.Other()

	if winner, line := checkWinner(next.Board); winner != models.Empty {
		next.Winner = string(winner)
		next.WinningLine = line
	} else if isBoardFull(next.Board) {
		next.Winner = models.Draw
	}

	return next, nil
}

// IsValidMove reports whether Apply would accept the move.
func IsValidMove(state models.GameState, position int, mark models.Mark) bool {
	_, err := Apply(state, position, mark)
	return err == nil
}

// ValidMoves returns every position the current player may play,
// or nothing once the game is finished.
func ValidMoves(state models.GameState) []int {
	if state.Finished() {
		return nil
	}
	var moves []int
	for i, cell := range state.Board {
		if cell == models.Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// NextRemovalPosition returns the position the given mark would lose to
// the sliding window on its next placement, or -1 if no eviction is due.
func NextRemovalPosition(state models.GameState, mark models.Mark) int {
	history := state.History(mark)
	if len(history) >= maxPieces {
		return history[0]
	}
	return -1
}

// StatusText renders the display status used for system chat announcements.
func StatusText(state models.GameState) string {
	switch {
	case state.Winner == models.Draw:
		return "It's a draw!"
	case state.Winner != models.NoWinner:
		return fmt.Sprintf("Player %s wins!", state.Winner)
	default:
		return fmt.Sprintf("Player %s's turn", state.CurrentPlayer)
	}
}

// checkWinner scans the 8 lines in fixed order and returns the first
// completed one, if any.
func checkWinner(board models.Board) (models.Mark, []int) {
	for _, line := range winLines {
		a, b, c := line[0], line[1], line[2]
		if board[a] != models.Empty && board[a] == board[b] && board[b] == board[c] {
			return board[a], []int{a, b, c}
		}
	}
	return models.Empty, nil
}

// isBoardFull checks if the board is full
func isBoardFull(board models.Board) bool {
	for _, cell := range board {
		if cell == models.Empty {
			return false
		}
	}
	return true
}
