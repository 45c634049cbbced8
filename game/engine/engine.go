package engine

import (
	"fmt"

	"github.com/notnil/chess"

	"chessroom/game/rooms"
)

// ChessEngine implements rooms.Engine on top of notnil/chess. Positions
// are exchanged as FEN strings, the same encoding browser clients feed to
// their board widgets.
type ChessEngine struct{}

// New returns a chess position engine.
func New() *ChessEngine {
	return &ChessEngine{}
}

// NewFromStart returns the FEN of the standard starting position.
func (e *ChessEngine) NewFromStart() string {
	return chess.NewGame().FEN()
}

// Apply validates mv against the position encoded in fen and returns the
// resulting FEN. Malformed positions, unparseable moves, and illegal
// moves all reject with an error wrapping rooms.ErrIllegalMove.
func (e *ChessEngine) Apply(fen string, mv rooms.Move) (string, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return "", err
	}

	uci := mv.From + mv.To + mv.Promotion
	move, err := chess.UCINotation{}.Decode(game.Position(), uci)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", rooms.ErrIllegalMove, uci, err)
	}

	if err := game.Move(move); err != nil {
		return "", fmt.Errorf("%w: %q: %v", rooms.ErrIllegalMove, uci, err)
	}

	return game.FEN(), nil
}

// IsTerminal reports whether the game encoded in fen has an outcome
// (checkmate, stalemate, or another drawn ending). An unparseable
// position reports false; callers only use this for display.
func (e *ChessEngine) IsTerminal(fen string) bool {
	game, err := gameFromFEN(fen)
	if err != nil {
		return false
	}
	return game.Outcome() != chess.NoOutcome
}

func gameFromFEN(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: bad position %q: %v", rooms.ErrIllegalMove, fen, err)
	}
	return chess.NewGame(opt), nil
}
