package services

import (
	"fmt"

	"github.com/rohits-web03/escapegame/internal/models"
)

// ProgressState is where a group stands on one challenge. Only a boolean is
// persisted; the three states are derived from it and from the row's presence.
type ProgressState int

const (
	Unvisited ProgressState = iota
	InProgress
	Completed
)

func (p ProgressState) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "unvisited"
	}
}

func (p ProgressState) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *ProgressState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unvisited":
		*p = Unvisited
	case "in_progress":
		*p = InProgress
	case "completed":
		*p = Completed
	default:
		return fmt.Errorf("unknown progress state %q", b)
	}
	return nil
}

// StateOf maps a stored progress row (nil when there is none) to its state.
func StateOf(row *models.ChallengeProgress) ProgressState {
	switch {
	case row == nil:
		return Unvisited
	case row.IsCompleted:
		return Completed
	default:
		return InProgress
	}
}
