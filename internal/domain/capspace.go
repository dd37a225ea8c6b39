package domain

import (
	"fmt"
	"time"
)

// SalaryCaps maps a season year to the salary cap for that season.
type SalaryCaps map[int]int

// ForSeason returns the cap of the season containing asOf.
func (c SalaryCaps) ForSeason(asOf time.Time) (int, error) {
	salaryCap, ok := c[asOf.Year()]
	if !ok {
		return 0, fmt.Errorf("no salary cap configured for season %d: %w", asOf.Year(), ErrNotFound)
	}
	return salaryCap, nil
}

// RemainingCapSpace subtracts the given contract values from the season cap.
func (c SalaryCaps) RemainingCapSpace(asOf time.Time, contractValues ...int) (int, error) {
	salaryCap, err := c.ForSeason(asOf)
	if err != nil {
		return 0, err
	}
	remaining := salaryCap
	for _, v := range contractValues {
		remaining -= v
	}
	return remaining, nil
}

// CountsAgainstCap reports whether a player's contract value is charged to its team's cap.
// Players in free agency or offer matching are charged once their new contract is final.
func CountsAgainstCap(s State) bool {
	switch s {
	case StateRostered, StateUnrostered, StateUnsigned:
		return true
	}
	return false
}
