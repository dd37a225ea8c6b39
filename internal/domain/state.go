package domain

import "fmt"

// State is the contract lifecycle state of a player.
type State string

const (
	StateUnrostered    State = "unrostered"
	StateRostered      State = "rostered"
	StateUnsigned      State = "unsigned"
	StateFreeAgent     State = "free_agent"
	StateOfferMatching State = "offer_matching"
)

func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case StateUnrostered, StateRostered, StateUnsigned, StateFreeAgent, StateOfferMatching:
		return st, nil
	}
	return "", fmt.Errorf("unknown player state %q", s)
}

func (s State) String() string {
	return string(s)
}

// InBidding reports whether the state carries a bidding window and a bid ledger.
func (s State) InBidding() bool {
	return s == StateFreeAgent || s == StateOfferMatching
}

// Transition names, used in errors, logs and metrics.
const (
	TransitionAssignToTeam       = "assign_to_team"
	TransitionSetToRostered      = "set_to_rostered"
	TransitionSignForCurrentTeam = "sign_for_current_team"
	TransitionSetToUnrostered    = "set_to_unrostered"
	TransitionSetToUnsigned      = "set_to_unsigned"
	TransitionSetToFreeAgent     = "set_to_free_agent"
	TransitionAddBid             = "add_bid"
	TransitionCloseBidding       = "close_bidding"
	TransitionExpireMatch        = "expire_match"
	TransitionMatchOffer         = "match_offer"
)

// UnrosterPolicy decides what happens to the team reference when a player is unrostered.
type UnrosterPolicy string

const (
	// UnrosterKeepTeam leaves the player attached to the team, off the active cap.
	UnrosterKeepTeam UnrosterPolicy = "keep_team"
	// UnrosterReleaseToLeague clears the team reference.
	UnrosterReleaseToLeague UnrosterPolicy = "release"
)

func ParseUnrosterPolicy(s string) (UnrosterPolicy, error) {
	switch p := UnrosterPolicy(s); p {
	case UnrosterKeepTeam, UnrosterReleaseToLeague:
		return p, nil
	}
	return "", fmt.Errorf("unknown unroster policy %q", s)
}
