package domain

import (
	"fmt"
	"time"
)

// Player is the aggregate root of the roster economy. The lifecycle fields are unexported and are
// written only by the transition methods below, so every Player that exists in memory satisfies
// Validate. A transition that returns an error leaves the player unchanged.
type Player struct {
	ID          string
	Name        string
	Position    string
	HeadshotURL string

	state               State
	teamID              string
	contractValue       int
	yearContractExpires *int
	yearAcquired        *int
	endOfFreeAgency     *time.Time
	bids                []Bid
	version             int64
}

// PlayerRecord is the flat persisted shape of a Player.
type PlayerRecord struct {
	ID                  string
	Name                string
	Position            string
	HeadshotURL         string
	State               State
	TeamID              string
	ContractValue       int
	YearContractExpires *int
	YearAcquired        *int
	EndOfFreeAgency     *time.Time
	Bids                []Bid
	Version             int64
}

func NewPlayer(id, name, position, headshotURL string) (*Player, error) {
	if id == "" {
		return nil, invalidField("player id", "must not be empty")
	}
	if name == "" {
		return nil, invalidField("player name", "must not be empty")
	}
	return &Player{
		ID:          id,
		Name:        name,
		Position:    position,
		HeadshotURL: headshotURL,
		state:       StateUnrostered,
	}, nil
}

// RestorePlayer rebuilds a player from storage, rejecting records that break a lifecycle invariant.
func RestorePlayer(rec PlayerRecord) (*Player, error) {
	p := &Player{
		ID:                  rec.ID,
		Name:                rec.Name,
		Position:            rec.Position,
		HeadshotURL:         rec.HeadshotURL,
		state:               rec.State,
		teamID:              rec.TeamID,
		contractValue:       rec.ContractValue,
		yearContractExpires: copyInt(rec.YearContractExpires),
		yearAcquired:        copyInt(rec.YearAcquired),
		endOfFreeAgency:     copyTime(rec.EndOfFreeAgency),
		bids:                append([]Bid(nil), rec.Bids...),
		version:             rec.Version,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("player %s: %w", rec.ID, err)
	}
	return p, nil
}

func (p *Player) Record() PlayerRecord {
	return PlayerRecord{
		ID:                  p.ID,
		Name:                p.Name,
		Position:            p.Position,
		HeadshotURL:         p.HeadshotURL,
		State:               p.state,
		TeamID:              p.teamID,
		ContractValue:       p.contractValue,
		YearContractExpires: copyInt(p.yearContractExpires),
		YearAcquired:        copyInt(p.yearAcquired),
		EndOfFreeAgency:     copyTime(p.endOfFreeAgency),
		Bids:                p.Bids(),
		Version:             p.version,
	}
}

// Validate checks the lifecycle invariants.
func (p *Player) Validate() error {
	if p.ID == "" {
		return invalidField("player id", "must not be empty")
	}
	if _, err := ParseState(string(p.state)); err != nil {
		return invalidField("state", err.Error())
	}
	if p.state.InBidding() != (p.endOfFreeAgency != nil) {
		return invalidField("end of free agency", fmt.Sprintf("must be set exactly while bidding, state is %s", p.state))
	}
	if !p.state.InBidding() && len(p.bids) > 0 {
		return invalidField("bids", fmt.Sprintf("must be empty in state %s", p.state))
	}
	switch p.state {
	case StateUnrostered, StateUnsigned:
		if p.contractValue < 0 {
			return invalidField("contract value", "must not be negative")
		}
	default:
		if p.contractValue < MinimumContractValue {
			return invalidField("contract value", fmt.Sprintf("must be at least %d in state %s", MinimumContractValue, p.state))
		}
	}
	if p.teamID == "" && p.state != StateUnrostered {
		return invalidField("team id", fmt.Sprintf("must be set in state %s", p.state))
	}
	for _, b := range p.bids {
		if b.Amount <= 0 {
			return invalidField("bid amount", "must be positive")
		}
	}
	return nil
}

func (p *Player) State() State { return p.state }
func (p *Player) TeamID() string { return p.teamID }
func (p *Player) HasTeam() bool { return p.teamID != "" }
func (p *Player) ContractValue() int { return p.contractValue }
func (p *Player) Version() int64 { return p.version }
func (p *Player) Bids() []Bid { return append([]Bid(nil), p.bids...) }

func (p *Player) YearContractExpires() (int, bool) {
	if p.yearContractExpires == nil {
		return 0, false
	}
	return *p.yearContractExpires, true
}

func (p *Player) YearAcquired() (int, bool) {
	if p.yearAcquired == nil {
		return 0, false
	}
	return *p.yearAcquired, true
}

func (p *Player) EndOfFreeAgency() (time.Time, bool) {
	if p.endOfFreeAgency == nil {
		return time.Time{}, false
	}
	return *p.endOfFreeAgency, true
}

// WinningBid returns the bid that currently wins the ledger.
func (p *Player) WinningBid() (Bid, bool) {
	return winningBid(p.bids)
}

// MarkCommitted records the version assigned by the store after a successful commit.
func (p *Player) MarkCommitted(version int64) {
	p.version = version
}

// AssignToTeam attaches an unrostered player to a team without giving it a contract.
func (p *Player) AssignToTeam(teamID string) error {
	if p.state != StateUnrostered {
		return invalidTransition(p.state, TransitionAssignToTeam, "")
	}
	if teamID == "" {
		return invalidField("team id", "must not be empty")
	}
	p.teamID = teamID
	return nil
}

func (p *Player) SetToRostered(yearAcquired, contractValue int) error {
	if contractValue < MinimumContractValue {
		return invalidField("contract value", fmt.Sprintf("must be at least %d", MinimumContractValue))
	}
	if !p.HasTeam() {
		return invalidTransition(p.state, TransitionSetToRostered, "player has no team")
	}
	p.state = StateRostered
	p.contractValue = contractValue
	p.yearAcquired = &yearAcquired
	p.clearBidding()
	return nil
}

func (p *Player) SignForCurrentTeam(yearContractExpires, contractValue int) error {
	if contractValue < MinimumContractValue {
		return invalidField("contract value", fmt.Sprintf("must be at least %d", MinimumContractValue))
	}
	if !p.HasTeam() {
		return invalidTransition(p.state, TransitionSignForCurrentTeam, "player has no team")
	}
	p.state = StateRostered
	p.contractValue = contractValue
	p.yearContractExpires = &yearContractExpires
	p.clearBidding()
	return nil
}

func (p *Player) SetToUnrostered(policy UnrosterPolicy) error {
	if p.state != StateRostered {
		return invalidTransition(p.state, TransitionSetToUnrostered, "")
	}
	if _, err := ParseUnrosterPolicy(string(policy)); err != nil {
		return invalidField("unroster policy", err.Error())
	}
	p.state = StateUnrostered
	p.contractValue = 0
	if policy == UnrosterReleaseToLeague {
		p.teamID = ""
	}
	return nil
}

// SetToUnsigned lapses a rostered contract; the team keeps the rights to the player.
func (p *Player) SetToUnsigned() error {
	if p.state != StateRostered {
		return invalidTransition(p.state, TransitionSetToUnsigned, "")
	}
	p.state = StateUnsigned
	p.contractValue = 0
	p.yearContractExpires = nil
	return nil
}

// SetToFreeAgent opens bidding until biddingEndsAt. Rostered players qualify only when their
// contract has no expiry year or expires no later than the bidding year.
func (p *Player) SetToFreeAgent(biddingEndsAt time.Time) error {
	switch p.state {
	case StateUnsigned:
	case StateRostered:
		if p.yearContractExpires != nil && *p.yearContractExpires > biddingEndsAt.Year() {
			return invalidTransition(p.state, TransitionSetToFreeAgent,
				fmt.Sprintf("contract runs through %d", *p.yearContractExpires))
		}
	default:
		return invalidTransition(p.state, TransitionSetToFreeAgent, "")
	}
	if biddingEndsAt.IsZero() {
		return invalidField("bidding end", "must be set")
	}
	p.state = StateFreeAgent
	end := biddingEndsAt
	p.endOfFreeAgency = &end
	p.bids = nil
	if p.contractValue < MinimumContractValue {
		p.contractValue = MinimumContractValue
	}
	return nil
}

// AddBid appends a bid to the ledger. The bidding team may be the player's own team.
func (p *Player) AddBid(id, teamID string, amount int, at time.Time) error {
	if p.state != StateFreeAgent {
		return invalidTransition(p.state, TransitionAddBid, "")
	}
	if !at.Before(*p.endOfFreeAgency) {
		return invalidTransition(p.state, TransitionAddBid, "bidding window has closed")
	}
	if amount <= 0 {
		return invalidField("bid amount", "must be positive")
	}
	if teamID == "" {
		return invalidField("team id", "must not be empty")
	}
	p.bids = append(p.bids, Bid{ID: id, TeamID: teamID, Amount: amount, CreatedOn: at})
	return nil
}

// CloseBidding moves an elapsed free agent into offer matching and extends the window.
func (p *Player) CloseBidding(now time.Time, matchWindow time.Duration) error {
	if p.state != StateFreeAgent {
		return invalidTransition(p.state, TransitionCloseBidding, "")
	}
	if now.Before(*p.endOfFreeAgency) {
		return invalidTransition(p.state, TransitionCloseBidding, "bidding window still open")
	}
	if matchWindow <= 0 {
		return invalidField("match window", "must be positive")
	}
	end := p.endOfFreeAgency.Add(matchWindow)
	p.state = StateOfferMatching
	p.endOfFreeAgency = &end
	return nil
}

// ExpireMatch finalizes an offer the incumbent team did not match in time. The player joins the
// winning bidder; with no bids the player stays with the incumbent at the league minimum.
func (p *Player) ExpireMatch(now time.Time) error {
	if p.state != StateOfferMatching {
		return invalidTransition(p.state, TransitionExpireMatch, "")
	}
	if now.Before(*p.endOfFreeAgency) {
		return invalidTransition(p.state, TransitionExpireMatch, "matching window still open")
	}
	teamID := p.teamID
	amount := MinimumContractValue
	if win, ok := p.WinningBid(); ok {
		teamID = win.TeamID
		amount = win.Amount
	}
	p.finalize(teamID, amount, now)
	return nil
}

// MatchOffer finalizes immediately: the incumbent team keeps the player at the winning amount.
func (p *Player) MatchOffer(now time.Time) error {
	if p.state != StateOfferMatching {
		return invalidTransition(p.state, TransitionMatchOffer, "")
	}
	amount := MinimumContractValue
	if win, ok := p.WinningBid(); ok {
		amount = win.Amount
	}
	p.finalize(p.teamID, amount, now)
	return nil
}

func (p *Player) finalize(teamID string, amount int, now time.Time) {
	year := now.Year()
	p.state = StateRostered
	p.teamID = teamID
	p.contractValue = amount
	p.yearAcquired = &year
	p.yearContractExpires = nil
	p.clearBidding()
}

func (p *Player) clearBidding() {
	p.endOfFreeAgency = nil
	p.bids = nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
