package domain

import (
	"errors"
	"testing"
	"time"
)

var day0 = time.Date(2026, 6, 1, 22, 0, 0, 0, time.UTC)

func newUnsigned(t *testing.T, teamID string) *Player {
	t.Helper()
	p, err := RestorePlayer(PlayerRecord{
		ID:     "p1",
		Name:   "Jalen Example",
		State:  StateUnsigned,
		TeamID: teamID,
	})
	if err != nil {
		t.Fatalf("restore unsigned: %v", err)
	}
	return p
}

func newFreeAgent(t *testing.T, endsAt time.Time) *Player {
	t.Helper()
	p := newUnsigned(t, "incumbent")
	if err := p.SetToFreeAgent(endsAt); err != nil {
		t.Fatalf("set to free agent: %v", err)
	}
	return p
}

func TestNewPlayerStartsUnrostered(t *testing.T) {
	p, err := NewPlayer("p1", "Name", "QB", "https://img/p1.png")
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if p.State() != StateUnrostered || p.HasTeam() || p.ContractValue() != 0 {
		t.Fatalf("unexpected new player: %+v", p.Record())
	}
	if _, err := NewPlayer("", "Name", "QB", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
}

func TestSetToRosteredRequiresTeamAndValue(t *testing.T) {
	p, _ := NewPlayer("p1", "Name", "RB", "")
	if err := p.SetToRostered(2026, 10); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected transition error without team, got %v", err)
	}
	if err := p.AssignToTeam("team-a"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := p.SetToRostered(2026, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero value, got %v", err)
	}
	if err := p.SetToRostered(2025, 40); err != nil {
		t.Fatalf("set to rostered: %v", err)
	}
	if p.State() != StateRostered || p.ContractValue() != 40 {
		t.Fatalf("unexpected player: %+v", p.Record())
	}
	if year, ok := p.YearAcquired(); !ok || year != 2025 {
		t.Fatalf("expected year acquired 2025, got %d %v", year, ok)
	}
}

func TestSignForCurrentTeamClearsBidding(t *testing.T) {
	p := newFreeAgent(t, day0)
	if err := p.AddBid("b1", "team-b", 20, day0.Add(-time.Hour)); err != nil {
		t.Fatalf("add bid: %v", err)
	}
	if err := p.SignForCurrentTeam(2029, 25); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if p.State() != StateRostered || len(p.Bids()) != 0 {
		t.Fatalf("expected rostered without bids, got %+v", p.Record())
	}
	if _, ok := p.EndOfFreeAgency(); ok {
		t.Fatal("expected end of free agency cleared")
	}
	if year, _ := p.YearContractExpires(); year != 2029 {
		t.Fatalf("expected expiry 2029, got %d", year)
	}
}

func TestSetToUnrosteredPolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   UnrosterPolicy
		wantTeam string
	}{
		{name: "keep team", policy: UnrosterKeepTeam, wantTeam: "team-a"},
		{name: "release", policy: UnrosterReleaseToLeague, wantTeam: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewPlayer("p1", "Name", "WR", "")
			_ = p.AssignToTeam("team-a")
			if err := p.SetToRostered(2026, 5); err != nil {
				t.Fatalf("rostered: %v", err)
			}
			if err := p.SetToUnrostered(tt.policy); err != nil {
				t.Fatalf("unrostered: %v", err)
			}
			if p.State() != StateUnrostered || p.ContractValue() != 0 || p.TeamID() != tt.wantTeam {
				t.Fatalf("unexpected player: %+v", p.Record())
			}
			if err := p.Validate(); err != nil {
				t.Fatalf("invariants broken: %v", err)
			}
		})
	}
}

func TestSetToUnrosteredRejectsOtherStates(t *testing.T) {
	p := newUnsigned(t, "team-a")
	err := p.SetToUnrostered(UnrosterKeepTeam)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.From != StateUnsigned || te.Transition != TransitionSetToUnrostered {
		t.Fatalf("unexpected error detail: %+v", te)
	}
}

func TestSetToFreeAgentPreconditions(t *testing.T) {
	p, _ := NewPlayer("p1", "Name", "TE", "")
	if err := p.SetToFreeAgent(day0); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected unrostered player rejected, got %v", err)
	}

	_ = p.AssignToTeam("team-a")
	if err := p.SignForCurrentTeam(2030, 12); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := p.SetToFreeAgent(day0); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected player under contract through 2030 rejected, got %v", err)
	}

	expiring, _ := NewPlayer("p2", "Name", "TE", "")
	_ = expiring.AssignToTeam("team-a")
	_ = expiring.SignForCurrentTeam(day0.Year(), 12)
	if err := expiring.SetToFreeAgent(day0); err != nil {
		t.Fatalf("expected expiring contract accepted: %v", err)
	}
	if end, ok := expiring.EndOfFreeAgency(); !ok || !end.Equal(day0) {
		t.Fatalf("unexpected end of free agency %v %v", end, ok)
	}
}

func TestSetToFreeAgentFloorsContractValue(t *testing.T) {
	p := newFreeAgent(t, day0)
	if p.ContractValue() != MinimumContractValue {
		t.Fatalf("expected floor %d, got %d", MinimumContractValue, p.ContractValue())
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}
}

func TestAddBidOutsideFreeAgencyLeavesLedgerUnchanged(t *testing.T) {
	p := newFreeAgent(t, day0)
	if err := p.AddBid("b1", "team-b", 10, day0.Add(-time.Hour)); err != nil {
		t.Fatalf("add bid: %v", err)
	}
	if err := p.CloseBidding(day0, 72*time.Hour); err != nil {
		t.Fatalf("close: %v", err)
	}

	err := p.AddBid("b2", "team-c", 50, day0.Add(time.Hour))
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if bids := p.Bids(); len(bids) != 1 || bids[0].ID != "b1" {
		t.Fatalf("ledger changed: %+v", bids)
	}
}

func TestAddBidRejectsLateAndInvalidBids(t *testing.T) {
	p := newFreeAgent(t, day0)
	if err := p.AddBid("late", "team-b", 10, day0); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected bid at window end rejected, got %v", err)
	}
	if err := p.AddBid("zero", "team-b", 0, day0.Add(-time.Minute)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected zero bid rejected, got %v", err)
	}
	if err := p.AddBid("neg", "team-b", -5, day0.Add(-time.Minute)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected negative bid rejected, got %v", err)
	}
	if len(p.Bids()) != 0 {
		t.Fatalf("expected empty ledger, got %+v", p.Bids())
	}
}

func TestAddBidAllowsIncumbentSelfBid(t *testing.T) {
	p := newFreeAgent(t, day0)
	if err := p.AddBid("b1", p.TeamID(), 15, day0.Add(-time.Hour)); err != nil {
		t.Fatalf("self bid rejected: %v", err)
	}
}

func TestCloseBiddingWaitsForWindow(t *testing.T) {
	p := newFreeAgent(t, day0)
	if err := p.CloseBidding(day0.Add(-time.Second), 72*time.Hour); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected open window rejected, got %v", err)
	}
	if p.State() != StateFreeAgent {
		t.Fatalf("state changed to %s", p.State())
	}
}

func TestCloseBiddingExtendsWindowByMatchWindow(t *testing.T) {
	p := newFreeAgent(t, day0)
	_ = p.AddBid("b1", "team-a", 100, day0.Add(-2*time.Hour))
	_ = p.AddBid("b2", "team-b", 150, day0.Add(-time.Hour))

	if err := p.CloseBidding(day0.Add(time.Hour), 72*time.Hour); err != nil {
		t.Fatalf("close: %v", err)
	}
	if p.State() != StateOfferMatching {
		t.Fatalf("expected offer matching, got %s", p.State())
	}
	end, _ := p.EndOfFreeAgency()
	if !end.Equal(day0.Add(72 * time.Hour)) {
		t.Fatalf("expected end %v, got %v", day0.Add(72*time.Hour), end)
	}
	win, ok := p.WinningBid()
	if !ok || win.TeamID != "team-b" || win.Amount != 150 {
		t.Fatalf("unexpected winner %+v", win)
	}
}

func TestExpireMatchMovesPlayerToWinner(t *testing.T) {
	p := newFreeAgent(t, day0)
	_ = p.AddBid("b1", "team-b", 150, day0.Add(-time.Hour))
	_ = p.CloseBidding(day0, 72*time.Hour)

	if err := p.ExpireMatch(day0.Add(71 * time.Hour)); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected open matching window rejected, got %v", err)
	}

	now := day0.Add(72 * time.Hour)
	if err := p.ExpireMatch(now); err != nil {
		t.Fatalf("expire: %v", err)
	}
	rec := p.Record()
	if rec.State != StateRostered || rec.TeamID != "team-b" || rec.ContractValue != 150 {
		t.Fatalf("unexpected finalized player: %+v", rec)
	}
	if rec.YearAcquired == nil || *rec.YearAcquired != now.Year() {
		t.Fatalf("expected year acquired %d, got %v", now.Year(), rec.YearAcquired)
	}
	if rec.EndOfFreeAgency != nil || len(rec.Bids) != 0 || rec.YearContractExpires != nil {
		t.Fatalf("expected bidding fields cleared: %+v", rec)
	}
}

func TestExpireMatchWithoutBidsUsesMinimum(t *testing.T) {
	p := newFreeAgent(t, day0)
	_ = p.CloseBidding(day0, 72*time.Hour)
	if err := p.ExpireMatch(day0.Add(96 * time.Hour)); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if p.ContractValue() != 1 || p.TeamID() != "incumbent" {
		t.Fatalf("expected incumbent at minimum, got %+v", p.Record())
	}
}

func TestMatchOfferKeepsIncumbent(t *testing.T) {
	p := newFreeAgent(t, day0)
	_ = p.AddBid("b1", "team-b", 300, day0.Add(-time.Hour))
	if err := p.MatchOffer(day0); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected match during free agency rejected, got %v", err)
	}
	_ = p.CloseBidding(day0, 72*time.Hour)

	if err := p.MatchOffer(day0.Add(time.Hour)); err != nil {
		t.Fatalf("match: %v", err)
	}
	if p.State() != StateRostered || p.TeamID() != "incumbent" || p.ContractValue() != 300 {
		t.Fatalf("unexpected matched player: %+v", p.Record())
	}
	if year, _ := p.YearAcquired(); year != day0.Year() {
		t.Fatalf("expected year acquired %d, got %d", day0.Year(), year)
	}
}

func TestRestorePlayerRejectsBrokenInvariants(t *testing.T) {
	end := day0
	tests := []struct {
		name string
		rec  PlayerRecord
	}{
		{name: "unknown state", rec: PlayerRecord{ID: "p", State: "retired"}},
		{name: "end without bidding", rec: PlayerRecord{ID: "p", State: StateRostered, TeamID: "t", ContractValue: 3, EndOfFreeAgency: &end}},
		{name: "bidding without end", rec: PlayerRecord{ID: "p", State: StateFreeAgent, TeamID: "t", ContractValue: 3}},
		{name: "rostered without value", rec: PlayerRecord{ID: "p", State: StateRostered, TeamID: "t"}},
		{name: "rostered without team", rec: PlayerRecord{ID: "p", State: StateRostered, ContractValue: 3}},
		{name: "bids outside bidding", rec: PlayerRecord{ID: "p", State: StateUnsigned, TeamID: "t", Bids: []Bid{{ID: "b", TeamID: "t", Amount: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RestorePlayer(tt.rec); err == nil {
				t.Fatal("expected restore to fail")
			}
		})
	}
}

func TestRecordIsDetached(t *testing.T) {
	p := newFreeAgent(t, day0)
	_ = p.AddBid("b1", "team-b", 5, day0.Add(-time.Hour))
	rec := p.Record()
	rec.Bids[0].Amount = 999
	*rec.EndOfFreeAgency = day0.Add(time.Hour)

	if p.Bids()[0].Amount != 5 {
		t.Fatal("record shares bid storage with player")
	}
	if end, _ := p.EndOfFreeAgency(); !end.Equal(day0) {
		t.Fatal("record shares end of free agency with player")
	}
}

func TestScenarioUnsignedThroughExpiry(t *testing.T) {
	today := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	p := newUnsigned(t, "incumbent")
	if err := p.SetToFreeAgent(today.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("free agent: %v", err)
	}
	_ = p.AddBid("b1", "team-a", 100, today.Add(time.Hour))
	_ = p.AddBid("b2", "team-b", 150, today.Add(2*time.Hour))

	now := today.AddDate(0, 0, 8)
	if err := p.CloseBidding(now, 72*time.Hour); err != nil {
		t.Fatalf("close: %v", err)
	}
	if win, _ := p.WinningBid(); win.TeamID != "team-b" || win.Amount != 150 {
		t.Fatalf("unexpected winner %+v", win)
	}

	now = now.AddDate(0, 0, 3)
	if err := p.ExpireMatch(now); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if p.State() != StateRostered || p.TeamID() != "team-b" || p.ContractValue() != 150 {
		t.Fatalf("unexpected final player: %+v", p.Record())
	}
}
