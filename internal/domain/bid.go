package domain

import "time"

// MinimumContractValue is the league floor for any rostered contract.
const MinimumContractValue = 1

// Bid is an offer placed by a team on a free agent. Bids are never modified after placement.
type Bid struct {
	ID        string
	TeamID    string
	Amount    int
	CreatedOn time.Time
}

// winningBid picks the highest amount; ties go to the earliest bid, then to insertion order.
func winningBid(bids []Bid) (Bid, bool) {
	if len(bids) == 0 {
		return Bid{}, false
	}
	best := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > best.Amount || (b.Amount == best.Amount && b.CreatedOn.Before(best.CreatedOn)) {
			best = b
		}
	}
	return best, true
}
