package server

import "time"

type Empty struct{}

type PlaceBidRequest struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	Amount   int    `json:"amount"`
}

type PlayerRequest struct {
	PlayerID string `json:"player_id"`
}

type JobResponse struct {
	Count int `json:"count"`
}

type CapSpaceRequest struct {
	TeamID string    `json:"team_id"`
	AsOf   time.Time `json:"as_of,omitzero"`
}

type CapSpaceResponse struct {
	TeamID    string `json:"team_id"`
	Season    int    `json:"season"`
	Cap       int    `json:"cap"`
	Remaining int    `json:"remaining"`
}

type StartFreeAgencyRequest struct {
	PlayerID      string    `json:"player_id"`
	BiddingEndsAt time.Time `json:"bidding_ends_at"`
}

type SignPlayerRequest struct {
	PlayerID      string `json:"player_id"`
	YearExpires   int    `json:"year_expires"`
	ContractValue int    `json:"contract_value"`
}

type Bid struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	TeamName  string    `json:"team_name"`
	Amount    int       `json:"amount"`
	CreatedOn time.Time `json:"created_on"`
}

type PlayerResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Position            string     `json:"position"`
	HeadshotURL         string     `json:"headshot_url,omitempty"`
	State               string     `json:"state"`
	TeamID              string     `json:"team_id,omitempty"`
	TeamName            string     `json:"team_name,omitempty"`
	ContractValue       int        `json:"contract_value"`
	YearContractExpires *int       `json:"year_contract_expires,omitempty"`
	YearAcquired        *int       `json:"year_acquired,omitempty"`
	EndOfFreeAgency     *time.Time `json:"end_of_free_agency,omitempty"`
	Bids                []Bid      `json:"bids,omitempty"`
	Version             int64      `json:"version"`
}
