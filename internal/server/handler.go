package server

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	LeagueServiceName = "league.v1.LeagueService"
	LeagueServicePath = "/" + LeagueServiceName + "/"

	PlaceBidProcedure                  = LeagueServicePath + "PlaceBid"
	SubmitMatchDecisionProcedure       = LeagueServicePath + "SubmitMatchDecision"
	RunBiddingCloseJobProcedure        = LeagueServicePath + "RunBiddingCloseJob"
	RunOfferMatchingExpiryJobProcedure = LeagueServicePath + "RunOfferMatchingExpiryJob"
	GetRemainingCapSpaceProcedure      = LeagueServicePath + "GetRemainingCapSpace"
	GetPlayerProcedure                 = LeagueServicePath + "GetPlayer"
	StartFreeAgencyProcedure           = LeagueServicePath + "StartFreeAgency"
	SignPlayerProcedure                = LeagueServicePath + "SignPlayer"
	UnrosterPlayerProcedure            = LeagueServicePath + "UnrosterPlayer"
)

// Procedures lists every LeagueService procedure path.
func Procedures() []string {
	return []string{
		PlaceBidProcedure,
		SubmitMatchDecisionProcedure,
		RunBiddingCloseJobProcedure,
		RunOfferMatchingExpiryJobProcedure,
		GetRemainingCapSpaceProcedure,
		GetPlayerProcedure,
		StartFreeAgencyProcedure,
		SignPlayerProcedure,
		UnrosterPlayerProcedure,
	}
}

// NewLeagueServiceHandler returns the path prefix to mount and the handler serving every procedure.
func NewLeagueServiceHandler(s *LeagueServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(PlaceBidProcedure, connect.NewUnaryHandler(PlaceBidProcedure, s.PlaceBid, opts...))
	mux.Handle(SubmitMatchDecisionProcedure, connect.NewUnaryHandler(SubmitMatchDecisionProcedure, s.SubmitMatchDecision, opts...))
	mux.Handle(RunBiddingCloseJobProcedure, connect.NewUnaryHandler(RunBiddingCloseJobProcedure, s.RunBiddingCloseJob, opts...))
	mux.Handle(RunOfferMatchingExpiryJobProcedure, connect.NewUnaryHandler(RunOfferMatchingExpiryJobProcedure, s.RunOfferMatchingExpiryJob, opts...))
	mux.Handle(GetRemainingCapSpaceProcedure, connect.NewUnaryHandler(GetRemainingCapSpaceProcedure, s.GetRemainingCapSpace, opts...))
	mux.Handle(GetPlayerProcedure, connect.NewUnaryHandler(GetPlayerProcedure, s.GetPlayer, opts...))
	mux.Handle(StartFreeAgencyProcedure, connect.NewUnaryHandler(StartFreeAgencyProcedure, s.StartFreeAgency, opts...))
	mux.Handle(SignPlayerProcedure, connect.NewUnaryHandler(SignPlayerProcedure, s.SignPlayer, opts...))
	mux.Handle(UnrosterPlayerProcedure, connect.NewUnaryHandler(UnrosterPlayerProcedure, s.UnrosterPlayer, opts...))
	return LeagueServicePath, mux
}

// LeagueClient calls a LeagueService over connect with the JSON codec.
type LeagueClient struct {
	placeBid                  *connect.Client[PlaceBidRequest, Empty]
	submitMatchDecision       *connect.Client[PlayerRequest, Empty]
	runBiddingCloseJob        *connect.Client[Empty, JobResponse]
	runOfferMatchingExpiryJob *connect.Client[Empty, JobResponse]
	getRemainingCapSpace      *connect.Client[CapSpaceRequest, CapSpaceResponse]
	getPlayer                 *connect.Client[PlayerRequest, PlayerResponse]
	startFreeAgency           *connect.Client[StartFreeAgencyRequest, Empty]
	signPlayer                *connect.Client[SignPlayerRequest, Empty]
	unrosterPlayer            *connect.Client[PlayerRequest, Empty]
}

func NewLeagueClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LeagueClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &LeagueClient{
		placeBid:                  connect.NewClient[PlaceBidRequest, Empty](httpClient, baseURL+PlaceBidProcedure, opts...),
		submitMatchDecision:       connect.NewClient[PlayerRequest, Empty](httpClient, baseURL+SubmitMatchDecisionProcedure, opts...),
		runBiddingCloseJob:        connect.NewClient[Empty, JobResponse](httpClient, baseURL+RunBiddingCloseJobProcedure, opts...),
		runOfferMatchingExpiryJob: connect.NewClient[Empty, JobResponse](httpClient, baseURL+RunOfferMatchingExpiryJobProcedure, opts...),
		getRemainingCapSpace:      connect.NewClient[CapSpaceRequest, CapSpaceResponse](httpClient, baseURL+GetRemainingCapSpaceProcedure, opts...),
		getPlayer:                 connect.NewClient[PlayerRequest, PlayerResponse](httpClient, baseURL+GetPlayerProcedure, opts...),
		startFreeAgency:           connect.NewClient[StartFreeAgencyRequest, Empty](httpClient, baseURL+StartFreeAgencyProcedure, opts...),
		signPlayer:                connect.NewClient[SignPlayerRequest, Empty](httpClient, baseURL+SignPlayerProcedure, opts...),
		unrosterPlayer:            connect.NewClient[PlayerRequest, Empty](httpClient, baseURL+UnrosterPlayerProcedure, opts...),
	}
}

func (c *LeagueClient) PlaceBid(ctx context.Context, req *PlaceBidRequest) error {
	_, err := c.placeBid.CallUnary(ctx, connect.NewRequest(req))
	return err
}

func (c *LeagueClient) SubmitMatchDecision(ctx context.Context, playerID string) error {
	_, err := c.submitMatchDecision.CallUnary(ctx, connect.NewRequest(&PlayerRequest{PlayerID: playerID}))
	return err
}

func (c *LeagueClient) RunBiddingCloseJob(ctx context.Context) (int, error) {
	resp, err := c.runBiddingCloseJob.CallUnary(ctx, connect.NewRequest(&Empty{}))
	if err != nil {
		return 0, err
	}
	return resp.Msg.Count, nil
}

func (c *LeagueClient) RunOfferMatchingExpiryJob(ctx context.Context) (int, error) {
	resp, err := c.runOfferMatchingExpiryJob.CallUnary(ctx, connect.NewRequest(&Empty{}))
	if err != nil {
		return 0, err
	}
	return resp.Msg.Count, nil
}

func (c *LeagueClient) GetRemainingCapSpace(ctx context.Context, req *CapSpaceRequest) (*CapSpaceResponse, error) {
	resp, err := c.getRemainingCapSpace.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *LeagueClient) GetPlayer(ctx context.Context, playerID string) (*PlayerResponse, error) {
	resp, err := c.getPlayer.CallUnary(ctx, connect.NewRequest(&PlayerRequest{PlayerID: playerID}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *LeagueClient) StartFreeAgency(ctx context.Context, req *StartFreeAgencyRequest) error {
	_, err := c.startFreeAgency.CallUnary(ctx, connect.NewRequest(req))
	return err
}

func (c *LeagueClient) SignPlayer(ctx context.Context, req *SignPlayerRequest) error {
	_, err := c.signPlayer.CallUnary(ctx, connect.NewRequest(req))
	return err
}

func (c *LeagueClient) UnrosterPlayer(ctx context.Context, playerID string) error {
	_, err := c.unrosterPlayer.CallUnary(ctx, connect.NewRequest(&PlayerRequest{PlayerID: playerID}))
	return err
}
