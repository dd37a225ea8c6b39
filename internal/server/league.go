package server

import (
	"context"
	"errors"

	"dynamo-league/internal/domain"
	"dynamo-league/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type LeagueServer struct {
	biddingSvc  *service.BiddingService
	matchingSvc *service.OfferMatchingService
	rosterSvc   *service.RosterService
	jobSvc      *service.JobService
	logger      zerolog.Logger
}

func NewLeagueServer(
	biddingSvc *service.BiddingService,
	matchingSvc *service.OfferMatchingService,
	rosterSvc *service.RosterService,
	jobSvc *service.JobService,
	logger zerolog.Logger,
) *LeagueServer {
	return &LeagueServer{
		biddingSvc:  biddingSvc,
		matchingSvc: matchingSvc,
		rosterSvc:   rosterSvc,
		jobSvc:      jobSvc,
		logger:      logger,
	}
}

func (s *LeagueServer) PlaceBid(ctx context.Context, req *connect.Request[PlaceBidRequest]) (*connect.Response[Empty], error) {
	if err := s.biddingSvc.PlaceBid(ctx, req.Msg.PlayerID, req.Msg.TeamID, req.Msg.Amount); err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) SubmitMatchDecision(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[Empty], error) {
	if err := s.matchingSvc.SubmitMatchDecision(ctx, req.Msg.PlayerID); err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) RunBiddingCloseJob(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[JobResponse], error) {
	count, err := s.jobSvc.RunBiddingCloseJob(ctx)
	if err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&JobResponse{Count: count}), nil
}

func (s *LeagueServer) RunOfferMatchingExpiryJob(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[JobResponse], error) {
	count, err := s.jobSvc.RunOfferMatchingExpiryJob(ctx)
	if err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&JobResponse{Count: count}), nil
}

func (s *LeagueServer) GetRemainingCapSpace(ctx context.Context, req *connect.Request[CapSpaceRequest]) (*connect.Response[CapSpaceResponse], error) {
	space, err := s.rosterSvc.GetRemainingCapSpace(ctx, req.Msg.TeamID, req.Msg.AsOf)
	if err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&CapSpaceResponse{
		TeamID:    space.TeamID,
		Season:    space.Season,
		Cap:       space.Cap,
		Remaining: space.Remaining,
	}), nil
}

func (s *LeagueServer) GetPlayer(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[PlayerResponse], error) {
	detail, err := s.rosterSvc.GetPlayer(ctx, req.Msg.PlayerID)
	if err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(toPlayerResponse(detail)), nil
}

func (s *LeagueServer) StartFreeAgency(ctx context.Context, req *connect.Request[StartFreeAgencyRequest]) (*connect.Response[Empty], error) {
	if err := s.biddingSvc.StartFreeAgency(ctx, req.Msg.PlayerID, req.Msg.BiddingEndsAt); err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) SignPlayer(ctx context.Context, req *connect.Request[SignPlayerRequest]) (*connect.Response[Empty], error) {
	if err := s.rosterSvc.SignPlayer(ctx, req.Msg.PlayerID, req.Msg.YearExpires, req.Msg.ContractValue); err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) UnrosterPlayer(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[Empty], error) {
	if err := s.rosterSvc.UnrosterPlayer(ctx, req.Msg.PlayerID); err != nil {
		return nil, s.connectError(ctx, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *LeagueServer) connectError(ctx context.Context, err error) error {
	code := errorCode(err)
	if code == connect.CodeInternal {
		logger := zerolog.Ctx(ctx)
		if logger.GetLevel() == zerolog.Disabled {
			logger = &s.logger
		}
		logger.Error().Err(err).Msg("request failed")
	}
	return connect.NewError(code, err)
}

func errorCode(err error) connect.Code {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return connect.CodeInvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return connect.CodeAborted
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return connect.CodeFailedPrecondition
	case errors.Is(err, service.ErrJobAlreadyRunning):
		return connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

func toPlayerResponse(detail *service.PlayerDetail) *PlayerResponse {
	p := detail.Player
	rec := p.Record()
	resp := &PlayerResponse{
		ID:                  rec.ID,
		Name:                rec.Name,
		Position:            rec.Position,
		HeadshotURL:         rec.HeadshotURL,
		State:               rec.State.String(),
		TeamID:              rec.TeamID,
		TeamName:            detail.TeamName,
		ContractValue:       rec.ContractValue,
		YearContractExpires: rec.YearContractExpires,
		YearAcquired:        rec.YearAcquired,
		EndOfFreeAgency:     rec.EndOfFreeAgency,
		Version:             rec.Version,
	}
	for _, b := range detail.Bids {
		resp.Bids = append(resp.Bids, Bid{
			ID:        b.ID,
			TeamID:    b.TeamID,
			TeamName:  b.TeamName,
			Amount:    b.Amount,
			CreatedOn: b.CreatedOn,
		})
	}
	return resp
}
