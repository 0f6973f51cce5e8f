package rpc

import (
	"net"
	"net/rpc"

	"github.com/chorgame/server/logger"
	"github.com/chorgame/server/room"
	"github.com/chorgame/server/services"
)

// Server manages the RPC listener for the admin surface.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer registers the admin service and opens the listener.
func NewServer(addr string, admin *AdminService) (*Server, error) {
	if err := rpc.Register(admin); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operator commands over net/rpc.
type AdminService struct {
	gameService *services.GameService
}

func NewAdminService(gs *services.GameService) *AdminService {
	return &AdminService{gameService: gs}
}

type ForceAssignArgs struct {
	RoomID string
}

type ForceAssignReply struct {
	RoundNumber int
}

// ForceAssign re-deals roles in a full room, discarding any open round.
func (as *AdminService) ForceAssign(args *ForceAssignArgs, reply *ForceAssignReply) error {
	result, err := as.gameService.ForceAssign(args.RoomID)
	if err != nil {
		return err
	}
	reply.RoundNumber = result.RoundNumber
	return nil
}

type LeaderboardArgs struct {
	RoomID string
}

type LeaderboardReply struct {
	Rows []room.LeaderboardRow
}

func (as *AdminService) Leaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	result, err := as.gameService.Leaderboard(args.RoomID)
	if err != nil {
		return err
	}
	reply.Rows = result.Leaderboard
	return nil
}

type RoundHistoryArgs struct {
	RoomID string
	Limit  int
}

type RoundHistoryReply struct {
	Records []RoundSummary
}

type RoundSummary struct {
	RoundNumber int
	GuesserID   string
	AccusedID   string
	Correct     bool
}

// RoundHistory returns the journaled rounds for a room, most recent first.
func (as *AdminService) RoundHistory(args *RoundHistoryArgs, reply *RoundHistoryReply) error {
	records, err := as.gameService.Store().RoundHistory(args.RoomID, args.Limit)
	if err != nil {
		return err
	}
	for _, rec := range records {
		reply.Records = append(reply.Records, RoundSummary{
			RoundNumber: rec.RoundNumber,
			GuesserID:   rec.GuesserID,
			AccusedID:   rec.AccusedID,
			Correct:     rec.Correct,
		})
	}
	return nil
}
