package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chorgame/server/game"
	"github.com/chorgame/server/logger"
	"github.com/chorgame/server/monitor"
	"github.com/chorgame/server/network"
	"github.com/chorgame/server/room"
	chorgame_rpc "github.com/chorgame/server/rpc"
	"github.com/chorgame/server/services"
	"github.com/chorgame/server/session"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	gameService    *services.GameService
	sessionManager *session.Manager
	monitor        *monitor.Monitor
	rpcServer      *chorgame_rpc.Server
	mutex          sync.Mutex
	shutdownChan   chan struct{}
}

func NewGameServer(addr, rpcAddr string, gs *services.GameService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		gameService:    gs,
		sessionManager: session.NewManager(),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	rpcServer, err := chorgame_rpc.NewServer(rpcAddr, chorgame_rpc.NewAdminService(gs))
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	return s
}

// Sessions exposes the session index for idle sweeps and gauge sampling.
func (s *GameServer) Sessions() *session.Manager {
	return s.sessionManager
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncOnlineSessions()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecOnlineSessions()
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	sess.Touch()
	if s.monitor != nil {
		s.monitor.IncMessagesReceived()
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Send(network.MsgTypeHeartbeat, network.StatusOK, nil)
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeListPlayers:
		s.handleListPlayers(sess, packet)
	case network.MsgTypeForceAssign:
		s.handleForceAssign(sess, packet)
	case network.MsgTypeGetRole:
		s.handleGetRole(sess, packet)
	case network.MsgTypeSubmitGuess:
		s.handleSubmitGuess(sess, packet)
	case network.MsgTypeGetResult:
		s.handleGetResult(sess, packet)
	case network.MsgTypeLeaderboard:
		s.handleLeaderboard(sess, packet)
	case network.MsgTypeAdvanceRound:
		s.handleAdvanceRound(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req CreateRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.CreateRoom(req.PlayerName, req.RoomName)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}

	sess.Bind(result.PlayerID, result.RoomID)
	logger.Log.Infof("Session %s created room %s", sess.GetID(), result.RoomID)
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.JoinRoom(req.RoomID, req.PlayerName)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}

	sess.Bind(result.PlayerID, result.RoomID)
	logger.Log.Infof("Session %s joined room %s (seated=%v)", sess.GetID(), result.RoomID, result.Seated)
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleListPlayers(sess *session.Session, packet *network.Packet) {
	var req RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.ListPlayers(req.RoomID)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleForceAssign(sess *session.Session, packet *network.Packet) {
	var req RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.ForceAssign(req.RoomID)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleGetRole(sess *session.Session, packet *network.Packet) {
	var req RoleRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.Role(req.RoomID, req.PlayerID)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleSubmitGuess(sess *session.Session, packet *network.Packet) {
	var req GuessRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	started := time.Now()
	result, err := s.gameService.SubmitGuess(req.RoomID, req.PlayerID, req.AccusedID)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}

	if s.monitor != nil {
		s.monitor.IncRoundsResolved(result.Correct)
		s.monitor.ObserveGuessLatency(time.Since(started))
	}
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleGetResult(sess *session.Session, packet *network.Packet) {
	var req RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.Result(req.RoomID)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleLeaderboard(sess *session.Session, packet *network.Packet) {
	var req RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.Leaderboard(req.RoomID)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) handleAdvanceRound(sess *session.Session, packet *network.Packet) {
	var req RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.fail(sess, packet.MsgID, services.ErrMissingField)
		return
	}

	result, err := s.gameService.AdvanceRound(req.RoomID)
	if err != nil {
		s.fail(sess, packet.MsgID, err)
		return
	}
	s.reply(sess, packet.MsgID, result)
}

func (s *GameServer) reply(sess *session.Session, msgID uint16, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal response for msg %d: %v", msgID, err)
		sess.Send(msgID, network.StatusInternal, nil)
		return
	}
	sess.Send(msgID, network.StatusOK, data)
}

func (s *GameServer) fail(sess *session.Session, msgID uint16, err error) {
	data, _ := json.Marshal(ErrorResponse{Error: err.Error()})
	sess.Send(msgID, StatusFor(err), data)
}

// StatusFor maps domain errors to wire status codes. Unrecognized
// errors report as internal.
func StatusFor(err error) uint16 {
	switch {
	case errors.Is(err, services.ErrMissingField):
		return network.StatusMissingField
	case errors.Is(err, room.ErrRoomNotFound):
		return network.StatusRoomNotFound
	case errors.Is(err, room.ErrPlayerNotFound):
		return network.StatusPlayerNotFound
	case errors.Is(err, game.ErrInsufficientPlayers):
		return network.StatusInsufficientPlayers
	case errors.Is(err, game.ErrNoActiveRound):
		return network.StatusNoActiveRound
	case errors.Is(err, game.ErrRoundAlreadyResolved):
		return network.StatusRoundAlreadyResolved
	case errors.Is(err, room.ErrRoundInProgress):
		return network.StatusRoundInProgress
	case errors.Is(err, game.ErrNotAuthorizedGuesser):
		return network.StatusNotAuthorizedGuesser
	case errors.Is(err, game.ErrAccusedNotInRound):
		return network.StatusAccusedNotInRound
	case errors.Is(err, room.ErrNoRoundAssigned):
		return network.StatusNoRoundAssigned
	default:
		return network.StatusInternal
	}
}
