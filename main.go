package main

import (
	"time"

	"github.com/chorgame/server/config"
	"github.com/chorgame/server/game"
	"github.com/chorgame/server/logger"
	"github.com/chorgame/server/monitor"
	"github.com/chorgame/server/persistence"
	"github.com/chorgame/server/room"
	"github.com/chorgame/server/server"
	"github.com/chorgame/server/services"
	"github.com/chorgame/server/timer"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize persistence backend
	var store persistence.Store
	switch cfg.Database.Driver {
	case "postgres":
		store, err = persistence.NewPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	case "gorm":
		store, err = persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	default:
		store = persistence.NewMemory()
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Infof("Persistence backend ready (driver=%s)", cfg.Database.Driver)

	// Initialize game core
	assigner := game.NewAssigner()
	assigner.SetBasePoints(cfg.Game.RajaPoints, cfg.Game.MantriPoints, cfg.Game.SipahiPoints)
	engine := game.NewEngine(assigner)
	roomManager := room.NewManager(engine)
	gameService := services.NewGameService(roomManager, store)

	// Initialize monitoring
	mon := monitor.NewMonitor("chorgame")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Initialize game server
	gameServer := server.NewGameServer(cfg.Server.WSAddress, cfg.Server.RPCAddress, gameService, mon)

	// Periodic occupancy sampling and idle-session sweeps
	scheduler := timer.NewScheduler()
	sampleInterval := time.Duration(cfg.Game.SampleIntervalSec) * time.Second
	idleTimeout := time.Duration(cfg.Game.SessionIdleSec) * time.Second

	scheduler.AddJob(sampleInterval, sampleInterval, func() {
		rooms, seated, waitlisted := roomManager.Counts()
		mon.SetRoomCounts(rooms, seated, waitlisted)
	})
	scheduler.AddJob(idleTimeout, idleTimeout, func() {
		cutoff := time.Now().Add(-idleTimeout)
		for _, sess := range gameServer.Sessions().IdleSince(cutoff) {
			logger.Log.Infof("Closing idle session %s", sess.GetID())
			sess.Close()
		}
	})
	defer scheduler.Stop()

	// Start server
	logger.Log.Infof("Starting game server on %s", cfg.Server.WSAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
