package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Init builds the process-wide sugared logger. Call once from main before
// any other package logs.
func Init() {
	base, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = base.Sugar().Named("chorserver")
}

// InitDevelopment swaps in a human-readable logger; used by the test client.
func InitDevelopment() {
	base, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = base.Sugar().Named("chorserver")
}
