package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/internal/config"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
)

// AppContext holds the application dependencies shared by all commands
type AppContext struct {
	Cfg    *config.Config
	Logger *zap.Logger
	Store  db.Store
	Hub    *realtime.Hub
	Ctx    context.Context
}
