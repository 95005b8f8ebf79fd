package types

import (
	"github.com/killallgit/resume-api/internal/database"
	"github.com/killallgit/resume-api/internal/services/progress"
	"github.com/killallgit/resume-api/pkg/config"
	"go.uber.org/zap"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB              database.Pinger
	ProgressService progress.Service
	Config          *config.Config
	Logger          *zap.SugaredLogger
}
