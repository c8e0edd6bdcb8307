package logger

import (
	"broker-crm/internal/config"
	"broker-crm/internal/database"

	"go.uber.org/zap"
)

// NewLogger builds the console logger and tees every entry into the logs collection
func NewLogger(cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Function name is read back by DBCore
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(NewMongoLogSink(mongodb), cfg.AppId)

	finalCore := NewDBCore(baseLogger.Core(), dbWriter)

	return zap.New(finalCore, zap.AddCaller()).With(zap.String("app", cfg.AppId)), nil
}
