package logger

import (
	"context"
	"fmt"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/database"

	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	RecordID  string
	Caller    string // Function name
}

// LogSink persists a single log record
type LogSink interface {
	Insert(ctx context.Context, log common_models.Log) error
}

type mongoLogSink struct {
	db *database.MongodbDB
}

// NewMongoLogSink stores log records in the logs collection
func NewMongoLogSink(db *database.MongodbDB) LogSink {
	return &mongoLogSink{db: db}
}

func (s *mongoLogSink) Insert(ctx context.Context, log common_models.Log) error {
	_, err := s.db.DB.Collection("logs").InsertOne(ctx, log)
	return err
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	sink    LogSink
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(sink LogSink, appId string) *DBLogWriter {
	writer := &DBLogWriter{
		sink:    sink,
		logChan: make(chan LogEntry, 1000),
		appId:   appId,
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block the request path
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		logRecord := common_models.Log{
			AppId:        w.appId,
			Message:      entry.Message,
			IpAddress:    entry.IpAddress,
			RecordID:     entry.RecordID,
			Caller:       entry.Caller,
			LogLevelId:   mapLevelToInt(entry.Level),
			CreatedOnUtc: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = w.sink.Insert(ctx, logRecord)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
