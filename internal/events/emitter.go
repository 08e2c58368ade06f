package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogEmitter writes every record to the structured log with a fresh event ID.
type LogEmitter struct {
	log *logrus.Logger
}

// NewLogEmitter creates a log-backed emitter.
func NewLogEmitter(log *logrus.Logger) *LogEmitter {
	return &LogEmitter{log: log}
}

// Emit logs the record as a JSON payload.
func (e *LogEmitter) Emit(rec Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		e.log.Errorf("Failed to encode %s event: %v", rec.Kind(), err)
		return
	}
	e.log.WithFields(logrus.Fields{
		"event_id": uuid.NewString(),
		"event":    rec.Kind(),
		"payload":  json.RawMessage(payload),
	}).Info("Ledger event")
}

// MultiEmitter fans a record out to several emitters in order.
type MultiEmitter []Emitter

// Emit delivers the record to every registered emitter.
func (m MultiEmitter) Emit(rec Record) {
	for _, e := range m {
		e.Emit(rec)
	}
}
