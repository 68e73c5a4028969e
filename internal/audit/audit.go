// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package audit records the engine's four operations (decode, encode,
// validate, diff) as structured events through a logging.Logger.
package audit

import (
	"time"

	"github.com/google/uuid"

	"grimm.is/relayprofile/internal/logging"
)

// EventType names one of the engine's four operations.
type EventType string

const (
	EventProfileDecode   EventType = "profile_decode"
	EventProfileEncode   EventType = "profile_encode"
	EventProfileValidate EventType = "profile_validate"
	EventProfileDiff     EventType = "profile_diff"
)

// Event is one recorded engine operation. ID is a fresh UUID per event,
// used to correlate log entries across an operation's lifetime.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Source    string
	Success   bool
	Error     string
	Detail    map[string]any
}

// Logger records Events to a logging.Logger. It never blocks on I/O beyond
// the logger's own writer and never persists events anywhere else — the
// engine has no database or log-shipping concern to carry.
type Logger struct {
	out *logging.Logger
}

// NewLogger returns a Logger writing through out, or a discard logger if
// out is nil.
func NewLogger(out *logging.Logger) *Logger {
	return &Logger{out: logging.OrDiscard(out)}
}

// Record stamps ev with an ID and timestamp if absent, logs it, and returns
// the stamped Event for the caller to keep or display.
func (l *Logger) Record(ev Event) Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	if ev.Success {
		l.out.Infof("audit id=%s type=%s source=%q", ev.ID, ev.Type, ev.Source)
	} else {
		l.out.Errorf("audit id=%s type=%s source=%q error=%q", ev.ID, ev.Type, ev.Source, ev.Error)
	}
	return ev
}

// Decode records an EventProfileDecode outcome.
func (l *Logger) Decode(source string, err error) Event {
	return l.record(EventProfileDecode, source, err)
}

// Encode records an EventProfileEncode outcome.
func (l *Logger) Encode(source string, err error) Event {
	return l.record(EventProfileEncode, source, err)
}

// Validate records an EventProfileValidate outcome.
func (l *Logger) Validate(source string, err error) Event {
	return l.record(EventProfileValidate, source, err)
}

// Diff records an EventProfileDiff outcome.
func (l *Logger) Diff(source string, err error) Event {
	return l.record(EventProfileDiff, source, err)
}

func (l *Logger) record(t EventType, source string, err error) Event {
	ev := Event{Type: t, Source: source, Success: err == nil}
	if err != nil {
		ev.Error = err.Error()
	}
	return l.Record(ev)
}
