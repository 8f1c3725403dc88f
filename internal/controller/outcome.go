package controller

import (
	"errors"

	"github.com/studiowebux/policyctl/internal/executor"
)

// OutcomeKind tags how a submission ended
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeServerFailure
	OutcomeDecodeFailure
	OutcomeTransportFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeServerFailure:
		return "server_failure"
	case OutcomeDecodeFailure:
		return "decode_failure"
	case OutcomeTransportFailure:
		return "transport_failure"
	}
	return "unknown"
}

// Outcome is the tagged result of one round trip
type Outcome struct {
	Kind      OutcomeKind
	Result    string // narrative, success only
	Message   string // failure reason; may be empty for server failures
	Status    int
	Duration  int64
	RequestID string
}

// Succeeded reports whether the outcome is a success
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// Classify turns a client response or error into an Outcome
func Classify(res *executor.Result, err error) Outcome {
	if err != nil {
		var decodeErr *executor.DecodeError
		if errors.As(err, &decodeErr) {
			return Outcome{Kind: OutcomeDecodeFailure, Message: err.Error(), Status: decodeErr.Status}
		}
		return Outcome{Kind: OutcomeTransportFailure, Message: err.Error()}
	}
	if res == nil {
		return Outcome{Kind: OutcomeDecodeFailure, Message: "empty response"}
	}

	out := Outcome{
		Status:    res.Status,
		Duration:  res.Duration,
		RequestID: res.RequestID,
	}
	if res.Response.Success {
		out.Kind = OutcomeSuccess
		out.Result = res.Response.Result
		return out
	}
	out.Kind = OutcomeServerFailure
	out.Message = res.Response.Error
	return out
}

// Notice returns the message shown for a failed outcome
func (o Outcome) Notice() (Notice, bool) {
	switch o.Kind {
	case OutcomeServerFailure:
		msg := o.Message
		if msg == "" {
			msg = msgUnknownError
		}
		return Notice{Level: LevelError, Message: prefixFailed + msg}, true
	case OutcomeDecodeFailure, OutcomeTransportFailure:
		return Notice{Level: LevelError, Message: prefixConnection + o.Message}, true
	}
	return Notice{}, false
}
