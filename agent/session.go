package agent

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// State names one step of the client-side payment cycle.
type State string

const (
	StateRequesting        State = "requesting"
	StateChallengeReceived State = "challenge-received"
	StatePaying            State = "paying"
	StateRetrying          State = "retrying"
	StateSettled           State = "settled"
	StateFailed            State = "failed"
)

// Failure reasons reported on StateFailed.
const (
	ReasonPaymentRejected = "payment-rejected"
	ReasonProofRejected   = "proof-rejected"
	ReasonTimeout         = "timeout"
)

// LogEntry is one append-only line of a session's protocol trace.
type LogEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Session tracks one top-level request through the payment cycle. It is
// owned by a single Fetch call and discarded when the call returns, so
// no locking is involved.
type Session struct {
	ID         string
	State      State
	Attempts   int
	Challenge  *x402stacks.PaymentRequired
	Settlement *x402stacks.SettleResponse

	logs    []LogEntry
	observe func(LogEntry)
}

func newSession(observe func(LogEntry)) *Session {
	return &Session{
		ID:      uuid.NewString(),
		State:   StateRequesting,
		observe: observe,
	}
}

func (s *Session) log(format string, args ...any) {
	entry := LogEntry{
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
	}
	s.logs = append(s.logs, entry)
	if s.observe != nil {
		s.observe(entry)
	}
}

func (s *Session) transition(next State) {
	s.State = next
}

// Logs returns the accumulated trace in append order.
func (s *Session) Logs() []LogEntry {
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// SettledTxID returns the transaction id of a successful settlement, if
// one happened during this session.
func (s *Session) SettledTxID() string {
	if s.Settlement != nil && s.Settlement.Success {
		return s.Settlement.TxID
	}
	return ""
}
