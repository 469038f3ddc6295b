// Package agent drives the client side of the payment protocol: issue a
// request, turn a 402 challenge into a settled payment, and retry the
// request with proof attached, producing an ordered protocol trace.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	xhttp "github.com/x402-stacks/x402-stacks-go/http"
)

const DefaultTimeout = 120 * time.Second

// Orchestrator runs the request/challenge/pay/retry cycle. One payment
// attempt is made per Fetch call; a rejected settlement is reported to
// the caller instead of being retried, so a single call can never spend
// more than once.
type Orchestrator struct {
	payments    *x402stacks.PaymentClient
	facilitator x402stacks.FacilitatorClient
	httpClient  *http.Client
	timeout     time.Duration
	observe     func(LogEntry)
}

type Option func(*Orchestrator)

// WithHTTPClient replaces the HTTP client used for resource requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout bounds the whole cycle, original request through retried
// request. Zero keeps DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLogObserver streams each protocol log entry as it is appended, in
// addition to the trace returned with the result.
func WithLogObserver(observe func(LogEntry)) Option {
	return func(o *Orchestrator) {
		o.observe = observe
	}
}

func NewOrchestrator(payments *x402stacks.PaymentClient, facilitator x402stacks.FacilitatorClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		payments:    payments,
		facilitator: facilitator,
		httpClient:  &http.Client{},
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FetchResult reports the terminal state of one cycle. TxID is set
// whenever a settlement succeeded, including the timeout-after-settle
// case, so the caller can reconcile a payment whose retried request
// never completed.
type FetchResult struct {
	Status int
	State  State
	Reason string
	TxID   string
	Body   []byte
	Header http.Header
	Logs   []LogEntry
}

func (r *FetchResult) OK() bool { return r.State == StateSettled }

// Fetch issues a GET against url and walks the payment cycle to a
// terminal state. It returns an error only for a misconfigured
// orchestrator; protocol failures land in FetchResult.
func (o *Orchestrator) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	if o.payments == nil || o.facilitator == nil {
		return nil, x402stacks.NewPaymentError(x402stacks.ErrCodeConfiguration,
			"orchestrator requires a payment client and a facilitator", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	session := newSession(o.observe)
	session.log("Payment cycle started (session %s)", session.ID)
	session.log("Step 1: Sending request to resource server...")

	resp, err := o.request(ctx, url, nil)
	if err != nil {
		return o.fail(session, err, 0), nil
	}
	session.Attempts++

	switch resp.status {
	case http.StatusOK:
		session.transition(StateSettled)
		session.log("Resource released without payment (HTTP 200)")
		return o.result(session, resp), nil
	case http.StatusPaymentRequired:
		session.transition(StateChallengeReceived)
		session.log("Step 2: Received HTTP 402 Payment Required")
	default:
		session.log("Unexpected response: HTTP %d", resp.status)
		return o.failStatus(session, fmt.Sprintf("http-%d", resp.status), resp), nil
	}

	var challenge x402stacks.PaymentRequired
	if err := json.Unmarshal(resp.body, &challenge); err != nil {
		session.log("Challenge body is not valid JSON: %v", err)
		return o.failStatus(session, ReasonPaymentRejected, resp), nil
	}
	session.Challenge = &challenge

	session.transition(StatePaying)
	session.log("Step 3: Processing payment (scheme %s, network %s)", challenge.Scheme, challenge.Network)

	requirements, err := o.payments.SelectRequirements(challenge.Accepted)
	if err != nil {
		session.log("No payable requirement in challenge: %v", err)
		return o.failPaying(session, err, resp.status), nil
	}

	payload, err := o.payments.CreatePaymentPayload(ctx, requirements)
	if err != nil {
		session.log("Payment payload construction failed: %v", err)
		return o.failPaying(session, err, resp.status), nil
	}
	session.log("Signed transaction for %s micro-STX to %s", requirements.Amount, requirements.PayTo)

	settlement, err := o.facilitator.Settle(ctx, payload, requirements)
	if err != nil {
		session.log("Settlement request failed: %v", err)
		return o.failPaying(session, err, resp.status), nil
	}
	session.Settlement = settlement
	if !settlement.Success {
		reason := settlement.ErrorReason
		if reason == "" {
			reason = "settlement rejected"
		}
		session.log("Step 4: Settlement rejected: %s", reason)
		return o.failWithResult(session, ReasonPaymentRejected, resp.status), nil
	}
	session.log("Step 4: Payment confirmed on-chain")
	session.log("Transaction ID: %s", settlement.TxID)

	session.transition(StateRetrying)
	session.log("Step 5: Retrying request with payment proof...")

	header, err := xhttp.EncodePaymentHeader(x402stacks.PaymentProof{
		PaymentPayload: payload,
		TxID:           settlement.TxID,
	})
	if err != nil {
		return o.fail(session, err, resp.status), nil
	}

	retried, err := o.request(ctx, url, map[string]string{xhttp.PaymentHeader: header})
	if err != nil {
		return o.fail(session, err, resp.status), nil
	}
	session.Attempts++

	switch retried.status {
	case http.StatusOK:
		session.transition(StateSettled)
		session.log("Step 6: Success! Resource released (HTTP 200)")
		return o.result(session, retried), nil
	case http.StatusPaymentRequired:
		session.log("Resource server rejected the payment proof")
		return o.failStatus(session, ReasonProofRejected, retried), nil
	default:
		session.log("Unexpected response after payment: HTTP %d", retried.status)
		return o.failStatus(session, fmt.Sprintf("http-%d", retried.status), retried), nil
	}
}

type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

func (o *Orchestrator) request(ctx context.Context, url string, headers map[string]string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, x402stacks.NewPaymentError(x402stacks.ErrCodeTransport, err.Error(), nil)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &rawResponse{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (o *Orchestrator) result(session *Session, resp *rawResponse) *FetchResult {
	return &FetchResult{
		Status: resp.status,
		State:  session.State,
		TxID:   session.SettledTxID(),
		Body:   resp.body,
		Header: resp.header,
		Logs:   session.Logs(),
	}
}

// fail classifies an error, mapping context expiry to the timeout reason
// so a successful settlement's transaction id survives into the result.
func (o *Orchestrator) fail(session *Session, err error, status int) *FetchResult {
	reason := x402stacks.ErrorCode(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		reason = ReasonTimeout
	}
	if reason == "" {
		reason = x402stacks.ErrCodeTransport
	}
	if reason == ReasonTimeout {
		session.log("Cycle timed out in state %q", session.State)
		if txid := session.SettledTxID(); txid != "" {
			session.log("Settlement already confirmed, reconcile with txid %s", txid)
		}
	} else {
		session.log("Cycle failed: %v", err)
	}
	return o.failWithResult(session, reason, status)
}

// failPaying classifies payment-phase errors. A structured error keeps
// its own code (configuration-error, unsupported-requirement, ...);
// anything unclassified becomes payment-rejected, and context expiry
// stays a timeout.
func (o *Orchestrator) failPaying(session *Session, err error, status int) *FetchResult {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return o.fail(session, err, status)
	}
	session.log("Cycle failed: %v", err)
	reason := x402stacks.ErrorCode(err)
	if reason == "" {
		reason = ReasonPaymentRejected
	}
	return o.failWithResult(session, reason, status)
}

func (o *Orchestrator) failStatus(session *Session, reason string, resp *rawResponse) *FetchResult {
	result := o.failWithResult(session, reason, resp.status)
	result.Body = resp.body
	result.Header = resp.header
	return result
}

func (o *Orchestrator) failWithResult(session *Session, reason string, status int) *FetchResult {
	session.transition(StateFailed)
	return &FetchResult{
		Status: status,
		State:  StateFailed,
		Reason: reason,
		TxID:   session.SettledTxID(),
		Logs:   session.Logs(),
	}
}
