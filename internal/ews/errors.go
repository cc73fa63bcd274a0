package ews

import "fmt"

// OperationError reports a request Exchange accepted at the transport level
// but rejected in the response message, for example an access-denied or
// item-not-found response code.
type OperationError struct {
	Op            string
	ResponseClass string
	ResponseCode  string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %s (%s)", e.Op, e.ResponseCode, e.ResponseClass)
}

// SubscribeError reports a failed subscription attempt.
type SubscribeError struct {
	Reason string
	Err    error
}

func (e *SubscribeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("subscribe failed: %s: %v", e.Reason, e.Err)
	}
	return "subscribe failed: " + e.Reason
}

func (e *SubscribeError) Unwrap() error {
	return e.Err
}

// InvalidStateError reports a subscription operation attempted after the
// subscription was cancelled.
type InvalidStateError struct {
	Op string
}

func (e *InvalidStateError) Error() string {
	return e.Op + " on a cancelled subscription"
}
