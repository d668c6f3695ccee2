package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on it instead of relying
// on a catch-all at the HTTP boundary.
type Kind string

const (
	Validation Kind = "validation" //bad caller input, terminal
	Extraction Kind = "extraction" //unparseable document
	Provider   Kind = "provider"   //embedding or generation call failed
	Index      Kind = "index"      //search store read/write failed
	Event      Kind = "event"      //malformed change notification
)

// ProviderSub narrows Provider faults. Transient, rate-limited and timeout
// faults may be retried; an oversized input never succeeds on retry.
type ProviderSub string

const (
	SubNone        ProviderSub = ""
	SubTransient   ProviderSub = "transient"
	SubRateLimited ProviderSub = "rate_limited"
	SubTimeout     ProviderSub = "timeout"
	SubOversized   ProviderSub = "oversized_input"
)

type Fault struct {
	Kind Kind
	Sub  ProviderSub
	Msg  string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func New(kind Kind, msg string) *Fault {
	return &Fault{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Fault {
	return &Fault{Kind: kind, Msg: msg, Err: err}
}

func ProviderFault(sub ProviderSub, msg string, err error) *Fault {
	return &Fault{Kind: Provider, Sub: sub, Msg: msg, Err: err}
}

// KindOf reports the classification of err, or "" for untyped errors.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether a bounded retry is appropriate for err.
// Validation and event faults are always terminal for their unit of work.
func Retryable(err error) bool {
	var f *Fault
	if !errors.As(err, &f) {
		return false
	}
	if f.Kind != Provider && f.Kind != Index {
		return false
	}
	switch f.Sub {
	case SubTransient, SubRateLimited, SubTimeout:
		return true
	case SubOversized:
		return false
	}
	return f.Kind == Index
}
