// Package recurrence adapts RFC 5545 RRULE text plus an anchor instant into an
// occurrence sequence.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// InvalidRuleError is returned when rule text cannot be parsed.
type InvalidRuleError struct {
	Rule string
	Err  error
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid recurrence rule %q: %v", e.Rule, e.Err)
}

func (e *InvalidRuleError) Unwrap() error {
	return e.Err
}

// IsInvalidRule reports whether err is or wraps an InvalidRuleError.
func IsInvalidRule(err error) bool {
	var target *InvalidRuleError
	return errors.As(err, &target)
}

// Rule is a parsed recurrence rule bound to its anchor.
type Rule struct {
	text   string
	anchor time.Time
	rr     *rrule.RRule
}

// Parse parses an RRULE body (with or without the "RRULE:" prefix). The anchor is the
// rule's DTSTART; its location decides wall-clock expansion of BYDAY/BYHOUR parts.
func Parse(text string, anchor time.Time) (*Rule, error) {
	body := strings.TrimSpace(text)
	if len(body) >= 6 && strings.EqualFold(body[:6], "RRULE:") {
		body = strings.TrimSpace(body[6:])
	}
	if body == "" {
		return nil, &InvalidRuleError{Rule: text, Err: errors.New("empty rule")}
	}
	if anchor.IsZero() {
		return nil, &InvalidRuleError{Rule: text, Err: errors.New("missing anchor")}
	}
	if strings.Contains(strings.ToUpper(body), "DTSTART") {
		return nil, &InvalidRuleError{Rule: text, Err: errors.New("DTSTART must be supplied as the anchor, not inside the rule")}
	}

	opt, err := rrule.StrToROption(body)
	if err != nil {
		return nil, &InvalidRuleError{Rule: text, Err: err}
	}
	opt.Dtstart = anchor

	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, &InvalidRuleError{Rule: text, Err: err}
	}

	return &Rule{text: text, anchor: anchor, rr: rr}, nil
}

func (r *Rule) Text() string {
	return r.text
}

func (r *Rule) Anchor() time.Time {
	return r.anchor
}

// Next returns the first occurrence after t (or at t when inclusive).
func (r *Rule) Next(t time.Time, inclusive bool) (time.Time, bool) {
	next := r.rr.After(t, inclusive)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// Prev returns the last occurrence before t (or at t when inclusive).
func (r *Rule) Prev(t time.Time, inclusive bool) (time.Time, bool) {
	prev := r.rr.Before(t, inclusive)
	if prev.IsZero() {
		return time.Time{}, false
	}
	return prev, true
}

// Includes reports whether t is an occurrence of the rule, compared at second precision.
func (r *Rule) Includes(t time.Time) bool {
	t = t.Truncate(time.Second)
	next, ok := r.Next(t, true)
	return ok && next.Equal(t)
}
