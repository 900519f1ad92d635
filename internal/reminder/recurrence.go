package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// parseRule parses an RFC 5545 RRULE anchored at dtstart.
func parseRule(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(strings.TrimSpace(ruleStr), "RRULE:")
	if !strings.Contains(strings.ToUpper(ruleStr), "FREQ=") {
		return nil, fmt.Errorf("recurrence %q has no FREQ", ruleStr)
	}

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	// Each firing re-anchors the rule at the new occurrence, so a count
	// would restart every time.
	if opt.Count > 0 {
		return nil, fmt.Errorf("recurrence %q uses COUNT, use UNTIL instead", ruleStr)
	}

	opt.Dtstart = dtstart
	return rrule.NewRRule(*opt)
}

// normalizeRule returns the canonical form stored on a reminder.
func normalizeRule(ruleStr string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ruleStr), "RRULE:"))
}

// nextOccurrence returns the first occurrence strictly after after, or false
// when the rule is exhausted.
func nextOccurrence(ruleStr string, dtstart, after time.Time) (time.Time, bool, error) {
	rule, err := parseRule(ruleStr, dtstart)
	if err != nil {
		return time.Time{}, false, err
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return time.Time{}, false, nil
	}
	return next, true, nil
}
