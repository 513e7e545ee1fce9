package config

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser is the parser the worker scheduler registers entries with, so
// a schedule accepted here is also accepted there.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule accepts five-field expressions such as "30 5 * * *"
// or "0 */6 * * *".
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("empty cron schedule")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone accepts IANA names such as "Asia/Tokyo". It needs tzdata
// on the host.
func ValidateTimezone(name string) error {
	if name == "" {
		return errors.New("empty timezone")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("timezone %q: %w", name, err)
	}
	return nil
}

// ValidateDuration checks lo <= d <= hi.
func ValidateDuration(d, lo, hi time.Duration) error { return within(d, lo, hi) }

// ValidateIntRange checks lo <= v <= hi.
func ValidateIntRange(v, lo, hi int) error { return within(v, lo, hi) }

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%v is not positive", d)
	}
	return nil
}

// IntRange binds ValidateIntRange for use with LoadEnv.
func IntRange(lo, hi int) func(int) error {
	return func(v int) error { return within(v, lo, hi) }
}

// DurationRange binds ValidateDuration for use with LoadEnv.
func DurationRange(lo, hi time.Duration) func(time.Duration) error {
	return func(d time.Duration) error { return within(d, lo, hi) }
}

func within[T cmp.Ordered](v, lo, hi T) error {
	switch {
	case lo > hi:
		return fmt.Errorf("empty range [%v, %v]", lo, hi)
	case v < lo || v > hi:
		return fmt.Errorf("%v outside [%v, %v]", v, lo, hi)
	}
	return nil
}
