// Package geo resolves coarse scanner geography from an IP address.
//
// Lookups are best effort: Resolve never returns an error, only a resolved
// location or the Unknown location.
package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	infraPrometheus "github.com/sifan077/PowerQR/internal/infra/prometheus"
)

// UnknownValue fills every field that could not be resolved.
const UnknownValue = "Unknown"

// DefaultTimeout bounds a lookup when the caller passes no timeout.
const DefaultTimeout = 500 * time.Millisecond

var (
	// ErrNoIP is returned by locators when the address is empty or unparsable.
	ErrNoIP = errors.New("geo: no client ip")
	// ErrNotFound is returned when a provider has no data for the address.
	ErrNotFound = errors.New("geo: location not found")
)

// Location is a coarse geographic position.
type Location struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
}

// Unknown is the location used whenever a lookup fails.
var Unknown = Location{Country: UnknownValue, Region: UnknownValue, City: UnknownValue}

// Result is the outcome of Resolve: either a resolved location or Unknown.
type Result struct {
	Location Location
	Resolved bool
}

// Locator looks up the location of an IP address.
type Locator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// Resolve runs locator for ip within timeout. Any error, panic, timeout or
// missing address yields Unknown; partially resolved locations have their
// empty fields set to UnknownValue.
func Resolve(ctx context.Context, locator Locator, ip string, timeout time.Duration) Result {
	if locator == nil || ip == "" {
		infraPrometheus.GeoLookupsTotal.WithLabelValues("unknown").Inc()
		return Result{Location: Unknown}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		loc Location
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("geo: locator panic: %v", r)}
			}
		}()
		loc, err := locator.Locate(ctx, ip)
		done <- outcome{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		infraPrometheus.GeoLookupsTotal.WithLabelValues("unknown").Inc()
		return Result{Location: Unknown}
	case out := <-done:
		if out.err != nil {
			infraPrometheus.GeoLookupsTotal.WithLabelValues("unknown").Inc()
			return Result{Location: Unknown}
		}
		infraPrometheus.GeoLookupsTotal.WithLabelValues("resolved").Inc()
		return Result{Location: out.loc.withDefaults(), Resolved: true}
	}
}

func (l Location) withDefaults() Location {
	if l.Country == "" {
		l.Country = UnknownValue
	}
	if l.Region == "" {
		l.Region = UnknownValue
	}
	if l.City == "" {
		l.City = UnknownValue
	}
	return l
}

// Chain tries each locator in order and returns the first success.
type Chain []Locator

func (c Chain) Locate(ctx context.Context, ip string) (Location, error) {
	var errs []error
	for _, l := range c {
		loc, err := l.Locate(ctx, ip)
		if err == nil {
			return loc, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return Location{}, ErrNotFound
	}
	return Location{}, errors.Join(errs...)
}
