package submit

import (
	"context"
	"time"

	"github.com/username/commute-ride-bot/internal/schedule"
	"go.uber.org/zap"
)

// Outcome is the result of one booking attempt
type Outcome int

const (
	OutcomeTransientFailure Outcome = iota
	OutcomeSuccess
	OutcomeAlreadyBooked
	OutcomePastCutoff
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAlreadyBooked:
		return "already_booked"
	case OutcomePastCutoff:
		return "past_cutoff"
	default:
		return "transient_failure"
	}
}

// Settled reports whether retrying the ride cannot change its outcome
func (o Outcome) Settled() bool {
	return o != OutcomeTransientFailure
}

// RideRequest is one ride with its addresses resolved
type RideRequest struct {
	Date        time.Time
	Direction   schedule.Direction
	DisplayDay  string
	Time        string
	Origin      string
	Destination string
}

// RideSubmitter books a single ride on the external dashboard
type RideSubmitter interface {
	Submit(ctx context.Context, req RideRequest) (Outcome, error)
}

// DryRun is a RideSubmitter that only logs the requests
type DryRun struct {
	logger *zap.Logger
}

// NewDryRun creates a dry-run submitter
func NewDryRun(logger *zap.Logger) *DryRun {
	return &DryRun{logger: logger}
}

// Submit logs req and reports success
func (d *DryRun) Submit(ctx context.Context, req RideRequest) (Outcome, error) {
	d.logger.Info("[DRY RUN] Would book ride",
		zap.String("day", req.DisplayDay),
		zap.String("time", req.Time),
		zap.String("direction", string(req.Direction)),
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination))
	return OutcomeSuccess, nil
}
