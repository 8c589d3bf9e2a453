package submit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/commute-ride-bot/internal/schedule"
	"go.uber.org/zap"
)

// Result is the final state of one ride after all passes
type Result struct {
	Ride     schedule.Ride
	Request  RideRequest
	Outcome  Outcome
	Err      error
	Attempts int

	resolved bool
}

// Report summarizes a booking run
type Report struct {
	RunID    string
	Passes   int
	Results  []Result
	Duration time.Duration
}

// Count returns how many rides ended with outcome o
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Runner submits every scheduled ride one at a time. A failing ride is
// logged and never stops the rides after it.
type Runner struct {
	submitter RideSubmitter
	passes    int
	logger    *zap.Logger
}

// NewRunner creates a runner doing up to passes passes over unsettled rides
func NewRunner(submitter RideSubmitter, passes int, logger *zap.Logger) *Runner {
	if passes < 1 {
		passes = 1
	}
	return &Runner{
		submitter: submitter,
		passes:    passes,
		logger:    logger,
	}
}

// Run checks every scheduler's configuration, then books all their rides
func (r *Runner) Run(ctx context.Context, schedulers ...*schedule.Scheduler) (*Report, error) {
	for i, s := range schedulers {
		if err := s.Checkup(); err != nil {
			return nil, fmt.Errorf("schedule %d is incomplete: %w", i+1, err)
		}
	}

	report := &Report{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run_id", report.RunID))
	started := time.Now()

	for _, s := range schedulers {
		for _, ride := range s.Rides() {
			res := resolve(s.Addresses(), ride)
			if !res.resolved {
				logger.Warn("Ride skipped, address not resolvable",
					zap.String("day", res.Request.DisplayDay),
					zap.String("direction", string(ride.Direction)),
					zap.Error(res.Err))
			}
			report.Results = append(report.Results, res)
		}
	}

	logger.Info("Starting booking run",
		zap.Int("rides", len(report.Results)),
		zap.Int("max_passes", r.passes))

	for pass := 1; pass <= r.passes; pass++ {
		pending := 0
		for i := range report.Results {
			if err := ctx.Err(); err != nil {
				report.Duration = time.Since(started)
				return report, fmt.Errorf("booking run interrupted: %w", err)
			}

			res := &report.Results[i]
			if !res.resolved || (res.Attempts > 0 && res.Outcome.Settled()) {
				continue
			}
			pending++
			r.submitOne(ctx, logger, pass, res)
		}

		report.Passes = pass
		if pending == 0 || report.Count(OutcomeTransientFailure) == r.unresolved(report) {
			break
		}
	}

	report.Duration = time.Since(started)
	logger.Info("Booking run finished",
		zap.Int("booked", report.Count(OutcomeSuccess)),
		zap.Int("already_booked", report.Count(OutcomeAlreadyBooked)),
		zap.Int("past_cutoff", report.Count(OutcomePastCutoff)),
		zap.Int("failed", report.Count(OutcomeTransientFailure)),
		zap.Int("passes", report.Passes),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (r *Runner) submitOne(ctx context.Context, logger *zap.Logger, pass int, res *Result) {
	res.Attempts++
	outcome, err := r.submitter.Submit(ctx, res.Request)
	if err != nil {
		outcome = OutcomeTransientFailure
	}
	res.Outcome = outcome
	res.Err = err

	fields := []zap.Field{
		zap.Int("pass", pass),
		zap.String("day", res.Request.DisplayDay),
		zap.String("time", res.Request.Time),
		zap.String("direction", string(res.Request.Direction)),
		zap.String("outcome", outcome.String()),
	}
	if err != nil {
		logger.Warn("Ride booking failed", append(fields, zap.Error(err))...)
		return
	}
	logger.Info("Ride processed", fields...)
}

// unresolved counts rides that were never submitted because an address is missing
func (r *Runner) unresolved(report *Report) int {
	n := 0
	for _, res := range report.Results {
		if !res.resolved {
			n++
		}
	}
	return n
}

func resolve(book *schedule.AddressBook, ride schedule.Ride) Result {
	res := Result{
		Ride:    ride,
		Outcome: OutcomeTransientFailure,
		Request: RideRequest{
			Date:       ride.Date,
			Direction:  ride.Direction,
			DisplayDay: ride.Record.DisplayDay,
			Time:       ride.Record.Time,
		},
	}

	origin, err := book.Resolve(ride.OriginName())
	if err != nil {
		res.Err = err
		return res
	}
	destination, err := book.Resolve(ride.DestinationName())
	if err != nil {
		res.Err = err
		return res
	}

	res.Request.Origin = origin
	res.Request.Destination = destination
	res.resolved = true
	return res
}
