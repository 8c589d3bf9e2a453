package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/commute-ride-bot/internal/schedule"
	"go.uber.org/zap"
)

// scriptedSubmitter returns queued outcomes per display day + direction
type scriptedSubmitter struct {
	script   map[string][]scripted
	requests []RideRequest
}

type scripted struct {
	outcome Outcome
	err     error
}

func (s *scriptedSubmitter) Submit(ctx context.Context, req RideRequest) (Outcome, error) {
	s.requests = append(s.requests, req)
	key := req.DisplayDay + " " + string(req.Direction)
	queue := s.script[key]
	if len(queue) == 0 {
		return OutcomeSuccess, nil
	}
	next := queue[0]
	s.script[key] = queue[1:]
	return next.outcome, next.err
}

func newScheduler(t *testing.T, home string) *schedule.Scheduler {
	t.Helper()

	cfg, err := schedule.NewShiftConfig("night", "17:55", "07:05", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	book := schedule.NewAddressBook()
	if home != "" {
		require.NoError(t, book.Set("home", home))
	}
	require.NoError(t, book.Set("work", "W"))

	s, err := schedule.NewScheduler(cfg, book, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestRunner_SubmitsRidesInOrder(t *testing.T) {
	sub := &scriptedSubmitter{script: map[string][]scripted{}}
	runner := NewRunner(sub, 1, zap.NewNop())

	report, err := runner.Run(context.Background(), newScheduler(t, "H"))

	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Count(OutcomeSuccess))
	require.Len(t, sub.requests, 4)
	assert.Equal(t, RideRequest{
		Date:        time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		Direction:   schedule.ToHome,
		DisplayDay:  "06/02/24",
		Time:        "07:05",
		Origin:      "W",
		Destination: "H",
	}, sub.requests[1])
	assert.Equal(t, "H", sub.requests[2].Origin)
	assert.Equal(t, "06/02/24", sub.requests[2].DisplayDay)
}

func TestRunner_FailureDoesNotStopBatch(t *testing.T) {
	sub := &scriptedSubmitter{script: map[string][]scripted{
		"05/02/24 to_work": {{OutcomeTransientFailure, errors.New("driver not found")}},
		"06/02/24 to_home": {{OutcomeAlreadyBooked, nil}},
		"07/02/24 to_home": {{OutcomePastCutoff, nil}},
	}}
	runner := NewRunner(sub, 1, zap.NewNop())

	report, err := runner.Run(context.Background(), newScheduler(t, "H"))

	require.NoError(t, err)
	assert.Len(t, sub.requests, 4)
	assert.Equal(t, 1, report.Count(OutcomeTransientFailure))
	assert.Equal(t, 1, report.Count(OutcomeSuccess))
	assert.Equal(t, 1, report.Count(OutcomeAlreadyBooked))
	assert.Equal(t, 1, report.Count(OutcomePastCutoff))
	assert.EqualError(t, report.Results[0].Err, "driver not found")
}

func TestRunner_LaterPassesRetryOnlyFailures(t *testing.T) {
	sub := &scriptedSubmitter{script: map[string][]scripted{
		"05/02/24 to_work": {{OutcomeTransientFailure, errors.New("timeout")}},
	}}
	runner := NewRunner(sub, 3, zap.NewNop())

	report, err := runner.Run(context.Background(), newScheduler(t, "H"))

	require.NoError(t, err)
	assert.Equal(t, 2, report.Passes)
	assert.Len(t, sub.requests, 5)
	assert.Equal(t, 4, report.Count(OutcomeSuccess))
	assert.Equal(t, 2, report.Results[0].Attempts)
	assert.NoError(t, report.Results[0].Err)
}

func TestRunner_ErrorWithoutOutcomeCountsAsFailure(t *testing.T) {
	sub := &scriptedSubmitter{script: map[string][]scripted{
		"05/02/24 to_work": {{OutcomeSuccess, errors.New("connection reset")}},
	}}
	runner := NewRunner(sub, 1, zap.NewNop())

	report, err := runner.Run(context.Background(), newScheduler(t, "H"))

	require.NoError(t, err)
	assert.Equal(t, OutcomeTransientFailure, report.Results[0].Outcome)
}

func TestRunner_RefusesIncompleteConfiguration(t *testing.T) {
	sub := &scriptedSubmitter{script: map[string][]scripted{}}
	runner := NewRunner(sub, 1, zap.NewNop())

	report, err := runner.Run(context.Background(), newScheduler(t, ""))

	assert.Nil(t, report)
	assert.True(t, errors.Is(err, schedule.ErrConfigurationIncomplete))
	assert.Equal(t, []string{"home"}, schedule.MissingFields(err))
	assert.Empty(t, sub.requests)
}

func TestRunner_UnknownAddressSkipsRide(t *testing.T) {
	s := newScheduler(t, "H")
	require.NoError(t, s.SetRide(time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC), schedule.ToHome, "gym", "", ""))
	sub := &scriptedSubmitter{script: map[string][]scripted{}}
	runner := NewRunner(sub, 2, zap.NewNop())

	report, err := runner.Run(context.Background(), s)

	require.NoError(t, err)
	assert.Len(t, sub.requests, 3)
	assert.Equal(t, 1, report.Passes)
	assert.True(t, errors.Is(report.Results[3].Err, schedule.ErrUnknownAddress))
	assert.Equal(t, 0, report.Results[3].Attempts)
}

func TestRunner_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sub := &scriptedSubmitter{script: map[string][]scripted{}}
	runner := NewRunner(sub, 1, zap.NewNop())

	report, err := runner.Run(ctx, newScheduler(t, "H"))

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, sub.requests)
}

func TestRunner_MultipleSchedulers(t *testing.T) {
	sub := &scriptedSubmitter{script: map[string][]scripted{}}
	runner := NewRunner(sub, 1, zap.NewNop())

	report, err := runner.Run(context.Background(), newScheduler(t, "H"), newScheduler(t, "H2"))

	require.NoError(t, err)
	assert.Len(t, report.Results, 8)
	assert.Equal(t, "H2", sub.requests[4].Origin)
}

func TestDryRun(t *testing.T) {
	outcome, err := NewDryRun(zap.NewNop()).Submit(context.Background(), RideRequest{DisplayDay: "05/02/24"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "already_booked", OutcomeAlreadyBooked.String())
	assert.Equal(t, "past_cutoff", OutcomePastCutoff.String())
	assert.Equal(t, "transient_failure", OutcomeTransientFailure.String())
	assert.False(t, OutcomeTransientFailure.Settled())
	assert.True(t, OutcomePastCutoff.Settled())
}
