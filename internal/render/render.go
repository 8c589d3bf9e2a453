// Package render formats schedules and booking reports for the terminal
// and for export.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/username/commute-ride-bot/internal/schedule"
	"github.com/username/commute-ride-bot/internal/submit"
	"github.com/username/commute-ride-bot/pkg/dateutil"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	summaryBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
)

// ExportedRide is one ride as written by Export
type ExportedRide struct {
	Date        string `yaml:"date"`
	Shift       string `yaml:"shift"`
	Way         string `yaml:"way"`
	Day         string `yaml:"day"`
	Weekday     string `yaml:"weekday"`
	Time        string `yaml:"time"`
	Home        string `yaml:"home"`
	Work        string `yaml:"work"`
	From        string `yaml:"from,omitempty"`
	To          string `yaml:"to,omitempty"`
	Unavailable string `yaml:"unavailable,omitempty"`
}

// Rides flattens the rides of all schedulers in booking order
func Rides(schedulers []*schedule.Scheduler) []ExportedRide {
	var rides []ExportedRide
	for _, s := range schedulers {
		book := s.Addresses()
		for _, ride := range s.Rides() {
			out := ExportedRide{
				Date:    dateutil.FormatInput(ride.Date),
				Shift:   string(s.Config().Shift),
				Way:     string(ride.Direction),
				Day:     ride.Record.DisplayDay,
				Weekday: schedule.WeekdayNames[ride.Record.Weekday],
				Time:    ride.Record.Time,
				Home:    ride.Record.Home,
				Work:    ride.Record.Work,
			}
			from, errFrom := book.Resolve(ride.OriginName())
			to, errTo := book.Resolve(ride.DestinationName())
			switch {
			case errFrom != nil:
				out.Unavailable = errFrom.Error()
			case errTo != nil:
				out.Unavailable = errTo.Error()
			default:
				out.From, out.To = from, to
			}
			rides = append(rides, out)
		}
	}
	return rides
}

// Export writes the flat ride list as YAML
func Export(w io.Writer, schedulers []*schedule.Scheduler) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]ExportedRide{"rides": Rides(schedulers)}); err != nil {
		return fmt.Errorf("failed to encode rides: %w", err)
	}
	return enc.Close()
}

// Summaries boxes the summary of every scheduler
func Summaries(schedulers []*schedule.Scheduler) string {
	parts := make([]string, 0, len(schedulers))
	for _, s := range schedulers {
		parts = append(parts, summaryBorder.Render(strings.TrimRight(s.Summary(), "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RideTable renders the rides of all schedulers as a table
func RideTable(schedulers []*schedule.Scheduler) string {
	t := newTable("Day", "Weekday", "Time", "Way", "From", "To")
	for _, r := range Rides(schedulers) {
		from, to := r.From, r.To
		if r.Unavailable != "" {
			from, to = "?", r.Unavailable
		}
		t.Row(r.Day, r.Weekday, r.Time, r.Way, from, to)
	}
	return t.Render()
}

// OutcomeTable renders the per-ride result of a booking run followed by totals
func OutcomeTable(report *submit.Report) string {
	t := newTable("Day", "Time", "Way", "Outcome", "Attempts", "Detail")
	for _, res := range report.Results {
		detail := ""
		if res.Err != nil {
			detail = res.Err.Error()
		}
		t.Row(
			res.Request.DisplayDay,
			res.Request.Time,
			string(res.Request.Direction),
			styleOutcome(res).Render(res.Outcome.String()),
			fmt.Sprintf("%d", res.Attempts),
			detail,
		)
	}

	totals := fmt.Sprintf("Run %s: %d booked, %d already booked, %d past cutoff, %d failed in %d pass(es)",
		report.RunID,
		report.Count(submit.OutcomeSuccess),
		report.Count(submit.OutcomeAlreadyBooked),
		report.Count(submit.OutcomePastCutoff),
		report.Count(submit.OutcomeTransientFailure),
		report.Passes)

	return lipgloss.JoinVertical(lipgloss.Left, t.Render(), totals)
}

func styleOutcome(res submit.Result) lipgloss.Style {
	switch {
	case res.Attempts == 0:
		return skippedStyle
	case res.Outcome == submit.OutcomeTransientFailure:
		return failureStyle
	case res.Outcome == submit.OutcomeSuccess:
		return successStyle
	default:
		return skippedStyle
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
}
