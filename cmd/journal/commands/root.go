// Package commands implements the journal command line
package commands

import (
	"fmt"
	"time"

	"github.com/benvon/daily-journal/internal/models"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug     bool
	logFormat string
	envFiles  []string

	date      string
	week      bool
	weekStart string
}

// period is the day or week a command operates on. A zero date lets the
// journal pick today or the previous week.
type period struct {
	weekly bool
	date   models.Date
}

func (p period) String() string {
	kind := "day"
	if p.weekly {
		kind = "week"
	}
	if p.date.IsZero() {
		return kind + " (default)"
	}
	return kind + " " + p.date.String()
}

func parsePeriod(date string, week bool, weekStart string) (period, error) {
	switch {
	case weekStart != "":
		d, err := models.ParseDate(weekStart)
		if err != nil {
			return period{}, fmt.Errorf("--week-start: %w", err)
		}
		return period{weekly: true, date: d}, nil
	case week:
		return period{weekly: true}, nil
	case date != "":
		d, err := models.ParseDate(date)
		if err != nil {
			return period{}, fmt.Errorf("--date: %w", err)
		}
		return period{date: d}, nil
	default:
		return period{}, nil
	}
}

// resolve fills in the default date as seen from loc at now
func (p period) resolve(now time.Time, loc *time.Location) period {
	if !p.date.IsZero() {
		return p
	}
	today := models.DateIn(now, loc)
	if p.weekly {
		p.date = models.PreviousWeekStart(today)
	} else {
		p.date = today
	}
	return p
}

func addPeriodFlags(cmd *cobra.Command, opts *rootOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "", "process this date (YYYY-MM-DD) instead of today")
	f.BoolVar(&opts.week, "week", false, "run the weekly review for the previous week")
	f.StringVar(&opts.weekStart, "week-start", "", "run the weekly review for the week starting on this date (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("date", "week")
	cmd.MarkFlagsMutuallyExclusive("date", "week-start")
}

// NewRootCmd creates the journal command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Turn a day of notebook pages, voice memos and notes into a journal entry",
		Long: "Collects the day's files from the configured Drive folders, analyzes them with the language model, " +
			"records the summary, tasks and insights in the spreadsheet and prints a report. " +
			"With --week or --week-start it reviews a week of entries instead.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePeriod(opts.date, opts.week, opts.weekStart)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			j, err := a.journal(ctx)
			if err != nil {
				return err
			}
			if p.weekly {
				_, err = j.RunWeekly(ctx, p.date)
			} else {
				_, err = j.RunDaily(ctx, p.date)
			}
			return quiet(err)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging, including language model requests")
	pf.StringVar(&opts.logFormat, "log-format", "console", "log encoding: console or json")
	pf.StringSliceVar(&opts.envFiles, "env-file", nil, "load variables from these files before reading the environment (default .env)")
	addPeriodFlags(cmd, opts)

	cmd.AddCommand(
		newTasksCmd(opts),
		newEnqueueCmd(opts),
		newWorkerCmd(opts),
		newReplayCmd(opts),
	)
	return cmd
}
