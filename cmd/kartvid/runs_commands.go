package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"kartvid/internal/emit"
	"kartvid/internal/logging"
	"kartvid/internal/racedb"
	"kartvid/internal/textutil"
)

const runIDWidth = 8

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, runViews(runs))
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprint(out, renderRunsTable(runs, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	cmd.AddCommand(newRunsPruneCommand(ctx))
	return cmd
}

func newRunsPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished runs older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}

			removed, err := store.PruneRuns(cmd.Context(), time.Now().Add(-olderThan), dryRun)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			verb := textutil.Ternary(dryRun, "Would remove", "Removed")
			for _, run := range removed {
				fmt.Fprintf(out, "%s %s (%s, %s)\n", verb, shortID(run.ID), run.Source, humanize.Time(run.StartedAt))
				if !dryRun {
					logger.Info("run pruned",
						logging.String(logging.FieldRunID, run.ID),
						logging.String(logging.FieldSource, run.Source),
						logging.String(logging.FieldEventType, logging.EventRunPruned),
					)
				}
			}
			fmt.Fprintf(out, "%s %d run(s)\n", verb, len(removed))
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Remove runs started longer ago than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List runs without deleting them")
	return cmd
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "events <run-id>",
		Short: "Show the states recorded for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.FindRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %q not found", args[0])
			}
			events, err := store.ListEvents(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				for _, ev := range events {
					rec, err := eventRecord(run, ev)
					if err != nil {
						return err
					}
					if err := enc.Encode(rec); err != nil {
						return err
					}
				}
				return nil
			}
			table, err := renderEventsTable(events)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s (%s), %d events\n", run.ID, run.Source, len(events))
			fmt.Fprint(out, table)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write records as JSON lines")
	return cmd
}

// openStore opens the run database regardless of output.store so recorded
// runs stay inspectable.
func (c *commandContext) openStore() (*racedb.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := racedb.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}
	return store, nil
}

type runView struct {
	ID            string     `json:"id"`
	Source        string     `json:"source"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Frames        int        `json:"frames"`
	Emitted       int        `json:"emitted"`
	Races         int        `json:"races"`
	FinishedRaces int        `json:"finished_races"`
}

func runViews(runs []*racedb.Run) []runView {
	views := make([]runView, 0, len(runs))
	for _, r := range runs {
		v := runView{
			ID:            r.ID,
			Source:        r.Source,
			StartedAt:     r.StartedAt,
			Frames:        r.Frames,
			Emitted:       r.Emitted,
			Races:         r.Races,
			FinishedRaces: r.FinishedRaces,
		}
		if r.Finished() {
			finished := r.FinishedAt
			v.FinishedAt = &finished
		}
		views = append(views, v)
	}
	return views
}

var runColumns = []textutil.Column{
	{Title: "ID", Width: 8},
	{Title: "Source"},
	{Title: "Started"},
	{Title: "Duration", Right: true},
	{Title: "Frames", Right: true},
	{Title: "States", Right: true},
	{Title: "Races", Right: true},
}

var eventColumns = []textutil.Column{
	{Title: "Frame", Right: true},
	{Title: "Time", Right: true},
	{Title: "Event"},
	{Title: "Track"},
	{Title: "Players"},
}

func renderRunsTable(runs []*racedb.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "running"
		if r.Finished() {
			duration = durafmt.Parse(r.Duration().Round(time.Second)).LimitFirstN(2).String()
		}
		rows = append(rows, []string{
			shortID(r.ID),
			r.Source,
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			duration,
			humanize.Comma(int64(r.Frames)),
			humanize.Comma(int64(r.Emitted)),
			fmt.Sprintf("%d/%d", r.FinishedRaces, r.Races),
		})
	}
	return textutil.RenderTable(runColumns, rows)
}

func renderEventsTable(events []racedb.Event) (string, error) {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		players, err := emit.DecodePlayers(ev)
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{
			strconv.Itoa(ev.Frame),
			emit.FormatVideoTime(ev.TimeMs),
			eventLabel(ev),
			trackLabel(ev.Track),
			playersSummary(players),
		})
	}
	return textutil.RenderTable(eventColumns, rows), nil
}

func eventRecord(run *racedb.Run, ev racedb.Event) (emit.Record, error) {
	players, err := emit.DecodePlayers(ev)
	if err != nil {
		return emit.Record{}, err
	}
	return emit.Record{
		Source:  run.Source,
		Frame:   ev.Frame,
		Time:    ev.TimeMs,
		Start:   ev.Start,
		Done:    ev.Done,
		Track:   ev.Track,
		Players: players,
	}, nil
}

func eventLabel(ev racedb.Event) string {
	switch {
	case ev.Start:
		return "start"
	case ev.Done:
		return "finish"
	default:
		return "update"
	}
}

func trackLabel(track string) string {
	if track == "" {
		return "-"
	}
	return emit.TrackName(track)
}

func playersSummary(players []emit.PlayerRecord) string {
	parts := make([]string, 0, len(players))
	for _, p := range players {
		name := textutil.Title(p.Character)
		if name == "" {
			name = "?"
		}
		if p.Position > 0 {
			name += " " + textutil.Ordinal(p.Position)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) <= runIDWidth {
		return id
	}
	return id[:runIDWidth]
}
