package racedb

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Source,
		&startedRaw,
		&finishedRaw,
		&run.Frames,
		&run.Emitted,
		&run.Races,
		&run.FinishedRaces,
	); err != nil {
		return nil, err
	}
	started, err := time.Parse(time.RFC3339Nano, startedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started
	if finishedRaw.Valid && finishedRaw.String != "" {
		finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = finished
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
