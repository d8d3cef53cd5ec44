package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/target/deckgen/internal/domain/model"
)

type jobReader interface {
	Get(ctx context.Context, jobID string) (*model.JobView, error)
}

type usageReader interface {
	Count(ctx context.Context, userID string, day time.Time) (int64, error)
}

type depthReader interface {
	Depth(ctx context.Context) (int64, error)
}

type presentationDeleter interface {
	Delete(ctx context.Context, id string) error
}

func printStatus(ctx context.Context, w io.Writer, jobs jobReader, id string) error {
	view, err := jobs.Get(ctx, id)
	if errors.Is(err, model.ErrJobNotFound) {
		return writef(w, "presentation %s: not found\n", id)
	}
	if err != nil {
		return fmt.Errorf("get job %s: %w", id, err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", view.ID},
		{"Status", string(view.Status)},
	}
	if view.TaskRef != "" {
		rows = append(rows, [2]string{"Task", view.TaskRef})
	}
	if view.Error != "" {
		rows = append(rows, [2]string{"Error", view.Error})
	}
	if r := view.Result; r != nil {
		rows = append(rows,
			[2]string{"Topic", r.Topic},
			[2]string{"Slides", strconv.Itoa(r.SlideCount)},
			[2]string{"Download URL", r.DownloadURL},
			[2]string{"Storage key", r.StorageKey},
		)
		if !r.CreatedAt.IsZero() {
			rows = append(rows, [2]string{"Created", r.CreatedAt.UTC().Format(time.RFC3339)})
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func deletePresentation(ctx context.Context, w io.Writer, svc presentationDeleter, id string) error {
	if err := svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete presentation %s: %w", id, err)
	}
	return writef(w, "presentation %s deleted\n", id)
}

type usageReport struct {
	Out   io.Writer
	Usage usageReader
	User  string
	Day   time.Time
	Limit int
}

func printUsageCount(ctx context.Context, r *usageReport) error {
	used, err := r.Usage.Count(ctx, r.User, r.Day)
	if err != nil {
		return fmt.Errorf("count usage for %s: %w", r.User, err)
	}
	day := r.Day.UTC().Format(time.DateOnly)
	if r.Limit <= 0 {
		return writef(r.Out, "user %s on %s: %d presentations (no daily limit)\n", r.User, day, used)
	}
	remaining := max(int64(r.Limit)-used, 0)
	return writef(r.Out, "user %s on %s: %d/%d presentations, %d remaining\n", r.User, day, used, r.Limit, remaining)
}

func printQueueDepth(ctx context.Context, w io.Writer, q depthReader) error {
	n, err := q.Depth(ctx)
	if err != nil {
		return fmt.Errorf("queue depth: %w", err)
	}
	return writef(w, "%d\n", n)
}

func printApplied(w io.Writer, versions []string) error {
	if err := writef(w, "%d migrations applied\n", len(versions)); err != nil {
		return err
	}
	for _, v := range versions {
		if err := writef(w, "  %s\n", v); err != nil {
			return err
		}
	}
	return nil
}
