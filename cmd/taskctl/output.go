package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/VeraLinno/Task-management-utility/internal/model"
	"gopkg.in/yaml.v3"
)

type formatter interface {
	// render writes v; text is used by the human-readable format only.
	render(w io.Writer, v any, text func(io.Writer) error) error
}

func newFormatter(name string) (formatter, error) {
	switch name {
	case "", "text":
		return textFormatter{}, nil
	case "json":
		return jsonFormatter{}, nil
	case "yaml":
		return yamlFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
	}
}

type textFormatter struct{}

func (textFormatter) render(w io.Writer, _ any, text func(io.Writer) error) error {
	return text(w)
}

type jsonFormatter struct{}

func (jsonFormatter) render(w io.Writer, v any, _ func(io.Writer) error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type yamlFormatter struct{}

// render goes through JSON first so YAML keys and timestamps match the
// stored document.
func (yamlFormatter) render(w io.Writer, v any, _ func(io.Writer) error) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func writeTaskTable(w io.Writer, tasks []model.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE\tTAGS")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status, t.Priority, formatDue(t.DueDate), t.Title, strings.Join(t.Tags, ","))
	}
	return tw.Flush()
}

func writeTaskDetail(w io.Writer, t model.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Due:\t%s\n", formatDue(t.DueDate))
	if len(t.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(t.Tags, ", "))
	}
	if t.Recurrence != nil {
		fmt.Fprintf(tw, "Repeats:\t%s\n", describeRecurrence(*t.Recurrence))
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(tw, "Depends on:\t%s\n", strings.Join(t.Dependencies, ", "))
	}
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Updated:\t%s\n", t.UpdatedAt.Format(time.RFC3339))
	return tw.Flush()
}

func writeStatistics(w io.Writer, s model.Statistics) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Todo:\t%d\n", s.ByStatus[model.StatusTodo])
	fmt.Fprintf(tw, "In progress:\t%d\n", s.InProgressCount)
	fmt.Fprintf(tw, "Done:\t%d\n", s.CompletedCount)
	fmt.Fprintf(tw, "Overdue:\t%d\n", s.Overdue)
	fmt.Fprintf(tw, "Completion:\t%d%%\n", s.CompletionRate)
	fmt.Fprintf(tw, "High/Medium/Low:\t%d/%d/%d\n",
		s.ByPriority[model.PriorityHigh], s.ByPriority[model.PriorityMedium], s.ByPriority[model.PriorityLow])
	return tw.Flush()
}

func writeUpcoming(w io.Writer, items []model.UpcomingOccurrence) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no upcoming recurring tasks")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tREPEATS\tNEXT\tIN DAYS")
	for _, item := range items {
		repeats := ""
		if item.Task.Recurrence != nil {
			repeats = describeRecurrence(*item.Task.Recurrence)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			item.Task.ID, item.Task.Title, repeats, formatDue(item.NextOccurrence), item.DaysUntilNext)
	}
	return tw.Flush()
}

func writeCompletionCheck(w io.Writer, id string, c model.CompletionCheck) error {
	if c.CanComplete {
		_, err := fmt.Fprintf(w, "%s can be completed\n", id)
		return err
	}
	_, err := fmt.Fprintf(w, "%s is blocked by: %s\n", id, strings.Join(c.BlockedBy, ", "))
	return err
}

func describeRecurrence(r model.Recurrence) string {
	s := string(r.Frequency)
	if r.Frequency == model.FrequencyCustom {
		s = fmt.Sprintf("every %d days", r.DaysInterval)
	}
	if r.EndDate != "" {
		s += " until " + r.EndDate
	}
	return s
}

// formatDue drops the clock when the timestamp is a UTC midnight, the shape
// date-only input is stored in.
func formatDue(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
