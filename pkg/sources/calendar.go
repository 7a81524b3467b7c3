package sources

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Event is one calendar entry delivered to the calendar widget.
type Event struct {
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	AllDay  bool      `json:"allDay"`
}

// CalendarSource reads events from an iCalendar file on disk, typically a
// family calendar exported or synced by an external tool. It implements
// Source.
type CalendarSource struct {
	path     string
	interval time.Duration
	now      func() time.Time
}

// NewCalendarSource builds a calendar source reading from the given .ics
// path.
func NewCalendarSource(path string, interval time.Duration) *CalendarSource {
	return &CalendarSource{path: path, interval: interval, now: time.Now}
}

func (c *CalendarSource) Name() string            { return "calendar" }
func (c *CalendarSource) Interval() time.Duration { return c.interval }

// Fetch parses the ICS file and returns upcoming events within the next
// 60 days, sorted by start time. Past events are dropped.
func (c *CalendarSource) Fetch(ctx context.Context) (interface{}, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("calendar: open %s: %w", c.path, err)
	}
	defer f.Close()

	events, err := parseICS(f)
	if err != nil {
		return nil, err
	}

	now := c.now()
	horizon := now.Add(60 * 24 * time.Hour)
	upcoming := events[:0]
	for _, ev := range events {
		end := ev.End
		if end.IsZero() {
			end = ev.Start.Add(24 * time.Hour)
		}
		if end.Before(now) || ev.Start.After(horizon) {
			continue
		}
		upcoming = append(upcoming, ev)
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Start.Before(upcoming[j].Start) })
	return upcoming, nil
}

// parseICS extracts VEVENT blocks from an iCalendar stream. Only SUMMARY,
// DTSTART, and DTEND are read; everything else is skipped. Folded lines
// (continuation lines starting with whitespace) are unfolded first.
func parseICS(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("calendar: read ics: %w", err)
	}

	var events []Event
	var cur *Event
	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			cur = &Event{}
		case line == "END:VEVENT":
			if cur != nil && !cur.Start.IsZero() {
				events = append(events, *cur)
			}
			cur = nil
		case cur == nil:
			continue
		default:
			name, params, value := splitICSLine(line)
			switch name {
			case "SUMMARY":
				cur.Summary = unescapeICS(value)
			case "DTSTART":
				t, allDay, err := parseICSTime(value, params)
				if err == nil {
					cur.Start = t
					cur.AllDay = allDay
				}
			case "DTEND":
				t, _, err := parseICSTime(value, params)
				if err == nil {
					cur.End = t
				}
			}
		}
	}
	return events, nil
}

// splitICSLine splits "NAME;PARAM=V:value" into name, params, value.
func splitICSLine(line string) (name, params, value string) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return line, "", ""
	}
	head, value := line[:colon], line[colon+1:]
	if semi := strings.Index(head, ";"); semi >= 0 {
		return head[:semi], head[semi+1:], value
	}
	return head, "", value
}

func parseICSTime(value, params string) (time.Time, bool, error) {
	if strings.Contains(params, "VALUE=DATE") || len(value) == 8 {
		t, err := time.ParseInLocation("20060102", value, time.Local)
		return t, true, err
	}
	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse("20060102T150405Z", value)
		return t, false, err
	}
	t, err := time.ParseInLocation("20060102T150405", value, time.Local)
	return t, false, err
}

func unescapeICS(s string) string {
	replacer := strings.NewReplacer(`\n`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return replacer.Replace(s)
}
