// Package ingest turns raw payment records into event.Payment values.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/chenzhangda16/paygraph/internal/paygraph/event"
)

// TimeLayout is the created_time encoding of the payment feed.
const TimeLayout = "2006-01-02T15:04:05Z"

var (
	ErrBlankLine    = errors.New("blank line")
	ErrMissingField = errors.New("missing field")
	ErrBadTimestamp = errors.New("bad created_time")
)

type record struct {
	CreatedTime string `json:"created_time"`
	Target      string `json:"target"`
	Actor       string `json:"actor"`
}

// ParseLine decodes one JSON payment record. A payment to oneself is a valid
// record; it becomes a self-loop edge.
// Blank lines return ErrBlankLine so callers can skip them silently.
func ParseLine(line []byte) (event.Payment, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return event.Payment{}, ErrBlankLine
	}
	var r record
	if err := json.Unmarshal(line, &r); err != nil {
		return event.Payment{}, fmt.Errorf("ingest: decode payment: %w", err)
	}
	switch {
	case strings.TrimSpace(r.Actor) == "":
		return event.Payment{}, fmt.Errorf("%w: actor", ErrMissingField)
	case strings.TrimSpace(r.Target) == "":
		return event.Payment{}, fmt.Errorf("%w: target", ErrMissingField)
	case strings.TrimSpace(r.CreatedTime) == "":
		return event.Payment{}, fmt.Errorf("%w: created_time", ErrMissingField)
	}
	ts, err := ParseTime(r.CreatedTime)
	if err != nil {
		return event.Payment{}, err
	}
	return event.Payment{Actor: r.Actor, Target: r.Target, Ts: ts}, nil
}

// ParseTime parses the feed encoding, falling back to RFC 3339 (with
// fractions and offsets). The result is truncated to whole Unix seconds.
func ParseTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
		}
	}
	return t.Unix(), nil
}

// EncodeLine is the inverse of ParseLine; used by the generator.
func EncodeLine(p event.Payment) ([]byte, error) {
	return json.Marshal(record{
		CreatedTime: time.Unix(p.Ts, 0).UTC().Format(TimeLayout),
		Target:      p.Target,
		Actor:       p.Actor,
	})
}
