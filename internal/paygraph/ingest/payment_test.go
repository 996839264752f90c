package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/paygraph/internal/paygraph/event"
)

func TestParseLine(t *testing.T) {
	ev, err := ParseLine([]byte(`{"created_time": "2016-04-07T03:33:19Z", "target": "Jamie-Korn", "actor": "Jordan-Gruber"}`))
	require.NoError(t, err)
	assert.Equal(t, "Jordan-Gruber", ev.Actor)
	assert.Equal(t, "Jamie-Korn", ev.Target)
	assert.Equal(t, int64(1459999999), ev.Ts)
}

func TestParseLine_SelfPayment(t *testing.T) {
	ev, err := ParseLine([]byte(`{"created_time": "2016-04-07T03:35:00Z", "target": "Xu", "actor": "Xu"}`))
	require.NoError(t, err)
	assert.Equal(t, event.Payment{Actor: "Xu", Target: "Xu", Ts: 1460000100}, ev)
}

func TestParseLine_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"blank", "   ", ErrBlankLine},
		{"empty", "", ErrBlankLine},
		{"no actor", `{"created_time": "2016-04-07T03:33:19Z", "target": "b"}`, ErrMissingField},
		{"no target", `{"created_time": "2016-04-07T03:33:19Z", "actor": "a", "target": " "}`, ErrMissingField},
		{"no time", `{"target": "b", "actor": "a"}`, ErrMissingField},
		{"bad time", `{"created_time": "yesterday", "target": "b", "actor": "a"}`, ErrBadTimestamp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine([]byte(tt.line))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := ParseLine([]byte(`{"created_time": `))
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	a, err := ParseTime("2016-04-07T03:33:19Z")
	require.NoError(t, err)
	b, err := ParseTime("2016-04-07T03:33:19.900Z")
	require.NoError(t, err)
	assert.Equal(t, a, b, "fractions are truncated")
	c, err := ParseTime("2016-04-07T05:33:19+02:00")
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestEncodeLine_RoundTrip(t *testing.T) {
	in := event.Payment{Actor: "Alice", Target: "Bob", Ts: 1459999999}
	b, err := EncodeLine(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"created_time":"2016-04-07T03:33:19Z"`)
	out, err := ParseLine(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestScanLines(t *testing.T) {
	var got []string
	err := ScanLines(context.Background(), strings.NewReader("a\n\nb\nc"), func(line []byte) error {
		got = append(got, string(line))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b", "c"}, got)

	stop := errors.New("stop")
	n := 0
	err = ScanLines(context.Background(), strings.NewReader("a\nb\nc\n"), func([]byte) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ScanLines(ctx, strings.NewReader("a\n"), func([]byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
