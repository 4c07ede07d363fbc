package barcode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gobarscan/pkg/decoder"
)

func runSignals(t *testing.T, signals ...decoder.Signal) (*Assembler, []Decode) {
	t.Helper()

	ch := make(chan decoder.Signal, len(signals))
	for _, s := range signals {
		ch <- s
	}
	close(ch)

	a := NewAssembler(ch, nil)
	var got []Decode
	a.OnDecode(func(d Decode) { got = append(got, d) })

	require.NoError(t, a.Run(context.Background()))
	return a, got
}

func chars(s string) []decoder.Signal {
	out := make([]decoder.Signal, 0, len(s))
	for _, c := range s {
		if c == '!' {
			out = append(out, decoder.Signal{Expired: true})
			continue
		}
		out = append(out, decoder.Signal{Char: c})
	}
	return out
}

func TestAssembler_Frame(t *testing.T) {
	a, got := runSignals(t, chars("*A*")...)

	require.Len(t, got, 1)
	assert.Equal(t, 'A', got[0].Payload)
	assert.Equal(t, "A", got[0].Text)
	assert.Equal(t, "*A*", got[0].Frame)
	assert.NotEmpty(t, got[0].ID)

	c, ok := a.LastDecoded()
	assert.True(t, ok)
	assert.Equal(t, 'A', c)

	last, ok := a.Last()
	assert.True(t, ok)
	assert.Equal(t, got[0], last)
	assert.Equal(t, uint64(1), a.Frames())
}

func TestAssembler_Sequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty frame", "**", ""},
		{"double sentinel payload", "***", ""},
		{"two frames", "*A**B*", "AB"},
		{"leading noise", "QZ*C*", "C"},
		{"multi-char payload unsupported", "*AB*", ""},
		{"window cleared after frame", "*A*B*", "A"},
		{"expiry clears window", "*A!*", ""},
		{"expiry between frames", "*A*!*B*", "AB"},
		{"nothing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := runSignals(t, chars(tt.input)...)
			var payload []rune
			for _, d := range got {
				payload = append(payload, d.Payload)
			}
			assert.Equal(t, tt.want, string(payload))
		})
	}
}

func TestAssembler_NoDecode(t *testing.T) {
	a, _ := runSignals(t)
	_, ok := a.LastDecoded()
	assert.False(t, ok)
	_, ok = a.Last()
	assert.False(t, ok)
}

func TestAssembler_UniqueIDs(t *testing.T) {
	_, got := runSignals(t, chars("*A**A*")...)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestAssembler_RunStopsOnContext(t *testing.T) {
	ch := make(chan decoder.Signal)
	a := NewAssembler(ch, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAssembler_ConcurrentReaders(t *testing.T) {
	ch := make(chan decoder.Signal)
	a := NewAssembler(ch, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				a.LastDecoded()
				a.Last()
			}
		}
	}()

	for _, s := range chars("*A**B*") {
		ch <- s
	}
	close(stop)

	assert.Eventually(t, func() bool {
		c, ok := a.LastDecoded()
		return ok && c == 'B'
	}, time.Second, time.Millisecond)
}
