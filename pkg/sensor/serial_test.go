package sensor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    RawSample
		wantErr bool
	}{
		{
			name: "valid line - light",
			line: "1234567890123,312,0",
			want: RawSample{Timestamp: time.UnixMicro(1234567890123), Value: 312},
		},
		{
			name: "valid line - digital dark",
			line: "1234567890123,2048,1",
			want: RawSample{Timestamp: time.UnixMicro(1234567890123), Value: 2048, Dark: true},
		},
		{
			name: "valid line - full scale",
			line: "1,4095,0",
			want: RawSample{Timestamp: time.UnixMicro(1), Value: 4095},
		},
		{name: "invalid - wrong number of fields", line: "1234567890123,2048", wantErr: true},
		{name: "invalid - too many fields", line: "1234567890123,2048,1,extra", wantErr: true},
		{name: "invalid - non-numeric timestamp", line: "abc,2048,1", wantErr: true},
		{name: "invalid - non-numeric value", line: "1234567890123,abc,1", wantErr: true},
		{name: "invalid - value out of range", line: "1234567890123,5000,0", wantErr: true},
		{name: "invalid - negative value", line: "1234567890123,-1,0", wantErr: true},
		{name: "invalid - digital state", line: "1234567890123,2048,2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Timestamp.UnixMicro(), got.Timestamp.UnixMicro())
			assert.Equal(t, tt.want.Value, got.Value)
			assert.Equal(t, tt.want.Dark, got.Dark)
		})
	}
}

func TestNewSerial(t *testing.T) {
	dev := NewSerial("/dev/ttyACM0", 115200, 100, nil)
	assert.NotNil(t, dev)
	assert.Equal(t, "/dev/ttyACM0", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 100, cap(dev.samples))
	assert.False(t, dev.IsConnected())
}

func TestNewSerial_Defaults(t *testing.T) {
	dev := NewSerial("/dev/ttyACM0", 0, 0, nil)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_CloseWhenNotConnected(t *testing.T) {
	dev := NewSerial("/dev/ttyACM0", 0, 0, nil)
	assert.NoError(t, dev.Close())
}

func TestSerial_ReadLines(t *testing.T) {
	dev := NewSerial("test", 0, 10, nil)

	input := strings.Join([]string{
		"100,300,0",
		"",
		"garbage",
		"150,3000,1",
		"200,9999,0",
		"250,310,0",
	}, "\r\n")
	require.NoError(t, dev.readLines(strings.NewReader(input)))

	var got []RawSample
	for len(dev.samples) > 0 {
		got = append(got, <-dev.samples)
	}
	require.Len(t, got, 3)
	assert.Equal(t, uint16(300), got[0].Value)
	assert.True(t, got[1].Dark)
	assert.Equal(t, int64(250), got[2].Timestamp.UnixMicro())
}

func TestSerial_ReadLinesDropsWhenFull(t *testing.T) {
	dev := NewSerial("test", 0, 2, nil)

	var b strings.Builder
	for i := range 5 {
		b.WriteString("1,")
		b.WriteString(string(rune('0' + i)))
		b.WriteString(",0\n")
	}
	require.NoError(t, dev.readLines(strings.NewReader(b.String())))

	assert.Len(t, dev.samples, 2)
	assert.Equal(t, 3, dev.dropped)
	assert.Equal(t, uint16(0), (<-dev.samples).Value, "oldest samples kept")
}

func TestSerial_ReadLinesStopsAfterCancel(t *testing.T) {
	dev := NewSerial("test", 0, 10, nil)
	dev.cancel()

	require.NoError(t, dev.readLines(strings.NewReader("1,1,0\n2,2,0\n")))
	assert.Empty(t, dev.samples)
}
