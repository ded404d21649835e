package serial

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ws8610/pkg/source/replay"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

func TestConsume(t *testing.T) {
	f, err := ws8610.NewFrame(42, ws8610.Temperature, 18, 7)
	require.NoError(t, err)
	w := ws8610.DefaultTiming.EncodeFrame(f)
	durations := append([]uint32{30000}, w[:ws8610.WindowSize-1]...)
	durations = append(durations, 30000)
	var sb strings.Builder
	require.NoError(t, replay.WriteDurations(&sb, durations))

	s := New("/dev/null", 0)
	require.Equal(t, DefaultBaud, s.Config.Baud)
	r := ws8610.NewReceiver(s, s, ws8610.DefaultConfig())
	require.NoError(t, r.Enable())
	require.Equal(t, io.EOF, s.Consume(strings.NewReader(sb.String())))

	m, ok := r.NextMeasure()
	require.True(t, ok)
	require.Equal(t, uint8(42), m.SensorAddress)
	require.Equal(t, 18, m.Units)
	require.Equal(t, uint8(7), m.Decimals)

	require.Error(t, s.Consume(strings.NewReader("garbage\n")))
}

func TestRunOpenError(t *testing.T) {
	s := New("/dev/does-not-exist-ws8610", 9600)
	require.Error(t, s.Run(context.Background()))
}
