package env

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/publish/stream"
	"github.com/robotalks/ws8610/pkg/source/replay"
	"github.com/robotalks/ws8610/pkg/source/serial"
	"github.com/robotalks/ws8610/pkg/source/sim"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

func TestParseSource(t *testing.T) {
	testCases := []struct {
		source string
		expect SourceSpec
		valid  bool
	}{
		{"sim", SourceSpec{Kind: "sim"}, true},
		{"gpio:GPIO17", SourceSpec{Kind: "gpio", Arg: "GPIO17"}, true},
		{"serial:/dev/ttyUSB0", SourceSpec{Kind: "serial", Arg: "/dev/ttyUSB0"}, true},
		{"serial:/dev/ttyUSB0@9600", SourceSpec{Kind: "serial", Arg: "/dev/ttyUSB0", Baud: 9600}, true},
		{"replay:rec.txt", SourceSpec{Kind: "replay", Arg: "rec.txt"}, true},
		{"replay:C:/rec.txt", SourceSpec{Kind: "replay", Arg: "C:/rec.txt"}, true},
		{"gpio", SourceSpec{}, false},
		{"serial:@9600", SourceSpec{}, false},
		{"serial:/dev/tty@fast", SourceSpec{}, false},
		{"radio:433", SourceSpec{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.source, func(t *testing.T) {
			spec, err := ParseSource(tc.source)
			if !tc.valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, spec)
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	conf := NewConfig()
	conf.Station = "before"
	path := writeFile(t, "ws8610.yaml", `
station: garden
mqtt: mqtt://broker:1883/weather/
timing:
  short: 500
  tolerance: 100
  sync_threshold: 6000
buffers:
  measures: 32
sim:
  interval: 5s
  noise_rate: 0.25
  sensors:
    - address: 12
      kind: humidity
      value: 61.5
    - address: 13
      kind: temp
      value: -4
`)
	require.NoError(t, conf.LoadFile(path))
	require.Equal(t, "garden", conf.Station)
	require.Equal(t, "sim", conf.Source)
	require.Equal(t, "mqtt://broker:1883/weather/", conf.MQTTBrokerURL)
	require.Equal(t, ws8610.Timing{Fixed: 1000, Short: 500, Long: 1350, Tolerance: 100}, conf.Receiver.Timing)
	require.Equal(t, uint32(6000), conf.Receiver.SyncThreshold)
	require.Equal(t, ws8610.DefaultPacketCapacity, conf.Receiver.PacketCapacity)
	require.Equal(t, 32, conf.Receiver.MeasureCapacity)
	require.Equal(t, 5*time.Second, conf.Sim.Interval)
	require.Equal(t, 0.25, conf.Sim.NoiseRate)
	require.Equal(t, []sim.Sensor{
		{Address: 12, Kind: ws8610.Humidity, Value: 61.5},
		{Address: 13, Kind: ws8610.Temperature, Value: -4},
	}, conf.Sim.Sensors)

	require.Len(t, Default().Sim.Sensors, 2)
}

func TestLoadFileErrors(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{"ambiguous timing", "t.yaml", "timing:\n  short: 1000\n  long: 1100\n"},
		{"unknown kind", "k.json", `{"sim": {"sensors": [{"address": 1, "kind": "wind"}]}}`},
		{"syntax", "s.yaml", "timing: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, NewConfig().LoadFile(writeFile(t, tc.file, tc.content)))
		})
	}
	require.Error(t, NewConfig().LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestNewSource(t *testing.T) {
	conf := NewConfig()
	conf.Source = "serial:/dev/ttyS0@9600"
	src, err := conf.NewSource()
	require.NoError(t, err)
	require.Equal(t, 9600, src.(*serial.Source).Config.Baud)

	conf.Source = "replay:-"
	src, err = conf.NewSource()
	require.NoError(t, err)
	require.Equal(t, "-", src.(*replay.FileSource).Path)

	conf.Source = "sim"
	conf.Sim.Jitter = 30
	src, err = conf.NewSource()
	require.NoError(t, err)
	require.Equal(t, uint32(30), src.(*sim.Simulator).Jitter)

	conf.Source = "bogus"
	_, err = conf.NewSource()
	require.Error(t, err)
}

func TestEnv(t *testing.T) {
	conf := NewConfig()
	conf.Station = "test"
	conf.Sim.Speed = 100
	conf.Sim.Sensors = conf.Sim.Sensors[:1]
	conf.Sim.Sensors[0].Drift = 0
	conf.PollInterval = 10 * time.Millisecond
	conf.StreamOut = filepath.Join(t.TempDir(), "measures.bin")
	env, err := conf.NewEnv()
	require.NoError(t, err)
	require.Len(t, env.Publishers, 1)
	require.Equal(t, "test", env.Info.Station)

	loop := fx.NewLoop().Add(env)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, loop.Run(ctx))
	require.NoError(t, env.Close())

	f, err := os.Open(conf.StreamOut)
	require.NoError(t, err)
	defer f.Close()
	m, err := stream.NewReader(f).ReadMeasure()
	require.NoError(t, err)
	require.Equal(t, "test", m.Station)
	require.Equal(t, uint32(107), m.Address)
	require.InDelta(t, 21.5, m.Value, 1e-9)
}

func TestNewEnvErrors(t *testing.T) {
	conf := NewConfig()
	conf.Station = ""
	_, err := conf.NewEnv()
	require.Error(t, err)

	conf = NewConfig()
	conf.Source = "gpio:"
	_, err = conf.NewEnv()
	require.Error(t, err)
}

var errDetach = errors.New("detach failed")

type stuckSource struct {
	*replay.FileSource
}

func (s stuckSource) Detach() error {
	return errDetach
}

func TestEnvCloseReportsDisable(t *testing.T) {
	src := stuckSource{FileSource: replay.NewFileSource("-")}
	f, err := os.Create(filepath.Join(t.TempDir(), "measures.bin"))
	require.NoError(t, err)
	e := &Env{
		Config:   NewConfig(),
		Source:   src,
		Receiver: ws8610.NewReceiver(src, src, ws8610.DefaultConfig()),
		closers:  []io.Closer{f},
	}
	require.NoError(t, e.Receiver.Enable())
	require.ErrorIs(t, e.Close(), errDetach)
	// files are closed regardless.
	require.Error(t, f.Close())
}
