// Package env assembles a station from configuration.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/robotalks/ws8610/pkg/source/sim"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Config provides the options of a station.
type Config struct {
	// Station identifies the station in published topics.
	Station string
	// Source specifies where edges come from:
	//   sim, gpio:NAME, serial:PORT[@BAUD], replay:FILE
	Source string

	// MQTTBrokerURL enables MQTT publishing, e.g. mqtt://host:port/prefix/
	MQTTBrokerURL string
	// HTTPAddr enables the HTTP/websocket server.
	HTTPAddr string
	// StreamOut records measures to the file, - for stdout.
	StreamOut string
	// Print prints measures to stdout.
	Print bool

	PollInterval  time.Duration
	StatsInterval time.Duration

	Receiver ws8610.Config
	Sim      SimConfig
}

// SimConfig configures the simulated source.
type SimConfig struct {
	Sensors   []sim.Sensor
	Speed     float64
	Interval  time.Duration
	Jitter    uint32
	NoiseRate float64
}

var defaultConfig = Config{
	Source:        "sim",
	PollInterval:  100 * time.Millisecond,
	StatsInterval: time.Minute,
	Receiver:      ws8610.DefaultConfig(),
	Sim: SimConfig{
		Sensors: []sim.Sensor{
			{Address: 107, Kind: ws8610.Temperature, Value: 21.5, Drift: 0.2},
			{Address: 107, Kind: ws8610.Humidity, Value: 45, Drift: 0.5},
		},
		Speed:    1,
		Interval: sim.DefaultInterval,
	},
}

func init() {
	if val := os.Getenv("WS8610_STATION"); val != "" {
		defaultConfig.Station = val
	} else {
		defaultConfig.Station = MachineStation()
	}
	if val := os.Getenv("WS8610_SOURCE"); val != "" {
		defaultConfig.Source = val
	}
	if val := os.Getenv("WS8610_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("WS8610_HTTP_ADDR"); val != "" {
		defaultConfig.HTTPAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Station, "station", defaultConfig.Station, "Station ID")
	flag.StringVar(&defaultConfig.Source, "source", defaultConfig.Source, "Edge source: sim, gpio:NAME, serial:PORT[@BAUD], replay:FILE")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "HTTP listen address")
	flag.StringVar(&defaultConfig.StreamOut, "record", defaultConfig.StreamOut, "Record measures to file, - for stdout")
	flag.BoolVar(&defaultConfig.Print, "print", defaultConfig.Print, "Print measures")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Receiver polling interval")
	flag.DurationVar(&defaultConfig.StatsInterval, "stats", defaultConfig.StatsInterval, "Statistics interval, 0 to disable")
	flag.Float64Var(&defaultConfig.Sim.Speed, "sim-speed", defaultConfig.Sim.Speed, "Simulation speed, 0 for as fast as possible")
	flag.Float64Var(&defaultConfig.Sim.NoiseRate, "sim-noise", defaultConfig.Sim.NoiseRate, "Probability of noise before simulated transmissions")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Sim.Sensors = append([]sim.Sensor(nil), defaultConfig.Sim.Sensors...)
	return &conf
}

// fileConfig is the layout of a config file.
type fileConfig struct {
	Station string `mapstructure:"station"`
	Source  string `mapstructure:"source"`
	MQTT    string `mapstructure:"mqtt"`
	HTTP    string `mapstructure:"http"`

	Timing struct {
		Fixed         uint32 `mapstructure:"fixed"`
		Short         uint32 `mapstructure:"short"`
		Long          uint32 `mapstructure:"long"`
		Tolerance     uint32 `mapstructure:"tolerance"`
		SyncThreshold uint32 `mapstructure:"sync_threshold"`
	} `mapstructure:"timing"`
	Buffers struct {
		Packets  int `mapstructure:"packets"`
		Measures int `mapstructure:"measures"`
	} `mapstructure:"buffers"`
	Sim struct {
		Speed     float64       `mapstructure:"speed"`
		Interval  time.Duration `mapstructure:"interval"`
		Jitter    uint32        `mapstructure:"jitter"`
		NoiseRate float64       `mapstructure:"noise_rate"`
		Sensors   []struct {
			Address uint8   `mapstructure:"address"`
			Kind    string  `mapstructure:"kind"`
			Value   float64 `mapstructure:"value"`
			Drift   float64 `mapstructure:"drift"`
		} `mapstructure:"sensors"`
	} `mapstructure:"sim"`
}

// LoadFile overrides the config with a YAML, JSON or TOML file.
// Only the keys present in the file are applied.
func (c *Config) LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %v", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("parse config %s: %v", path, err)
	}

	setString(v, "station", &c.Station, fc.Station)
	setString(v, "source", &c.Source, fc.Source)
	setString(v, "mqtt", &c.MQTTBrokerURL, fc.MQTT)
	setString(v, "http", &c.HTTPAddr, fc.HTTP)

	setUint32(v, "timing.fixed", &c.Receiver.Timing.Fixed, fc.Timing.Fixed)
	setUint32(v, "timing.short", &c.Receiver.Timing.Short, fc.Timing.Short)
	setUint32(v, "timing.long", &c.Receiver.Timing.Long, fc.Timing.Long)
	setUint32(v, "timing.tolerance", &c.Receiver.Timing.Tolerance, fc.Timing.Tolerance)
	setUint32(v, "timing.sync_threshold", &c.Receiver.SyncThreshold, fc.Timing.SyncThreshold)
	if !c.Receiver.Timing.IsValid() {
		return fmt.Errorf("config %s: ambiguous timing %+v", path, c.Receiver.Timing)
	}
	if v.IsSet("buffers.packets") {
		c.Receiver.PacketCapacity = fc.Buffers.Packets
	}
	if v.IsSet("buffers.measures") {
		c.Receiver.MeasureCapacity = fc.Buffers.Measures
	}

	if v.IsSet("sim.speed") {
		c.Sim.Speed = fc.Sim.Speed
	}
	if v.IsSet("sim.interval") {
		c.Sim.Interval = fc.Sim.Interval
	}
	setUint32(v, "sim.jitter", &c.Sim.Jitter, fc.Sim.Jitter)
	if v.IsSet("sim.noise_rate") {
		c.Sim.NoiseRate = fc.Sim.NoiseRate
	}
	if v.IsSet("sim.sensors") {
		c.Sim.Sensors = nil
		for n, s := range fc.Sim.Sensors {
			kind, err := parseKind(s.Kind)
			if err != nil {
				return fmt.Errorf("config %s: sim sensor %d: %v", path, n, err)
			}
			c.Sim.Sensors = append(c.Sim.Sensors, sim.Sensor{Address: s.Address, Kind: kind, Value: s.Value, Drift: s.Drift})
		}
	}
	return nil
}

func setString(v *viper.Viper, key string, dst *string, val string) {
	if v.IsSet(key) {
		*dst = val
	}
}

func setUint32(v *viper.Viper, key string, dst *uint32, val uint32) {
	if v.IsSet(key) {
		*dst = val
	}
}

func parseKind(name string) (ws8610.Kind, error) {
	switch strings.ToLower(name) {
	case "temperature", "temp", "t":
		return ws8610.Temperature, nil
	case "humidity", "hum", "h":
		return ws8610.Humidity, nil
	}
	return 0, fmt.Errorf("unknown kind %q", name)
}

// SourceSpec is a parsed Source option.
type SourceSpec struct {
	Kind string
	Arg  string
	Baud int
}

// ParseSource parses a Source option.
func ParseSource(source string) (spec SourceSpec, err error) {
	spec.Kind = source
	if pos := strings.IndexByte(source, ':'); pos >= 0 {
		spec.Kind, spec.Arg = source[:pos], source[pos+1:]
	}
	switch spec.Kind {
	case "sim":
	case "gpio", "replay":
		if spec.Arg == "" {
			return spec, fmt.Errorf("source %s requires an argument", spec.Kind)
		}
	case "serial":
		if pos := strings.LastIndexByte(spec.Arg, '@'); pos >= 0 {
			if spec.Baud, err = strconv.Atoi(spec.Arg[pos+1:]); err != nil || spec.Baud <= 0 {
				return spec, fmt.Errorf("invalid baud rate in %q", source)
			}
			spec.Arg = spec.Arg[:pos]
		}
		if spec.Arg == "" {
			return spec, fmt.Errorf("source serial requires a port")
		}
	default:
		return spec, fmt.Errorf("unknown source %q", source)
	}
	return spec, nil
}
