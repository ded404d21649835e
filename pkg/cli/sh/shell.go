// Package sh provides an interactive shell on a local receiver.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ws8610/pkg/env"
	"github.com/robotalks/ws8610/pkg/msgs"
	"github.com/robotalks/ws8610/pkg/source/sim"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *env.Config
	Bench  *Bench
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&EnableCmd,
		&DisableCmd,
		&PendingCmd,
		&NextCmd,
		&StatsCmd,
		&SimCmd,
		&SendCmd,
		&ReplayCmd,
		&DecodeCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Bench:  NewBench(conf),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("ws8610 > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Print prints v as JSON or with the formatter.
func (s *Shell) Print(c *ishell.Context, v interface{}, format func() string) {
	if !s.OutputJSON {
		c.Println(format())
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.Bench.Enable(); err != nil {
		log.Fatalln(err)
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func argInt(c *ishell.Context, n, def int) (int, error) {
	if len(c.Args) <= n {
		return def, nil
	}
	v, err := strconv.Atoi(c.Args[n])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid count %q", c.Args[n])
	}
	return v, nil
}

var (
	// EnableCmd resets and enables the receiver.
	EnableCmd = ishell.Cmd{
		Name: "enable",
		Help: "reset and enable the receiver",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Bench.Enable(); err != nil {
				c.Err(err)
			}
		},
	}

	// DisableCmd disables the receiver.
	DisableCmd = ishell.Cmd{
		Name: "disable",
		Help: "stop receiving edges",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Bench.Receiver.Disable(); err != nil {
				c.Err(err)
			}
		},
	}

	// PendingCmd decodes captured packets and shows unread measures.
	PendingCmd = ishell.Cmd{
		Name:    "pending",
		Aliases: []string{"p"},
		Help:    "number of unread measures",
		Func: func(c *ishell.Context) {
			c.Println(ShellFrom(c).Bench.Receiver.PendingCount())
		},
	}

	// NextCmd dequeues measures.
	NextCmd = ishell.Cmd{
		Name:    "next",
		Aliases: []string{"n"},
		Help:    "[COUNT] dequeue measures",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			count, err := argInt(c, 0, 1)
			if err != nil {
				c.Err(err)
				return
			}
			measures := s.Bench.Take(count)
			if len(measures) == 0 && !s.OutputJSON {
				c.Println("No measures")
				return
			}
			for _, m := range measures {
				s.Print(c, msgs.NewMeasure(s.Config.Station, "", m), m.String)
			}
		},
	}

	// StatsCmd shows receiver counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "show receiver counters",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Bench.Receiver.Stats()
			s.Print(c, st, func() string { return fmt.Sprintf("%+v", st) })
		},
	}

	// SimCmd transmits simulated sensors.
	SimCmd = ishell.Cmd{
		Name: "sim",
		Help: "[ROUNDS] transmit all simulated sensors",
		Func: func(c *ishell.Context) {
			count, err := argInt(c, 0, 1)
			if err == nil {
				err = ShellFrom(c).Bench.Simulate(context.Background(), count)
			}
			if err != nil {
				c.Err(err)
			}
		},
	}

	// SendCmd transmits a single reading.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "ADDRESS temperature|humidity VALUE",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 3 {
				c.Err(fmt.Errorf("expect ADDRESS KIND VALUE"))
				return
			}
			addr, err := strconv.ParseUint(c.Args[0], 10, 7)
			if err != nil {
				c.Err(fmt.Errorf("invalid address %q", c.Args[0]))
				return
			}
			kind, err := msgs.ParseKind(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			value, err := strconv.ParseFloat(c.Args[2], 64)
			if err != nil {
				c.Err(err)
				return
			}
			sensor := sim.Sensor{Address: uint8(addr), Kind: kind, Value: value}
			if err := ShellFrom(c).Bench.Send(context.Background(), sensor); err != nil {
				c.Err(err)
			}
		},
	}

	// ReplayCmd plays recorded durations.
	ReplayCmd = ishell.Cmd{
		Name: "replay",
		Help: "FILE play recorded pulse durations",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect FILE"))
				return
			}
			f, err := os.Open(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			defer f.Close()
			if err := ShellFrom(c).Bench.Replay(context.Background(), f); err != nil {
				c.Err(err)
			}
		},
	}

	// DecodeCmd validates a frame in hex.
	DecodeCmd = ishell.Cmd{
		Name: "decode",
		Help: "HEX validate a 6-byte frame, e.g. 0A 0D 67 34 73 05",
		Func: func(c *ishell.Context) {
			f, err := DecodeHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(f.Measure(0))
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := env.NewConfig()
	if path := os.Getenv("WS8610_CONFIG"); path != "" {
		if err := conf.LoadFile(path); err != nil {
			log.Fatalln(err)
		}
	}
	New(conf).Run(flag.Args()...)
}
