package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopIteration(t *testing.T) {
	var seen [][]Message
	var levels []int
	l := NewLoop()
	l.AddController(PrLvPublish, ControlFunc(func(cc ControlContext) error {
		levels = append(levels, cc.PriorityLevel())
		seen = append(seen, append([]Message(nil), cc.Messages()...))
		return nil
	}))
	l.AddController(PrLvDecode, ControlFunc(func(cc ControlContext) error {
		levels = append(levels, cc.PriorityLevel())
		cc.Post("decoded")
		return nil
	}))
	l.AddController(PrLvReport, ControlFunc(func(cc ControlContext) error {
		levels = append(levels, cc.PriorityLevel())
		return errors.New("ignored")
	}))

	l.PostMessage("pending")
	l.RunIteration(context.Background())
	require.Equal(t, []int{PrLvDecode, PrLvPublish, PrLvReport}, levels)
	require.Equal(t, [][]Message{{"pending", "decoded"}}, seen)

	l.RunIteration(context.Background())
	require.Equal(t, []Message{"decoded"}, seen[1])
}

type countingController struct {
	iterations chan struct{}
	started    chan struct{}
}

func (c *countingController) Control(ControlContext) error {
	select {
	case c.iterations <- struct{}{}:
	default:
	}
	return nil
}

func (c *countingController) Run(ctx context.Context) error {
	close(c.started)
	LoopCtlFrom(ctx).TriggerNext()
	<-ctx.Done()
	return ctx.Err()
}

func TestLoopRun(t *testing.T) {
	ctl := &countingController{iterations: make(chan struct{}, 1), started: make(chan struct{})}
	l := NewLoop()
	l.Interval = time.Hour
	l.AddController(PrLvNormal, ctl)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	<-ctl.started
	select {
	case <-ctl.iterations:
	case <-time.After(5 * time.Second):
		require.Fail(t, "iteration not triggered")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestLoopRunnerFailure(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	l.AddRunnable(NamedRun("source", RunFunc(func(context.Context) error { return errRunner })))
	err := l.Run(context.Background())
	require.ErrorIs(t, err, errRunner)
}
