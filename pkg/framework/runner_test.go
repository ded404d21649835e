package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errRunner = errors.New("runner failed")

func TestRunner(t *testing.T) {
	testCases := []struct {
		name    string
		runners []Runnable
		expect  []string
	}{
		{"no error", []Runnable{
			RunFunc(func(context.Context) error { return nil }),
		}, nil},
		{"canceled", []Runnable{
			RunFunc(func(context.Context) error { return context.Canceled }),
		}, nil},
		{"errors", []Runnable{
			NamedRun("a", RunFunc(func(context.Context) error { return errRunner })),
			RunFunc(func(context.Context) error { return nil }),
			RunFunc(func(context.Context) error { return errRunner }),
		}, []string{"a", "2"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewRunner().Go(tc.runners...).Wait()
			if tc.expect == nil {
				require.NoError(t, err)
				return
			}
			var agg *AggregatedError
			require.ErrorAs(t, err, &agg)
			var names []string
			for _, e := range agg.Errors {
				var runErr *RunError
				require.ErrorAs(t, e, &runErr)
				names = append(names, runErr.Name)
			}
			require.ElementsMatch(t, tc.expect, names)
			require.ErrorIs(t, err, errRunner)
		})
	}
}

func TestRunnerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

func TestRunnerFailFast(t *testing.T) {
	r := NewRunner()
	r.FailFast = true
	r.Go(
		NamedRun("source", RunFunc(func(context.Context) error { return errRunner })),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	err := r.Wait()
	require.ErrorIs(t, err, errRunner)
	require.Equal(t, "source: runner failed", err.Error())
}

type testCloser struct {
	closed int
	ch     chan struct{}
}

func (c *testCloser) Close() error {
	c.closed++
	close(c.ch)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &testCloser{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.ch
		return errRunner
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, c.closed)

	c = &testCloser{ch: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), c, func() error { return errRunner })
	require.Equal(t, errRunner, err)
	require.Equal(t, 1, c.closed)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	errs.Add(errors.New("a"))
	require.Equal(t, "a", errs.Aggregate().Error())
	errs.Add(errors.New("b"))
	require.Equal(t, "Multiple errors:\na\nb", errs.Error())
}
