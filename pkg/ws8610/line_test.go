package ws8610

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLineFire(t *testing.T) {
	var l Line
	l.Fire()
	require.False(t, l.Attached())

	fired := 0
	require.NoError(t, l.Attach(func() { fired++ }))
	require.True(t, l.Attached())
	l.Fire()
	l.Fire()
	require.Equal(t, 2, fired)

	require.NoError(t, l.Detach())
	l.Fire()
	require.Equal(t, 2, fired)
	require.False(t, l.Attached())
}

func TestLineDetachWaitsForHandler(t *testing.T) {
	var l Line
	entered, release := make(chan struct{}), make(chan struct{})
	require.NoError(t, l.Attach(func() {
		close(entered)
		<-release
	}))
	go l.Fire()
	<-entered

	detached := make(chan struct{})
	go func() {
		l.Detach()
		close(detached)
	}()
	select {
	case <-detached:
		require.FailNow(t, "detached while the handler is running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-detached:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "detach not completed")
	}
	require.False(t, l.Attached())
}

func TestReceiverEnableWithRunningProducer(t *testing.T) {
	line := &Line{}
	clock := &testLine{}
	r := NewReceiver(line, clock, DefaultConfig())
	require.NoError(t, r.Enable())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := 0; n < 20000; n++ {
			clock.us += 1000
			line.Fire()
		}
	}()
	for n := 0; n < 20; n++ {
		require.NoError(t, r.Enable())
	}
	<-done
	require.NoError(t, r.Disable())
	require.False(t, line.Attached())
}
