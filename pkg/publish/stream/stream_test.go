package stream

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/msgs"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

func TestWriterReader(t *testing.T) {
	measures := []ws8610.Measure{
		{Timestamp: 1, SensorAddress: 107, Kind: ws8610.Temperature, Units: 23, Decimals: 4},
		{Timestamp: 2, SensorAddress: 107, Kind: ws8610.Humidity, Units: 56},
		{Timestamp: 3, SensorAddress: 5, Kind: ws8610.Temperature, Units: -45, Decimals: 2},
	}
	var buf bytes.Buffer
	info := msgs.NewStationInfo("home", "", 0, ws8610.DefaultTiming)
	w := NewWriter(&buf, info)
	l := fx.NewLoop().Add(w)
	for _, m := range measures {
		l.PostMessage(fx.MeasureMessage{Measure: m})
	}
	l.RunIteration(context.Background())

	r := NewReader(&buf)
	for _, expect := range measures {
		m, err := r.ReadMeasure()
		require.NoError(t, err)
		require.Equal(t, info.BootID, m.BootID)
		decoded, err := m.ToMeasure()
		require.NoError(t, err)
		require.Equal(t, expect, decoded)
	}
	_, err := r.ReadMeasure()
	require.Equal(t, io.EOF, err)
}

func TestReaderErrors(t *testing.T) {
	testCases := []struct {
		name   string
		data   []byte
		expect error
	}{
		{"truncated size", []byte{1, 0}, io.ErrUnexpectedEOF},
		{"truncated frame", []byte{4, 0, 0, 0, 1}, io.ErrUnexpectedEOF},
		{"too large", []byte{0, 0, 1, 0}, ErrFrameTooLarge},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tc.data)).ReadMeasure()
			require.ErrorIs(t, err, tc.expect)
		})
	}
}
