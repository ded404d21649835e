// Package stream records measures as length-prefixed protobuf frames.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/msgs"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// MaxFrameSize limits the size of a single frame.
const MaxFrameSize = 4096

// ErrFrameTooLarge indicates a corrupted or foreign stream.
var ErrFrameTooLarge = errors.New("frame too large")

// Each frame is prefixed by 4-byte (little-endian) length.

// Writer writes measures to an io.Writer.
type Writer struct {
	Station string
	BootID  string

	w    io.Writer
	lock sync.Mutex
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer, info *msgs.StationInfo) *Writer {
	return &Writer{Station: info.Station, BootID: info.BootID, w: w}
}

// AddToLoop implements LoopAdder.
func (w *Writer) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPublish, w)
}

// Control implements Controller.
func (w *Writer) Control(cc fx.ControlContext) error {
	for _, m := range fx.Measures(cc.Messages()) {
		if err := w.WriteMeasure(m); err != nil {
			return err
		}
	}
	return nil
}

// WriteMeasure writes one frame.
func (w *Writer) WriteMeasure(m ws8610.Measure) error {
	data, err := msgs.Encode(msgs.NewMeasure(w.Station, w.BootID, m))
	if err != nil {
		return err
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	return writeFrame(w.w, data)
}

func writeFrame(w io.Writer, data []byte) error {
	buf := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)
	_, err := w.Write(buf)
	return err
}

// Reader reads measures written by Writer.
type Reader struct {
	r io.Reader
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadMeasure reads the next frame, io.EOF at the end of stream.
func (r *Reader) ReadMeasure() (*msgs.Measure, error) {
	var size uint32
	if err := binary.Read(r.r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r.r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	var m msgs.Measure
	if err := msgs.Decode(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
