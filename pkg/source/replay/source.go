package replay

import (
	"context"
	"io"
	"os"

	"github.com/golang/glog"
)

// FileSource replays a recording file through a Player.
type FileSource struct {
	*Player
	Path string
	// Loop restarts from the beginning at the end of file.
	Loop bool
}

// NewFileSource creates a FileSource playing at real time.
func NewFileSource(path string) *FileSource {
	return &FileSource{Player: &Player{Speed: 1}, Path: path}
}

// Name implements framework.Named.
func (s *FileSource) Name() string {
	return "replay:" + s.Path
}

// Run implements framework.Runnable.
func (s *FileSource) Run(ctx context.Context) error {
	for {
		if err := s.playOnce(ctx); err != nil {
			return err
		}
		if !s.Loop {
			glog.Infof("replay of %s completed", s.Path)
			<-ctx.Done()
			return ctx.Err()
		}
	}
}

func (s *FileSource) playOnce(ctx context.Context) error {
	var r io.ReadCloser = os.Stdin
	if s.Path != "-" {
		f, err := os.Open(s.Path)
		if err != nil {
			return err
		}
		r = f
	}
	defer r.Close()
	return s.PlayReader(ctx, r)
}
