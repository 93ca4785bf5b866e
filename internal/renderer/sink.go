package renderer

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/vhstape/internal/system"
)

// FramePattern names frame files; the encoder reads the same pattern
const FramePattern = "frame_%06d.png"

// FrameSink receives rendered frames in order and takes ownership of them
type FrameSink interface {
	WriteFrame(index int, img *image.RGBA) error
}

// PNGSink writes frames as PNG files on a bounded set of goroutines and
// returns each image to the pool once it is on disk
type PNGSink struct {
	dir     string
	g       *errgroup.Group
	ctx     context.Context
	enc     png.Encoder
	written atomic.Int64
}

func NewPNGSink(ctx context.Context, dir string, workers int) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	return &PNGSink{
		dir: dir,
		g:   g,
		ctx: gctx,
		enc: png.Encoder{
			CompressionLevel: png.BestSpeed,
			BufferPool:       &encoderPool{},
		},
	}, nil
}

// WriteFrame blocks while all writers are busy
func (s *PNGSink) WriteFrame(index int, img *image.RGBA) error {
	if err := s.ctx.Err(); err != nil {
		system.PutImage(img)
		return err
	}
	s.g.Go(func() error {
		defer system.PutImage(img)
		return s.write(index, img)
	})
	return nil
}

func (s *PNGSink) write(index int, img *image.RGBA) error {
	path := filepath.Join(s.dir, fmt.Sprintf(FramePattern, index))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.written.Add(1)
	return nil
}

// Wait blocks until every queued frame is written
func (s *PNGSink) Wait() error {
	return s.g.Wait()
}

// Written is the number of frames on disk
func (s *PNGSink) Written() int {
	return int(s.written.Load())
}

type encoderPool struct {
	p sync.Pool
}

func (e *encoderPool) Get() *png.EncoderBuffer {
	b, _ := e.p.Get().(*png.EncoderBuffer)
	return b
}

func (e *encoderPool) Put(b *png.EncoderBuffer) {
	e.p.Put(b)
}

// RenderAll renders every frame of r into dir as PNG files and returns the
// number of frames written
func RenderAll(ctx context.Context, r *Renderer, dir string, workers int) (int, error) {
	sink, err := NewPNGSink(ctx, dir, workers)
	if err != nil {
		return 0, err
	}
	rerr := r.Render(ctx, sink)
	if werr := sink.Wait(); werr != nil {
		return sink.Written(), werr
	}
	return sink.Written(), rerr
}
