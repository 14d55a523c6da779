package recorder

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/core/vision"
	"github.com/zeusync/fieldofview/internal/viewer"
)

var _ vision.FrameObserver = (*Recorder)(nil)

// Recorder writes every frame it observes as one JSON line into a zstd
// stream. Lines use the viewer's message format so recordings can be
// replayed into the same clients.
type Recorder struct {
	logger log.Log

	mu     sync.Mutex
	closer io.Closer
	enc    *zstd.Encoder
	w      *bufio.Writer
	frames uint64
	err    error
}

// Create opens path for writing, creating parent directories.
func Create(path string, logger log.Log) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	r, err := New(f, logger)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// New records into w. Close flushes the stream but does not close w.
func New(w io.Writer, logger log.Log) (*Recorder, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Recorder{
		logger: logger.With(log.String("component", "recorder")),
		enc:    enc,
		w:      bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// OnFrame appends f. The first write error is kept, logged once and returned
// by Close; later frames, and frames after Close, are discarded.
func (r *Recorder) OnFrame(f vision.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.w == nil {
		return
	}
	if err := r.writeLocked(viewer.NewFrameMessage(f)); err != nil {
		r.err = err
		r.logger.Error("recording stopped", log.Uint64("frames", r.frames), log.Error(err))
		return
	}
	r.frames++
}

func (r *Recorder) writeLocked(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close flushes buffered frames and finishes the zstd stream.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}

	err := errors.Join(r.err, r.w.Flush(), r.enc.Close())
	if r.closer != nil {
		err = errors.Join(err, r.closer.Close())
	}
	r.w, r.enc, r.closer = nil, nil, nil
	return err
}

// ReadAll decodes a recording produced by a Recorder.
func ReadAll(rd io.Reader) ([]viewer.FrameMessage, error) {
	dec, err := zstd.NewReader(rd)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []viewer.FrameMessage
	jd := json.NewDecoder(dec)
	for {
		var m viewer.FrameMessage
		if err := jd.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, m)
	}
}
