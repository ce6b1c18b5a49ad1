package watcher

import (
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"github.com/fxamacker/cbor/v2"
	"io"
	"os"
	"sync"
)

var ErrFrameTooLarge = errors.New("capture frame exceeds read buffer")

type ReplayConfig struct {
	Path string `yaml:"path"`
	// Follow keeps waiting for frames appended to the file by a running
	// recorder instead of stopping at its end.
	Follow bool `yaml:"follow"`
}

// Replay is a Source reading buffers from a capture file. It returns io.EOF
// once the capture is exhausted.
type Replay struct {
	file *os.File
	tail *tailReader
	dec  *cbor.Decoder
}

func OpenReplay(conf ReplayConfig) (*Replay, error) {
	file, err := os.Open(conf.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	r := &Replay{file: file}
	var src io.Reader = file

	if conf.Follow {
		r.tail, err = newTailReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		src = r.tail
	}

	r.dec = cbor.NewDecoder(src)

	return r, nil
}

func (r *Replay) Read(p []byte) (int, error) {
	var frame Frame

	err := r.dec.Decode(&frame)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		if r.tail != nil && r.tail.isClosed() {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("failed to decode capture frame: %w", err)
	}

	if frame.Size > len(p) {
		return 0, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, frame.Size, len(p))
	}

	data, err := zstdDecoder.DecodeAll(frame.Data, p[:0])
	if err != nil {
		return 0, fmt.Errorf("failed to decompress capture frame: %w", err)
	}
	if len(data) != frame.Size {
		return 0, fmt.Errorf("failed to decompress capture frame: got %d bytes, expected %d", len(data), frame.Size)
	}

	return len(data), nil
}

func (r *Replay) Close() error {
	var errs []error
	if r.tail != nil {
		errs = append(errs, r.tail.Close())
	}
	errs = append(errs, r.file.Close())
	return errors.Join(errs...)
}

// tailReader blocks at the end of a file until it is written to again.
type tailReader struct {
	file      *os.File
	w         *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

func newTailReader(file *os.File) (*tailReader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	err = w.Add(file.Name())
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch capture file: %w", err)
	}

	return &tailReader{
		file: file,
		w:    w,
		done: make(chan struct{}),
	}, nil
}

func (t *tailReader) Read(p []byte) (int, error) {
	for {
		n, err := t.file.Read(p)
		if n > 0 || !errors.Is(err, io.EOF) {
			return n, err
		}

		if err := t.wait(); err != nil {
			return 0, err
		}
	}
}

func (t *tailReader) wait() error {
	for {
		select {
		case ev, ok := <-t.w.Events:
			if !ok {
				return io.EOF
			}
			if ev.Has(fsnotify.Write) {
				return nil
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				return io.EOF
			}
		case err, ok := <-t.w.Errors:
			if !ok {
				return io.EOF
			}
			return fmt.Errorf("capture file watcher failed: %w", err)
		case <-t.done:
			return io.EOF
		}
	}
}

func (t *tailReader) isClosed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *tailReader) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.w.Close()
	})
	return err
}
