package watcher

import (
	"errors"
	"fmt"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"os"
	"time"
)

// Frame is one captured device read. Data holds the zstd compressed buffer
// of Size bytes.
type Frame struct {
	Time int64  `cbor:"1,keyasint"`
	Size int    `cbor:"2,keyasint"`
	Data []byte `cbor:"3,keyasint"`
}

// Frames are compressed one by one so that a capture file can be replayed
// while it is still being written.
var (
	frameEncMode cbor.EncMode
	zstdEncoder  *zstd.Encoder
	zstdDecoder  *zstd.Decoder
)

func init() {
	var err error
	frameEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("watcher: CBOR encoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic("watcher: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("watcher: zstd decoder initialization failed: " + err.Error())
	}
}

// Recorder passes reads through from a Source and appends every buffer to a
// CBOR sequence of compressed frames that Replay can read back.
type Recorder struct {
	src  Source
	file *os.File
	enc  *cbor.Encoder
	now  func() time.Time
}

func NewRecorder(src Source, path string) (*Recorder, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}

	return &Recorder{
		src:  src,
		file: file,
		enc:  frameEncMode.NewEncoder(file),
		now:  time.Now,
	}, nil
}

func (r *Recorder) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		if werr := r.write(p[:n]); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (r *Recorder) write(data []byte) error {
	frame := Frame{
		Time: r.now().UnixNano(),
		Size: len(data),
		Data: zstdEncoder.EncodeAll(data, nil),
	}

	err := r.enc.Encode(frame)
	if err != nil {
		return fmt.Errorf("failed to encode capture frame: %w", err)
	}

	return nil
}

func (r *Recorder) Close() error {
	return errors.Join(r.src.Close(), r.file.Close())
}
