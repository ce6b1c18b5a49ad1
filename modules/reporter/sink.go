package reporter

import (
	"fmt"
	"github.com/Leantar/fsewatcher/models"
	"github.com/Leantar/fsewatcher/modules/fsevents"
	"github.com/rs/zerolog"
	"io"
	"strings"
)

// TextSink writes tab separated lines: pid, process, event type, path.
// Each line is handed to w in a single call so an unbuffered writer shows it
// immediately.
type TextSink struct {
	w io.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) Write(r Report) error {
	_, err := fmt.Fprintf(s.w, "%d\t%s\t%s\t%s\n", r.Pid, r.Process, fsevents.EventName(r.Type), r.Path)
	return err
}

// JSONSink writes one JSON object per report. Reports that carry their
// record also list its metadata arguments. With hashFiles set, surviving paths
// are annotated with their metadata and content hash.
type JSONSink struct {
	logger    zerolog.Logger
	out       *errWriter
	hashFiles bool
}

func NewJSONSink(w io.Writer, hashFiles bool) *JSONSink {
	out := &errWriter{w: w}
	return &JSONSink{
		logger:    zerolog.New(out).With().Timestamp().Logger(),
		out:       out,
		hashFiles: hashFiles,
	}
}

func (s *JSONSink) Write(r Report) error {
	e := s.logger.Log().
		Int32("pid", r.Pid).
		Str("process", r.Process).
		Str("event", fsevents.EventName(r.Type)).
		Str("path", r.Path)

	if r.Event != nil {
		e = e.Dict("record", recordDict(r.Event))
	}

	if s.hashFiles && r.Type != fsevents.TypeDelete {
		obj, err := models.NewFsObject(r.Path)
		if err != nil {
			e = e.AnErr("stat_error", err)
		} else {
			e = e.Str("kind", obj.Kind).
				Str("hash", obj.Hash).
				Int64("size", obj.Size).
				Uint64("inode", obj.Inode).
				Int64("modified", obj.Modified).
				Uint32("uid", obj.Uid).
				Uint32("gid", obj.Gid).
				Uint32("mode", obj.Mode)
		}
	}

	s.out.err = nil
	e.Send()
	return s.out.err
}

var recordArgs = []uint16{
	fsevents.ArgDev,
	fsevents.ArgIno,
	fsevents.ArgMode,
	fsevents.ArgUid,
	fsevents.ArgGid,
	fsevents.ArgInt32,
	fsevents.ArgInt64,
}

// recordDict describes the first argument of each metadata tag in ev and the
// tags of all its arguments in wire order.
func recordDict(ev *fsevents.Event) *zerolog.Event {
	d := zerolog.Dict().Uint32("flags", ev.Flags)

	for _, tag := range recordArgs {
		a, ok := ev.Arg(tag)
		if !ok {
			continue
		}

		key := argKey(a)
		switch tag {
		case fsevents.ArgDev:
			if v, ok := a.Dev(); ok {
				d = d.Int32(key, v)
			}
		case fsevents.ArgIno:
			if v, ok := a.Ino(); ok {
				d = d.Uint64(key, v)
			}
		case fsevents.ArgMode:
			if v, ok := a.Uint32(); ok {
				d = d.Uint32(key, v).
					Str("vtype", fsevents.VnodeTypeName(fsevents.VnodeType(v)))
			}
		case fsevents.ArgUid, fsevents.ArgGid:
			if v, ok := a.Uint32(); ok {
				d = d.Uint32(key, v)
			}
		case fsevents.ArgInt32:
			if v, ok := a.Int32(); ok {
				d = d.Int32(key, v)
			}
		case fsevents.ArgInt64:
			if v, ok := a.Int64(); ok {
				d = d.Int64(key, v)
			}
		}
	}

	names := make([]string, 0, len(ev.Args))
	for _, a := range ev.Args {
		names = append(names, a.Name())
	}

	return d.Strs("args", names)
}

// argKey turns FSE_ARG_MODE into mode.
func argKey(a fsevents.Arg) string {
	return strings.ToLower(strings.TrimPrefix(a.Name(), "FSE_ARG_"))
}

// errWriter keeps the last write error, which zerolog itself only prints.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}
