package reporter

import (
	"fmt"
	"github.com/Leantar/fsewatcher/modules/fsevents"
	"github.com/Leantar/fsewatcher/modules/procname"
)

// Report is one emitted log record. Event is the decoded record the path came
// from, if known; its arguments alias the read buffer and must not be kept
// past Write.
type Report struct {
	Pid     int32
	Process string
	Type    int32
	Path    string
	Event   *fsevents.Event
}

// Sink receives every emitted report.
type Sink interface {
	Write(r Report) error
}

// Reporter decides which path arguments are worth reporting. It suppresses a
// path that equals the one seen immediately before it, whatever process or
// event produced that one, unless the event creates or renames something.
type Reporter struct {
	names    procname.Resolver
	sinks    []Sink
	lastPath string
	seen     bool
}

func New(names procname.Resolver, sinks ...Sink) *Reporter {
	return &Reporter{
		names: names,
		sinks: sinks,
	}
}

// Consider handles the path argument of an event of type typ issued by pid.
// It reports whether a record was emitted.
func (r *Reporter) Consider(typ, pid int32, path string) (bool, error) {
	return r.consider(Report{Pid: pid, Type: typ, Path: path})
}

// ConsiderEvent is Consider for a path argument of ev, which is attached to
// the emitted report.
func (r *Reporter) ConsiderEvent(ev *fsevents.Event, path string) (bool, error) {
	return r.consider(Report{Pid: ev.Pid, Type: ev.Type, Path: path, Event: ev})
}

func (r *Reporter) consider(rep Report) (bool, error) {
	typ, path := rep.Type, rep.Path
	emit := alwaysReported(typ) || !r.seen || path != r.lastPath

	r.lastPath = path
	r.seen = true

	if !emit {
		return false, nil
	}

	rep.Process = r.names.Name(rep.Pid)
	for _, s := range r.sinks {
		if err := s.Write(rep); err != nil {
			return true, fmt.Errorf("failed to write report: %w", err)
		}
	}

	return true, nil
}

// LastPath returns the most recently considered path.
func (r *Reporter) LastPath() string {
	return r.lastPath
}

func alwaysReported(typ int32) bool {
	switch typ {
	case fsevents.TypeRename, fsevents.TypeCreateFile, fsevents.TypeCreateDir:
		return true
	}
	return false
}
