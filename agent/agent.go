package agent

import (
	"errors"
	"fmt"
	"github.com/Leantar/fsewatcher/modules/fsevents"
	"github.com/Leantar/fsewatcher/modules/metrics"
	"github.com/Leantar/fsewatcher/modules/procname"
	"github.com/Leantar/fsewatcher/modules/reporter"
	"github.com/Leantar/fsewatcher/modules/watcher"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"io"
	"os"
	"sync/atomic"
	"time"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	LogLevel       string               `yaml:"log_level"`
	Format         string               `yaml:"format"`
	HashFiles      bool                 `yaml:"hash_files"`
	SkipAnomalies  bool                 `yaml:"skip_anomalies"`
	BufferSize     int                  `yaml:"buffer_size"`
	QueueDepth     int32                `yaml:"queue_depth"`
	NameCache      procname.CacheConfig `yaml:"name_cache"`
	Capture        string               `yaml:"capture"`
	Replay         watcher.ReplayConfig `yaml:"replay"`
	MetricsAddress string               `yaml:"metrics_address"`
	Server         *ServerConfig        `yaml:"server"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Format:     FormatText,
		BufferSize: watcher.DefaultBufferSize,
		QueueDepth: watcher.DefaultQueueDepth,
		NameCache: procname.CacheConfig{
			Size: 1024,
			TTL:  5 * time.Second,
		},
	}
}

func (c Config) Validate() error {
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	if c.BufferSize < 8 {
		return fmt.Errorf("buffer_size %d is too small", c.BufferSize)
	}
	if c.QueueDepth <= 0 || c.QueueDepth > watcher.DefaultQueueDepth {
		return fmt.Errorf("queue_depth must be between 1 and %d", watcher.DefaultQueueDepth)
	}
	if err := c.NameCache.Validate(); err != nil {
		return err
	}
	if c.Server != nil && c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	return nil
}

// Agent owns the event source and runs the stream loop.
type Agent struct {
	conf     Config
	out      io.Writer
	names    procname.Resolver
	src      watcher.Source
	conn     *grpc.ClientConn
	reporter *reporter.Reporter
	metrics  *metrics.Metrics
	stopping atomic.Bool
}

func New(config Config) *Agent {
	return &Agent{
		conf:    config,
		out:     os.Stdout,
		names:   procname.WithCache(procname.System, config.NameCache),
		metrics: metrics.New(),
	}
}

// Connect acquires the event source and every configured output.
func (a *Agent) Connect() (err error) {
	defer func() {
		if err != nil {
			_ = a.release()
		}
	}()

	a.src, err = a.openSource()
	if err != nil {
		return err
	}

	if a.conf.Capture != "" {
		var rec *watcher.Recorder
		rec, err = watcher.NewRecorder(a.src, a.conf.Capture)
		if err != nil {
			return err
		}
		a.src = rec
		log.Info().Msgf("capturing raw events to %s", a.conf.Capture)
	}

	sinks := []reporter.Sink{a.outputSink()}

	if a.conf.Server != nil {
		var fwd reporter.Sink
		fwd, err = a.dial(*a.conf.Server)
		if err != nil {
			return err
		}
		sinks = append(sinks, fwd)
	}

	if a.conf.MetricsAddress != "" {
		err = a.metrics.Serve(a.conf.MetricsAddress)
		if err != nil {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
	}

	a.reporter = reporter.New(a.names, sinks...)

	return nil
}

func (a *Agent) openSource() (watcher.Source, error) {
	if a.conf.Replay.Path != "" {
		r, err := watcher.OpenReplay(a.conf.Replay)
		if err != nil {
			return nil, err
		}
		log.Info().Msgf("replaying %s", a.conf.Replay.Path)
		return r, nil
	}

	d, err := watcher.Open(watcher.Config{QueueDepth: a.conf.QueueDepth})
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("cloned event channel from %s", watcher.DevicePath)
	return d, nil
}

func (a *Agent) outputSink() reporter.Sink {
	if a.conf.Format == FormatJSON {
		return reporter.NewJSONSink(a.out, a.conf.HashFiles)
	}
	return reporter.NewTextSink(a.out)
}

// Run reads and decodes buffers until the source fails, the replay ends or
// Stop is called. Any decoding error ends the loop.
func (a *Agent) Run() error {
	buf := make([]byte, a.conf.BufferSize)
	dec := fsevents.NewDecoder(nil)

	for {
		n, err := a.src.Read(buf)
		if err != nil {
			if a.stopping.Load() {
				return nil
			}
			if errors.Is(err, io.EOF) {
				log.Info().Msg("end of event stream")
				return nil
			}
			return err
		}

		a.metrics.Buffers.Inc()
		a.metrics.Bytes.Add(float64(n))

		err = a.process(dec, buf[:n])
		if err != nil {
			return err
		}
	}
}

func (a *Agent) process(dec *fsevents.Decoder, buf []byte) error {
	dec.Reset(buf)

	for dec.More() {
		ev, err := dec.Next()
		if err != nil {
			if a.conf.SkipAnomalies && fsevents.IsRecordLevel(err) {
				a.metrics.Anomalies.WithLabelValues(errors.Unwrap(err).Error()).Inc()
				log.Warn().Err(err).Int32("pid", ev.Pid).Msg("skipping event record")
				continue
			}
			return fmt.Errorf("failed to decode event: %w", err)
		}

		name := ev.Name()
		a.metrics.Events.WithLabelValues(name).Inc()

		for _, arg := range ev.Args {
			if arg.Tag != fsevents.ArgString {
				continue
			}

			emitted, err := a.reporter.ConsiderEvent(ev, arg.String())
			if err != nil {
				return err
			}

			if emitted {
				a.metrics.Reported.WithLabelValues(name).Inc()
			} else {
				a.metrics.Suppressed.WithLabelValues(name).Inc()
			}
		}
	}

	return nil
}

func (a *Agent) Stop() error {
	log.Info().Msg("stopping agent")
	a.stopping.Store(true)

	return a.release()
}

func (a *Agent) release() error {
	var errs []error

	if a.src != nil {
		errs = append(errs, a.src.Close())
	}
	if a.conn != nil {
		errs = append(errs, a.conn.Close())
	}
	errs = append(errs, a.metrics.Close())

	return errors.Join(errs...)
}
