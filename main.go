package main

import (
	"errors"
	"fmt"
	"github.com/Leantar/fsewatcher/agent"
	"github.com/Leantar/fsewatcher/modules/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
)

const (
	progName    = "fsewatcher"
	progVersion = "0.2"

	configEnv         = "FSEWATCHER_CONFIG"
	defaultConfigPath = "/etc/fsewatcher/config.yaml"
)

var errUsage = errors.New("unexpected arguments")

func usage(w io.Writer) {
	fmt.Fprintf(w, "%s (%s)\n", progName, progVersion)
	fmt.Fprintf(w, "File system change logger for macOS. Usage:\n")
	fmt.Fprintf(w, "\n\t%s\n\n", progName)
	fmt.Fprintf(w, "%s does not take any arguments. It must be run as root.\n", progName)
	fmt.Fprintf(w, "Settings are read from $%s (default %s).\n\n", configEnv, defaultConfigPath)
}

// checkArgs prints the usage text to w if any argument follows the program
// name.
func checkArgs(args []string, w io.Writer) error {
	if len(args) > 1 {
		usage(w)
		return errUsage
	}
	return nil
}

// loadConfig reads the file named by $FSEWATCHER_CONFIG, or defaultPath when
// the variable is unset. Only a missing default file falls back to defaults.
func loadConfig(lookupEnv func(string) (string, bool), defaultPath string) (agent.Config, error) {
	conf := agent.DefaultConfig()

	path, explicit := lookupEnv(configEnv)
	if !explicit {
		path = defaultPath
	}

	err := config.FromYamlFile(path, &conf)
	if err != nil && !(errors.Is(err, fs.ErrNotExist) && !explicit) {
		return conf, err
	}

	return conf, conf.Validate()
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if checkArgs(os.Args, os.Stderr) != nil {
		os.Exit(1)
	}

	conf, err := loadConfig(os.LookupEnv, defaultConfigPath)
	if err != nil {
		log.Fatal().Caller().Err(err).Msg("failed to read config")
	}

	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		log.Fatal().Caller().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	// Replaying a capture does not touch the device.
	if conf.Replay.Path == "" && os.Geteuid() != 0 {
		log.Fatal().Msgf("you must be root to run %s, try again using 'sudo'", progName)
	}

	a := agent.New(conf)

	err = a.Connect()
	if err != nil {
		log.Fatal().Caller().Err(err).Msg("failed to open event source")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- a.Run()
	}()

	select {
	case err = <-done:
		stopErr := a.Stop()
		if err != nil {
			log.Fatal().Err(err).Msg("event stream failed")
		}
		if stopErr != nil {
			log.Fatal().Caller().Err(stopErr).Msg("failed to stop agent")
		}
	case <-quit:
		err = a.Stop()
		if err != nil {
			log.Fatal().Caller().Err(err).Msg("failed to stop agent")
		}
	}
}
