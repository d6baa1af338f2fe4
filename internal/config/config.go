// Package config defines the tunables aesdsocket exposes as flags.
package config

import (
	"flag"
	"fmt"

	"github.com/aesdsock/aesdsock/internal/constants"
)

// StoreKind selects which backing store implementation the server uses.
type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreDevice StoreKind = "chardevice"

	// StoreRealDevice selects the real /dev/aesdchar node, exercised
	// only in environments where the companion kernel module is
	// loaded. Linux-only; see internal/store/realdevice.go.
	StoreRealDevice StoreKind = "realdevice"
)

// Config holds the server's startup configuration.
type Config struct {
	Daemonize    bool
	Port         int
	Store        StoreKind
	FilePath     string
	DevicePath   string
	RingCapacity int
	LogFormat    string
}

// Default returns the configuration matching spec defaults: port 9000,
// local-file store at /var/tmp/aesdsocketdata, ring capacity 10.
func Default() Config {
	return Config{
		Daemonize:    false,
		Port:         constants.DefaultPort,
		Store:        StoreFile,
		FilePath:     constants.DefaultFilePath,
		DevicePath:   constants.DefaultDevicePath,
		RingCapacity: constants.RingCapacity,
		LogFormat:    "text",
	}
}

// ParseArgs parses args (excluding argv[0]) into a Config, starting
// from Default(). It reproduces the original aesdsocket's strict CLI:
// a single bare "-d" is the only non-flag form accepted, but since
// this binary exposes more than one flag, any recognized flag.Parse
// failure is reported the same way a bad -d argument was in the
// original: an error causing exit status 1.
func ParseArgs(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("aesdsocket", flag.ContinueOnError)
	fs.BoolVar(&cfg.Daemonize, "d", cfg.Daemonize, "detach into the background before accepting connections")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "TCP port to bind")
	store := fs.String("store", string(cfg.Store), "backing store: file|chardevice|realdevice")
	fs.StringVar(&cfg.FilePath, "file", cfg.FilePath, "local-file backing store path (store=file)")
	fs.StringVar(&cfg.DevicePath, "device-path", cfg.DevicePath, "character-device path (store=realdevice)")
	fs.IntVar(&cfg.RingCapacity, "ring-capacity", cfg.RingCapacity, "number of retained commands in the bounded ring")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log output format: text|json")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	switch StoreKind(*store) {
	case StoreFile, StoreDevice, StoreRealDevice:
		cfg.Store = StoreKind(*store)
	default:
		return Config{}, fmt.Errorf("unknown -store value %q (want file, chardevice, or realdevice)", *store)
	}

	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if cfg.RingCapacity <= 0 {
		return Config{}, fmt.Errorf("-ring-capacity must be positive, got %d", cfg.RingCapacity)
	}

	return cfg, nil
}
