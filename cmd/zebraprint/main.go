package main

import (
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"zebraprint/pkg/browserprint"
	"zebraprint/pkg/config"
	"zebraprint/pkg/profiles"
	"zebraprint/pkg/store"
)

// session is everything a command needs, built from flags and the config file.
type session struct {
	cfg    config.Config
	store  store.Store
	client *browserprint.Client
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		log.Warnf("Failed to close store: %v", err)
	}
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}
	if c.IsSet("url") {
		cfg.APIURL = c.String("url")
	}
	if c.IsSet("store") {
		cfg.Store.Backend = c.String("store")
	}

	profile, err := profiles.Load(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}

	st, err := store.Open(store.Options{
		Backend:   cfg.Store.Backend,
		Path:      cfg.Store.Path,
		RedisAddr: cfg.Store.RedisAddr,
		RedisDB:   cfg.Store.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %v", err)
	}

	client, err := browserprint.New(cfg.APIURL, st,
		browserprint.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		browserprint.WithProfile(profile),
		browserprint.WithRetries(cfg.Retries),
		browserprint.WithRetryDelay(cfg.RetryDelay),
		browserprint.WithLogger(log.WithField("command", c.Command.Name)),
	)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to create client: %v", err)
	}

	log.Debugf("Bridge %s, profile %q, store %s", client.BaseURL(), profile.Name, cfg.Store.Backend)
	return &session{cfg: cfg, store: st, client: client}, nil
}

// withSession wraps a command action so it receives an open session.
func withSession(action func(*cli.Context, *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		return action(c, s)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "zebraprint",
		Usage: "Drive label printers through the local Browser Print bridge",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
				Value:   false,
				EnvVars: []string{"DEBUG"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file",
				EnvVars: []string{"ZEBRAPRINT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Bridge base URL",
				EnvVars: []string{"ZEBRAPRINT_URL"},
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Storage backend for the selected printer (bolt, redis, memory)",
				EnvVars: []string{"ZEBRAPRINT_STORE"},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "printers",
				Usage:  "List printers known to the bridge",
				Action: withSession(listPrinters),
			},
			{
				Name:   "default",
				Usage:  "Show the bridge's default printer",
				Action: withSession(showDefault),
			},
			{
				Name:   "current",
				Usage:  "Show the selected printer",
				Action: withSession(showCurrent),
			},
			{
				Name:  "select",
				Usage: "Select a printer by UID, or the bridge default when no UID is given",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uid", Usage: "UID of the printer to select"},
				},
				Action: withSession(selectPrinter),
			},
			{
				Name:   "status",
				Usage:  "Query the printer's error status",
				Action: withSession(showStatus),
			},
			{
				Name:   "check",
				Usage:  "Probe whether the printer responds",
				Action: withSession(checkConnection),
			},
			{
				Name:      "write",
				Usage:     "Send raw data to the printer",
				ArgsUsage: "<data>",
				Action:    withSession(writeRaw),
			},
			{
				Name:   "read",
				Usage:  "Read pending output from the printer",
				Action: withSession(readRaw),
			},
			{
				Name:      "print",
				Usage:     "Print text as-is",
				ArgsUsage: "<text>",
				Action:    withSession(printText),
			},
			{
				Name:      "label",
				Usage:     "Print data on the profile's label template",
				ArgsUsage: "<data>",
				Action:    withSession(printLabel),
			},
			{
				Name:  "watch",
				Usage: "Poll the printer, publish status to MQTT and serve metrics",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "interval", Usage: "Poll interval (overrides config)"},
					&cli.StringFlag{Name: "metrics-addr", Usage: "Address for /metrics and /healthz (overrides config)"},
				},
				Action: withSession(watch),
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
