package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"ball-tracker/config"
	"ball-tracker/internal/api"
	"ball-tracker/internal/container"
	"ball-tracker/internal/infrastructure/storage"
	"ball-tracker/internal/infrastructure/vision"
)

var log = logging.Logger("ball-tracker")

var flagConfig = &cli.StringFlag{
	Name:    "config",
	Usage:   "path to toml config file",
	EnvVars: []string{"BALL_TRACKER_CONFIG"},
}

var flagVerbose = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "enable debug logging",
}

func before(cctx *cli.Context) error {
	_ = logging.SetLogLevel("ball-tracker", "INFO")
	_ = logging.SetLogLevel("stream", "INFO")
	_ = logging.SetLogLevel("tracker", "INFO")

	if cctx.Bool("verbose") {
		_ = logging.SetLogLevel("ball-tracker", "DEBUG")
		_ = logging.SetLogLevel("stream", "DEBUG")
		_ = logging.SetLogLevel("tracker", "DEBUG")
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:                 "ball-tracker",
		Usage:                "bouncing ball stream server and tracking client",
		EnableBashCompletion: true,
		Before:               before,
		Flags: []cli.Flag{
			flagVerbose,
		},
		Commands: []*cli.Command{
			serveCmd,
			trackCmd,
			sessionsCmd,
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the bouncing ball stream server",
	Flags: []cli.Flag{
		flagConfig,
		&cli.StringFlag{
			Name:  "addr",
			Usage: "listen address, overrides the configured port",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := config.Load(cctx.String("config"))
		if err != nil {
			return err
		}

		c, err := container.NewServer(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if cfg.StatsAddr != "" {
			go func() {
				if err := c.Stats.Serve(ctx, cfg.StatsAddr); err != nil {
					log.Errorf("stats server: %v", err)
				}
			}()
		}

		addr := cctx.String("addr")
		if addr == "" {
			addr = cfg.Addr()
		}

		log.Infof("%s is running...", cfg.Name)
		return c.Server.Serve(ctx, addr)
	},
}

var trackCmd = &cli.Command{
	Name:  "track",
	Usage: "connect to a stream server and track the ball",
	Flags: []cli.Flag{
		flagConfig,
		&cli.StringFlag{
			Name:  "addr",
			Usage: "server address to connect to",
			Value: "127.0.0.1:9000",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "client name reported to the server",
			Value: "Tracker",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := config.Load(cctx.String("config"))
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		detector := vision.NewGoCVDetector()
		client := api.NewTrackerClient(cctx.String("name"), detector)
		client.SendInterval = cfg.SendInterval()

		return client.Run(ctx, cctx.String("addr"))
	},
}

var sessionsCmd = &cli.Command{
	Name:  "sessions",
	Usage: "list finished tracking sessions",
	Flags: []cli.Flag{
		flagConfig,
		&cli.IntFlag{
			Name:  "limit",
			Usage: "how many sessions to show",
			Value: 20,
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := config.Load(cctx.String("config"))
		if err != nil {
			return err
		}

		repo, err := storage.NewSQLiteSessionRepository(cfg.DBPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		sessions, err := repo.List(cctx.Context, cctx.Int("limit"))
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("no sessions recorded yet")
			return nil
		}

		fmt.Printf("%-14s %-12s %-20s %8s %10s %10s %10s\n",
			"ID", "CLIENT", "FINISHED", "SAMPLES", "MEAN", "MAX", "RMS")
		for _, s := range sessions {
			fmt.Printf("%-14s %-12s %-20s %8d %10.2f %10.2f %10.2f\n",
				s.ID,
				s.ClientName,
				s.FinishedAt.Local().Format("2006-01-02 15:04:05"),
				s.Samples,
				s.MeanError,
				s.MaxError,
				s.RMSError,
			)
		}

		return nil
	},
}
