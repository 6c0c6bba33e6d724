package app

import (
	"context"
	"io"
	"net/http"

	"github.com/urfave/cli"

	"seoaudit/audit"
	"seoaudit/internal/config"
	"seoaudit/internal/limiter"
	"seoaudit/internal/logger"
	"seoaudit/internal/pagespeed"
)

const pageSpeedKeyEnv = "PAGESPEED_API_KEY"

// If URL is missing, it prints help and returns nil.
func Run(args []string, stdout, stderr io.Writer, client *http.Client, clock limiter.Timer) error {
	app := cli.NewApp()
	app.Name = "seo-audit"
	app.Usage = "audit the on-page SEO of a single web page"
	app.UsageText = "seo-audit [global options] <url>"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML configuration file",
		},
		cli.StringFlag{
			Name:  "strategy",
			Usage: "performance strategy passed to PageSpeed (desktop or mobile)",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "timeout for the audited page (default 10s)",
		},
		cli.DurationFlag{
			Name:  "aux-timeout",
			Usage: "timeout for robots.txt, sitemap.xml and link probes (default 7s)",
		},
		cli.StringFlag{
			Name:  "user-agent",
			Usage: "custom user agent",
		},
		cli.Float64Flag{
			Name:  "rps",
			Usage: "limit requests per second (overrides delay)",
		},
		cli.DurationFlag{
			Name:  "delay",
			Usage: "delay between requests (example: 200ms, 1s)",
		},
		cli.BoolFlag{
			Name:  "skip-robots",
			Usage: "do not check robots.txt",
		},
		cli.BoolFlag{
			Name:  "skip-sitemap",
			Usage: "do not check sitemap.xml",
		},
		cli.BoolFlag{
			Name:  "skip-links",
			Usage: "do not probe sampled links",
		},
		cli.BoolFlag{
			Name:  "skip-score",
			Usage: "omit the score from the report",
		},
		cli.BoolFlag{
			Name:  "compact",
			Usage: "print compact JSON",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		cli.StringFlag{
			Name:  "log-format",
			Usage: "console or json",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this rotating file",
		},
		cli.StringFlag{
			Name:   "pagespeed-key",
			Usage:  "PageSpeed Insights API key; the performance audit is skipped without it",
			EnvVar: pageSpeedKeyEnv,
		},
	}
	app.Action = func(c *cli.Context) error {
		targetURL := c.Args().First()
		if targetURL == "" {
			_ = cli.ShowAppHelp(c)

			return nil
		}

		cfg, err := configFromCLI(c)
		if err != nil {
			return err
		}

		log, err := logger.New(logger.Config{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}, stderr)
		if err != nil {
			return err
		}

		options := optionsFromConfig(cfg, client, clock)
		options.Logger = &log
		if cfg.PageSpeed.Enabled {
			options.Performance = pagespeed.New(client, cfg.PageSpeed.Endpoint, c.String("pagespeed-key"), cfg.PageSpeed.Timeout)
		}

		auditor, err := audit.NewAuditor(options)
		if err != nil {
			return err
		}

		report, err := auditor.Analyze(context.Background(), audit.Request{URL: targetURL, Strategy: cfg.PageSpeed.Strategy})
		if err != nil {
			return err
		}

		_, err = stdout.Write(audit.MarshalReport(report, !c.Bool("compact")))
		if err != nil {
			return err
		}

		return nil
	}

	err := app.Run(args)
	if err != nil {
		return err
	}

	return nil
}

func configFromCLI(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("strategy") {
		cfg.PageSpeed.Strategy = c.String("strategy")
	}
	if c.IsSet("timeout") {
		cfg.MainTimeout = c.Duration("timeout")
	}
	if c.IsSet("aux-timeout") {
		cfg.AuxiliaryTimeout = c.Duration("aux-timeout")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("rps") {
		cfg.RPS = c.Float64("rps")
	}
	if c.IsSet("delay") {
		cfg.Delay = c.Duration("delay")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}

	cfg.Checks.Robots = cfg.Checks.Robots && !c.Bool("skip-robots")
	cfg.Checks.Sitemap = cfg.Checks.Sitemap && !c.Bool("skip-sitemap")
	cfg.Checks.LinkProbe = cfg.Checks.LinkProbe && !c.Bool("skip-links")
	cfg.Checks.Scoring = cfg.Checks.Scoring && !c.Bool("skip-score")

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func optionsFromConfig(cfg config.Config, client *http.Client, clock limiter.Timer) audit.Options {
	return audit.Options{
		HTTPClient:       client,
		UserAgent:        cfg.UserAgent,
		MainTimeout:      cfg.MainTimeout,
		AuxiliaryTimeout: cfg.AuxiliaryTimeout,
		RPS:              cfg.RPS,
		Delay:            cfg.Delay,
		SampleSize:       cfg.SampleSize,
		ProbeWorkers:     cfg.ProbeWorkers,
		Capabilities: audit.Capabilities{
			Robots:    cfg.Checks.Robots,
			Sitemap:   cfg.Checks.Sitemap,
			LinkProbe: cfg.Checks.LinkProbe,
			Scoring:   cfg.Checks.Scoring,
		},
		Clock: clock,
	}
}
