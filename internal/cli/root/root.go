// Package root contains the command line flags.
package root

import (
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/pia-wg/pia-wg/internal/config"
	"github.com/pia-wg/pia-wg/internal/log/handlers/cli"
	"github.com/pia-wg/pia-wg/internal/model"
)

// Options contains the command line options.
type Options struct {
	CACert        string
	ConfigPath    string
	KeyGen        string
	List          bool
	Output        string
	Password      string
	Region        string
	ServerListURL string
	Timeout       time.Duration
	Username      string
	Verbose       bool
	WGCommand     string
}

// New creates the command line application. Parsing the command
// line fills opts and configures the default logger.
func New(opts *Options) *kingpin.Application {
	app := kingpin.New("pia-wg", "Generate a WireGuard configuration for Private Internet Access.")
	app.Version(model.Version)
	app.HelpFlag.Short('h')

	app.Flag("list", "List the available regions.").Short('l').BoolVar(&opts.List)
	app.Flag("region", "Region to connect to.").Short('r').StringVar(&opts.Region)
	app.Flag("username", "PIA username.").Short('u').Envar("PIA_USERNAME").StringVar(&opts.Username)
	app.Flag("password", "PIA password.").Short('p').Envar("PIA_PASSWORD").StringVar(&opts.Password)
	app.Flag("output", "Where to save the configuration file.").Short('o').
		PlaceHolder(config.DefaultOutput).StringVar(&opts.Output)
	app.Flag("config", "Read settings from this file.").Short('c').StringVar(&opts.ConfigPath)
	app.Flag("ca-cert", "PEM file overriding the bundled provider CA certificate.").
		PlaceHolder("FILE").StringVar(&opts.CACert)
	app.Flag("keygen", "How to generate keys: running wg or natively.").
		PlaceHolder(config.KeyGenExec).EnumVar(&opts.KeyGen, config.KeyGenExec, config.KeyGenNative)
	app.Flag("wg-command", "Command line for running wg.").PlaceHolder("wg").StringVar(&opts.WGCommand)
	app.Flag("server-list-url", "URL of the server list.").StringVar(&opts.ServerListURL)
	app.Flag("timeout", "Timeout for each request.").PlaceHolder("30s").DurationVar(&opts.Timeout)
	app.Flag("verbose", "Enable verbose log output.").Short('v').BoolVar(&opts.Verbose)

	app.PreAction(func(ctx *kingpin.ParseContext) error {
		log.SetHandler(cli.Default)
		log.SetLevel(log.InfoLevel)
		if opts.Verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("pia-wg version %s", model.Version)
		}
		return nil
	})
	return app
}

// Settings returns the settings obtained by applying the command line
// options on top of the configuration file, if any, or the defaults.
func (opts *Options) Settings() (*config.Config, error) {
	settings := config.Default()
	if opts.ConfigPath != "" {
		log.Debugf("reading config file from %s", opts.ConfigPath)
		var err error
		if settings, err = config.Read(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	settings.Apply(&config.Config{
		ServerListURL:  opts.ServerListURL,
		CACert:         opts.CACert,
		KeyGen:         opts.KeyGen,
		WGCommand:      opts.WGCommand,
		TimeoutSeconds: timeoutSeconds(opts.Timeout),
		UserAgent:      "",
		Username:       opts.Username,
		Output:         opts.Output,
	})
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// timeoutSeconds rounds the timeout up to the next second.
func timeoutSeconds(timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	return int((timeout + time.Second - 1) / time.Second)
}
