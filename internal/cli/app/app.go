// Package app contains the command line application.
package app

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/pia-wg/pia-wg/internal/cli/root"
	"github.com/pia-wg/pia-wg/internal/config"
	"github.com/pia-wg/pia-wg/internal/keygen"
	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/netxlite"
	"github.com/pia-wg/pia-wg/internal/piaservices"
	"github.com/pia-wg/pia-wg/internal/provision"
	"github.com/pia-wg/pia-wg/internal/serverlist"
)

// Dependencies contains the dependencies of [Main].
type Dependencies struct {
	// DotEnvFiles contains the files from which we load environment variables.
	DotEnvFiles []string

	// Logger is the logger to use.
	Logger model.Logger

	// NewWorkflow creates the workflow. When listOnly is true the workflow
	// is only used for listing regions.
	NewWorkflow func(settings *config.Config, logger model.Logger, listOnly bool) (*provision.Workflow, error)

	// Prompter asks for missing credentials.
	Prompter Prompter

	// Stdout is where we print the regions.
	Stdout io.Writer
}

// NewDependencies returns the default [*Dependencies].
func NewDependencies() *Dependencies {
	return &Dependencies{
		DotEnvFiles: []string{".env"},
		Logger:      log.Log,
		NewWorkflow: NewWorkflow,
		Prompter:    SurveyPrompter{},
		Stdout:      os.Stdout,
	}
}

// Run runs the app using os.Args. This is the main app entry point.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Main(ctx, os.Args[1:], NewDependencies())
}

// errMissingRegion indicates that the user did not select a region.
var errMissingRegion = errors.New("app: missing region")

// Main parses the command line and provisions a tunnel or lists the
// available regions. Errors have already been reported to the user.
func Main(ctx context.Context, args []string, deps *Dependencies) error {
	loadDotEnv(deps.DotEnvFiles)

	var opts root.Options
	if _, err := root.New(&opts).Parse(args); err != nil {
		log.WithError(err).Error("cannot parse the command line")
		return err
	}

	settings, err := opts.Settings()
	if err != nil {
		log.WithError(err).Error("cannot load the settings")
		return err
	}

	if opts.List {
		return listRegions(ctx, settings, deps)
	}

	if opts.Region == "" {
		log.Error("Please specify a region")
		return errMissingRegion
	}

	workflow, err := deps.NewWorkflow(settings, deps.Logger, false)
	if err != nil {
		log.WithError(err).Error("cannot initialize")
		return err
	}

	req := &provision.Request{
		Region: opts.Region,
		Credentials: model.Credentials{
			Username: settings.Username,
			Password: opts.Password,
		},
		AskCredentials: func(creds model.Credentials) (model.Credentials, error) {
			return askCredentials(deps.Prompter, creds)
		},
		OutputPath: settings.Output,
	}
	result, err := workflow.Run(ctx, req)
	if err != nil {
		log.Error(describeError(err))
		log.Debugf("%s", err.Error())
		return err
	}

	log.WithFields(log.Fields{
		"type":     "table",
		"region":   result.Region.Name,
		"address":  result.Tunnel.Address,
		"endpoint": result.Tunnel.Endpoint,
		"output":   result.OutputPath,
	}).Info("Saved configuration file")
	return nil
}

// loadDotEnv loads environment variables from the given files without
// overriding the variables that are already set.
func loadDotEnv(files []string) {
	for _, file := range files {
		err := godotenv.Load(file)
		switch {
		case err == nil:
			log.Debugf("loaded environment variables from %s", file)
		case errors.Is(err, fs.ErrNotExist):
			// nothing
		default:
			log.WithError(err).Warnf("cannot load %s", file)
		}
	}
}

// listRegions prints the available regions.
func listRegions(ctx context.Context, settings *config.Config, deps *Dependencies) error {
	workflow, err := deps.NewWorkflow(settings, deps.Logger, true)
	if err != nil {
		log.WithError(err).Error("cannot initialize")
		return err
	}
	regions, err := workflow.ListRegions(ctx)
	if err != nil {
		log.Error(describeError(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Available regions:")
	for _, name := range regions {
		fmt.Fprintln(deps.Stdout, name)
	}
	return nil
}

// askCredentials prompts for the missing credentials.
func askCredentials(prompter Prompter, creds model.Credentials) (model.Credentials, error) {
	var err error
	if creds.Username == "" {
		if creds.Username, err = prompter.Input("Enter PIA username:"); err != nil {
			return model.Credentials{}, err
		}
	}
	if creds.Password == "" {
		if creds.Password, err = prompter.Password("Enter PIA password:"); err != nil {
			return model.Credentials{}, err
		}
	}
	return creds, nil
}

// describeError returns a message explaining err to the user.
func describeError(err error) string {
	var registration *piaservices.ErrRegistration
	switch {
	case errors.Is(err, model.ErrOutputExists):
		return "Config file already exists, please delete it first"
	case errors.Is(err, model.ErrRegionNotFound):
		return "Invalid region"
	case errors.Is(err, model.ErrAuthenticationFailed):
		return "Error logging in, please try again..."
	case errors.As(err, &registration):
		return fmt.Sprintf("Error adding key to server (status code %d): %s",
			registration.StatusCode, string(registration.Body))
	case errors.Is(err, model.ErrRegistrationFailed):
		return "Error adding key to server"
	case errors.Is(err, piaservices.ErrNoBundledAnchor):
		return "This build does not contain the PIA CA certificate, please use --ca-cert"
	case errors.Is(err, model.ErrKeyGen):
		return fmt.Sprintf("Cannot generate keys (is wg installed? try --keygen native): %s", err.Error())
	case errors.Is(err, model.ErrTLS):
		return fmt.Sprintf("Cannot verify the server certificate: %s", err.Error())
	case errors.Is(err, model.ErrNetwork):
		return fmt.Sprintf("Network error: %s", err.Error())
	case errors.Is(err, model.ErrParse):
		return fmt.Sprintf("Unexpected response: %s", err.Error())
	default:
		return err.Error()
	}
}

// NewWorkflow creates the [*provision.Workflow] using the given settings.
func NewWorkflow(settings *config.Config, logger model.Logger, listOnly bool) (*provision.Workflow, error) {
	workflow := &provision.Workflow{
		Fetcher: &provision.ServerListFetcher{
			Config: &serverlist.Config{
				Client:    netxlite.NewHTTPClientStdlib(logger, settings.Timeout()),
				Logger:    logger,
				URL:       settings.ServerListURL,
				UserAgent: settings.UserAgent,
			},
		},
		FileSystem: provision.OSFileSystem{},
		Logger:     logger,
	}
	if listOnly {
		return workflow, nil
	}

	// the CA is loaded before the first request, after the pre-flight checks
	client := piaservices.NewClient(nil, logger)
	if path := settings.CACert; path != "" {
		client.LoadCertPool = func() (*x509.CertPool, error) {
			logger.Debugf("app: loading the CA certificate from %s", path)
			return netxlite.ReadCertPoolFile(path)
		}
	}
	client.Timeout = settings.Timeout()
	client.UserAgent = settings.UserAgent
	workflow.Authenticator = client
	workflow.Registrar = client

	switch settings.KeyGen {
	case config.KeyGenNative:
		workflow.KeyGenerator = keygen.Native{}
	default:
		workflow.KeyGenerator = &keygen.Exec{
			Command: settings.WGCommand,
			Logger:  logger,
			Timeout: keygen.DefaultTimeout,
		}
	}
	return workflow, nil
}
