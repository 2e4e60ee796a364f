package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pia-wg/pia-wg/internal/config"
	"github.com/pia-wg/pia-wg/internal/keygen"
	"github.com/pia-wg/pia-wg/internal/model"
	"github.com/pia-wg/pia-wg/internal/model/mocks"
	"github.com/pia-wg/pia-wg/internal/piaservices"
	"github.com/pia-wg/pia-wg/internal/provision"
	"github.com/pia-wg/pia-wg/internal/runtimex"
	"github.com/pia-wg/pia-wg/internal/testingx"
)

// usEast is the only valid region in these tests.
var usEast = &model.Region{
	ID:   "us_east",
	Name: "US East",
	Meta: model.ServerEndpoint{
		CommonName: "us-east-meta.example",
		IP:         "10.0.0.1",
	},
	Gateway: model.ServerEndpoint{
		CommonName: "us-east-wg.example",
		IP:         "10.0.0.2",
	},
}

// mockPrompter is a mockable [Prompter].
type mockPrompter struct {
	MockInput    func(message string) (string, error)
	MockPassword func(message string) (string, error)
}

func (p *mockPrompter) Input(message string) (string, error) {
	return p.MockInput(message)
}

func (p *mockPrompter) Password(message string) (string, error) {
	return p.MockPassword(message)
}

// unsetenv unsets the given variable until the end of the test.
func unsetenv(t *testing.T, key string) {
	t.Setenv(key, "")
	runtimex.Try0(os.Unsetenv(key))
}

// testEnv contains the [*Dependencies] for testing [Main].
type testEnv struct {
	deps     *Dependencies
	dir      string
	stdout   *bytes.Buffer
	prompts  []string
	listOnly []bool
}

func newTestEnv(t *testing.T) *testEnv {
	unsetenv(t, "PIA_USERNAME")
	unsetenv(t, "PIA_PASSWORD")
	env := &testEnv{dir: t.TempDir(), stdout: &bytes.Buffer{}}
	directory := &mocks.ServerDirectory{
		MockRegions: func() []string {
			return []string{"DE Berlin", "US East"}
		},
		MockLookup: func(name string) (*model.Region, error) {
			if name != "US East" {
				return nil, model.ErrRegionNotFound
			}
			return usEast, nil
		},
	}
	env.deps = &Dependencies{
		DotEnvFiles: []string{filepath.Join(env.dir, ".env")},
		Logger:      model.DiscardLogger,
		NewWorkflow: func(settings *config.Config, logger model.Logger, listOnly bool) (*provision.Workflow, error) {
			env.listOnly = append(env.listOnly, listOnly)
			return &provision.Workflow{
				Authenticator: &mocks.Authenticator{
					MockAuthenticate: func(ctx context.Context, region *model.Region, creds model.Credentials) (model.AuthToken, error) {
						if creds.Username != "p1234567" || creds.Password != "hunter2" {
							return "", model.ErrAuthenticationFailed
						}
						return "abc123", nil
					},
				},
				Fetcher: &mocks.DirectoryFetcher{
					MockFetchDirectory: func(ctx context.Context) (model.ServerDirectory, error) {
						return directory, nil
					},
				},
				FileSystem: provision.OSFileSystem{},
				KeyGenerator: &mocks.KeyGenerator{
					MockGenerateKeyPair: func(ctx context.Context) (*model.KeyPair, error) {
						return &model.KeyPair{PrivateKey: "PRIVKEYBASE64", PublicKey: "PUBKEYBASE64"}, nil
					},
				},
				Logger: logger,
				Registrar: &mocks.KeyRegistrar{
					MockRegisterKey: func(ctx context.Context, region *model.Region,
						token model.AuthToken, publicKey string) (*model.ConnectionParams, error) {
						return &model.ConnectionParams{
							PeerIP:     "10.64.0.5",
							ServerKey:  "SRVKEYBASE64",
							ServerIP:   "10.0.0.2",
							DNSServers: []string{"10.0.0.241", "10.0.0.242"},
						}, nil
					},
				},
			}, nil
		},
		Prompter: &mockPrompter{
			MockInput: func(message string) (string, error) {
				env.prompts = append(env.prompts, message)
				return "p1234567", nil
			},
			MockPassword: func(message string) (string, error) {
				env.prompts = append(env.prompts, message)
				return "hunter2", nil
			},
		},
		Stdout: env.stdout,
	}
	return env
}

func (env *testEnv) path(name string) string {
	return filepath.Join(env.dir, name)
}

const expectedConfig = `[Interface]
Address = 10.64.0.5
PrivateKey = PRIVKEYBASE64
DNS = 10.0.0.241,10.0.0.242

[Peer]
PublicKey = SRVKEYBASE64
Endpoint = 10.0.0.2:1337
AllowedIPs = 0.0.0.0/0
PersistentKeepalive = 25
`

func TestMainWithDependencies(t *testing.T) {
	t.Run("--list prints the available regions", func(t *testing.T) {
		env := newTestEnv(t)
		if err := Main(context.Background(), []string{"--list"}, env.deps); err != nil {
			t.Fatal(err)
		}
		expect := "Available regions:\nDE Berlin\nUS East\n"
		if diff := cmp.Diff(expect, env.stdout.String()); diff != "" {
			t.Fatal(diff)
		}
		if diff := cmp.Diff([]bool{true}, env.listOnly); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("we prompt for missing credentials", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.path("wireguard.conf")
		err := Main(context.Background(), []string{"-r", "US East", "-o", output}, env.deps)
		if err != nil {
			t.Fatal(err)
		}
		data := runtimex.Try1(os.ReadFile(output))
		if diff := cmp.Diff(expectedConfig, string(data)); diff != "" {
			t.Fatal(diff)
		}
		expectPrompts := []string{"Enter PIA username:", "Enter PIA password:"}
		if diff := cmp.Diff(expectPrompts, env.prompts); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("we do not prompt when the credentials are on the command line", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.path("wireguard.conf")
		args := []string{"-r", "US East", "-o", output, "-u", "p1234567", "-p", "hunter2"}
		if err := Main(context.Background(), args, env.deps); err != nil {
			t.Fatal(err)
		}
		if len(env.prompts) != 0 {
			t.Fatal("unexpected prompts", env.prompts)
		}
	})

	t.Run("we read the credentials from the .env file", func(t *testing.T) {
		env := newTestEnv(t)
		dotenv := "PIA_USERNAME=p1234567\nPIA_PASSWORD=hunter2\n"
		runtimex.Try0(os.WriteFile(env.path(".env"), []byte(dotenv), 0600))
		output := env.path("wireguard.conf")
		if err := Main(context.Background(), []string{"-r", "US East", "-o", output}, env.deps); err != nil {
			t.Fatal(err)
		}
		if len(env.prompts) != 0 {
			t.Fatal("unexpected prompts", env.prompts)
		}
	})

	t.Run("we require a region", func(t *testing.T) {
		env := newTestEnv(t)
		err := Main(context.Background(), []string{"-o", env.path("wireguard.conf")}, env.deps)
		if !errors.Is(err, errMissingRegion) {
			t.Fatal("unexpected error", err)
		}
		if len(env.listOnly) != 0 {
			t.Fatal("should not have created a workflow")
		}
	})

	t.Run("we refuse to overwrite the output", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.path("wireguard.conf")
		runtimex.Try0(os.WriteFile(output, []byte("keep me\n"), 0600))
		err := Main(context.Background(), []string{"-r", "Atlantis", "-o", output}, env.deps)
		if !errors.Is(err, model.ErrOutputExists) {
			t.Fatal("unexpected error", err)
		}
		if data := runtimex.Try1(os.ReadFile(output)); string(data) != "keep me\n" {
			t.Fatal("the output file has been modified")
		}
		if len(env.prompts) != 0 {
			t.Fatal("unexpected prompts", env.prompts)
		}
	})

	t.Run("we refuse to overwrite the output before loading the CA", func(t *testing.T) {
		env := newTestEnv(t)
		env.deps.NewWorkflow = NewWorkflow
		output := env.path("wireguard.conf")
		runtimex.Try0(os.WriteFile(output, []byte("keep me\n"), 0600))
		args := []string{"-r", "US East", "-u", "p1234567", "-p", "hunter2",
			"-o", output, "--ca-cert", env.path("nonexistent.crt")}
		err := Main(context.Background(), args, env.deps)
		if !errors.Is(err, model.ErrOutputExists) {
			t.Fatal("unexpected error", err)
		}
		if data := runtimex.Try1(os.ReadFile(output)); string(data) != "keep me\n" {
			t.Fatal("the output file has been modified")
		}
	})

	t.Run("we reject unknown regions before prompting", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.path("wireguard.conf")
		err := Main(context.Background(), []string{"-r", "Atlantis", "-o", output}, env.deps)
		if !errors.Is(err, model.ErrRegionNotFound) {
			t.Fatal("unexpected error", err)
		}
		if len(env.prompts) != 0 {
			t.Fatal("unexpected prompts", env.prompts)
		}
		if _, err := os.Stat(output); !errors.Is(err, fs.ErrNotExist) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("when the credentials are wrong", func(t *testing.T) {
		env := newTestEnv(t)
		output := env.path("wireguard.conf")
		args := []string{"-r", "US East", "-o", output, "-u", "p1234567", "-p", "wrong"}
		err := Main(context.Background(), args, env.deps)
		if !errors.Is(err, model.ErrAuthenticationFailed) {
			t.Fatal("unexpected error", err)
		}
		if _, err := os.Stat(output); !errors.Is(err, fs.ErrNotExist) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("when the prompt fails", func(t *testing.T) {
		env := newTestEnv(t)
		expected := errors.New("interrupted")
		env.deps.Prompter = &mockPrompter{
			MockInput: func(message string) (string, error) {
				return "", expected
			},
		}
		err := Main(context.Background(), []string{"-r", "US East", "-o", env.path("wireguard.conf")}, env.deps)
		if !errors.Is(err, expected) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("when we cannot create the workflow", func(t *testing.T) {
		env := newTestEnv(t)
		expected := errors.New("mocked error")
		env.deps.NewWorkflow = func(settings *config.Config, logger model.Logger, listOnly bool) (*provision.Workflow, error) {
			return nil, expected
		}
		err := Main(context.Background(), []string{"-r", "US East"}, env.deps)
		if !errors.Is(err, expected) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("when the command line is invalid", func(t *testing.T) {
		env := newTestEnv(t)
		err := Main(context.Background(), []string{"--antani"}, env.deps)
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("when the config file is invalid", func(t *testing.T) {
		env := newTestEnv(t)
		path := env.path("pia-wg.hujson")
		runtimex.Try0(os.WriteFile(path, []byte(`{"keygen": "openssl"}`), 0600))
		err := Main(context.Background(), []string{"-c", path, "--list"}, env.deps)
		if !errors.Is(err, config.ErrInvalidKeyGen) {
			t.Fatal("unexpected error", err)
		}
	})
}

func TestAskCredentials(t *testing.T) {
	t.Run("when the password prompt fails", func(t *testing.T) {
		expected := errors.New("interrupted")
		prompter := &mockPrompter{
			MockPassword: func(message string) (string, error) {
				return "", expected
			},
		}
		creds, err := askCredentials(prompter, model.Credentials{Username: "p1234567"})
		if !errors.Is(err, expected) {
			t.Fatal("unexpected error", err)
		}
		if diff := cmp.Diff(model.Credentials{}, creds); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestDescribeError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		expect string
	}{{
		name:   "output exists",
		err:    model.ErrOutputExists,
		expect: "Config file already exists, please delete it first",
	}, {
		name:   "invalid region",
		err:    model.ErrRegionNotFound,
		expect: "Invalid region",
	}, {
		name:   "authentication",
		err:    model.ErrAuthenticationFailed,
		expect: "Error logging in, please try again...",
	}, {
		name:   "registration with body",
		err:    &piaservices.ErrRegistration{StatusCode: 200, Body: []byte(`{"status":"ERROR"}`)},
		expect: `Error adding key to server (status code 200): {"status":"ERROR"}`,
	}, {
		name:   "no bundled CA",
		err:    fmt.Errorf("cannot load the CA certificate: %w", piaservices.ErrNoBundledAnchor),
		expect: "This build does not contain the PIA CA certificate, please use --ca-cert",
	}, {
		name:   "registration",
		err:    model.ErrRegistrationFailed,
		expect: "Error adding key to server",
	}, {
		name:   "keygen",
		err:    model.ErrKeyGen,
		expect: "Cannot generate keys (is wg installed? try --keygen native): key generation failed",
	}, {
		name:   "tls",
		err:    model.ErrTLS,
		expect: "Cannot verify the server certificate: tls error",
	}, {
		name:   "network",
		err:    model.ErrNetwork,
		expect: "Network error: network error",
	}, {
		name:   "parse",
		err:    model.ErrParse,
		expect: "Unexpected response: parse error",
	}, {
		name:   "other",
		err:    io.EOF,
		expect: "EOF",
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.expect, describeError(tc.err)); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestNewWorkflow(t *testing.T) {
	t.Run("listing does not need the CA", func(t *testing.T) {
		settings := config.Default()
		settings.CACert = filepath.Join(t.TempDir(), "nonexistent.crt")
		workflow, err := NewWorkflow(settings, model.DiscardLogger, true)
		if err != nil {
			t.Fatal(err)
		}
		if workflow.Fetcher == nil || workflow.Authenticator != nil {
			t.Fatal("unexpected workflow")
		}
	})

	t.Run("the default settings work in an empty directory", func(t *testing.T) {
		workflow, err := NewWorkflow(config.Default(), model.DiscardLogger, false)
		if err != nil {
			t.Fatal(err)
		}
		client, good := workflow.Authenticator.(*piaservices.Client)
		if !good {
			t.Fatal("expected *piaservices.Client")
		}
		if client.CertPool != nil || client.LoadCertPool != nil {
			t.Fatal("expected to use the bundled CA")
		}
	})

	t.Run("we load the CA file only when needed", func(t *testing.T) {
		settings := config.Default()
		settings.CACert = filepath.Join(t.TempDir(), "nonexistent.crt")
		workflow, err := NewWorkflow(settings, model.DiscardLogger, false)
		if err != nil {
			t.Fatal(err)
		}
		client := workflow.Registrar.(*piaservices.Client)
		if _, err := client.LoadCertPool(); !errors.Is(err, fs.ErrNotExist) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("we load the CA file given in the settings", func(t *testing.T) {
		mitm := testingx.MustNewTLSMITM()
		settings := config.Default()
		settings.CACert = filepath.Join(t.TempDir(), "ca.crt")
		runtimex.Try0(os.WriteFile(settings.CACert, mitm.CACertPEM(), 0600))
		workflow, err := NewWorkflow(settings, model.DiscardLogger, false)
		if err != nil {
			t.Fatal(err)
		}
		client := workflow.Registrar.(*piaservices.Client)
		if pool, err := client.LoadCertPool(); err != nil || pool == nil {
			t.Fatal("cannot load the pool", err)
		}
	})

	t.Run("we honour the key generator setting", func(t *testing.T) {
		settings := config.Default()
		workflow, err := NewWorkflow(settings, model.DiscardLogger, false)
		if err != nil {
			t.Fatal(err)
		}
		if _, good := workflow.KeyGenerator.(*keygen.Exec); !good {
			t.Fatal("expected *keygen.Exec")
		}
		if _, good := workflow.Registrar.(*piaservices.Client); !good {
			t.Fatal("expected *piaservices.Client")
		}

		settings.KeyGen = config.KeyGenNative
		workflow, err = NewWorkflow(settings, model.DiscardLogger, false)
		if err != nil {
			t.Fatal(err)
		}
		if _, good := workflow.KeyGenerator.(keygen.Native); !good {
			t.Fatal("expected keygen.Native")
		}
	})
}
