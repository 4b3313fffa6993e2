// Package cli implements countryctl, the administrative command line for the
// country store. Commands run against the same service stack as the HTTP
// server, so validation and uniqueness rules apply unchanged.
package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/countries/internal/application"
	"github.com/JonMunkholm/countries/internal/config"
	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/logging"
)

// CountryService is the subset of core.Service the commands use.
type CountryService interface {
	GetAll(ctx context.Context) ([]core.Country, error)
	Get(ctx context.Context, code string) (*core.Country, error)
	Store(ctx context.Context, country core.Country) error
	Delete(ctx context.Context, code string) error
}

// RootOptions holds global flags and the service shared by all commands.
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"

	// Service is opened from the environment before a command runs unless
	// already set.
	Service CountryService
	closeFn func() error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Execute runs countryctl with the process arguments. The service is closed
// afterwards whether or not the command succeeded.
func Execute(ctx context.Context) error {
	return execute(ctx, &RootOptions{}, os.Args[1:])
}

func execute(ctx context.Context, opts *RootOptions, args []string) error {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if closeErr := opts.Close(); err == nil {
		err = closeErr
	}
	return err
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "countryctl",
		Short:         "Administer the country store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Service != nil {
				return nil
			}
			return opts.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "environment file loaded before configuration")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// ErrorMessage renders a command error for the terminal. Storage failures
// with a recognised cause get the support code and suggested action ahead of
// the raw error.
func ErrorMessage(err error) string {
	if core.IsDomainError(err) || !core.IsUserFacing(err) {
		return err.Error()
	}
	return core.FormatUserError(err) + "\n" + err.Error()
}

// Close releases whatever open acquired. It is safe to call more than once.
func (o *RootOptions) Close() error {
	if o.closeFn == nil {
		return nil
	}
	closeFn := o.closeFn
	o.closeFn = nil
	return closeFn()
}

// open builds the service from the environment, the way the server does.
func (o *RootOptions) open(ctx context.Context) error {
	// A missing env file is fine; the process environment still applies.
	_ = godotenv.Overload(o.EnvFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	app, err := application.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	o.Service = app.Service
	o.closeFn = app.Close
	return nil
}
