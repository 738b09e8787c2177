// Command planview inspects and drives compiled serialization plans.
//
//	planview dump [sample...]        print plan listings
//	planview serialize <sample>      stream a sample value, report chunks
//	planview step <sample>           advance a serialization chunk by chunk
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/jsonplan"
	"github.com/wippyai/jsonplan/config"
	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/naming"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every command.
type globals struct {
	verbose    bool
	configPath string
	naming     string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "planview",
		Short:         "Inspect and run compiled JSON serialization plans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				jsonplan.SetLogger(logger)
			}
			return g.load()
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&g.naming, "naming", "", "member naming policy (camel, snake, upper_snake, kebab, none)")

	root.AddCommand(newDumpCmd(g))
	root.AddCommand(newSerializeCmd(g))
	root.AddCommand(newStepCmd(g))
	return root
}

// load resolves the option set from the config file and flags.
func (g *globals) load() error {
	var err error
	if g.configPath != "" {
		g.cfg, err = config.Load(g.configPath)
	} else {
		g.cfg, err = config.Parse(nil)
	}
	if err != nil {
		return err
	}
	if g.naming != "" {
		p, ok := naming.Lookup(g.naming)
		if !ok {
			return fmt.Errorf("unknown naming policy %q", g.naming)
		}
		g.cfg.Options.NamingPolicy = p
	}
	return nil
}

func (g *globals) options() *convert.Options {
	return g.cfg.Options
}
