package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg    config
		source string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Aliases:     []string{"s"},
			Usage:       "Utterance source (typed, speech, scripted)",
			Value:       "typed",
			Sources:     cli.EnvVars("JARVIS_SOURCE"),
			Destination: &source,
		},
	}
	flags = append(flags, routerFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Process a single utterance and print the response",
		ArgsUsage: "<utterance>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" {
				return goerr.New("no utterance given")
			}

			src, err := parseSource(source)
			if err != nil {
				return err
			}

			r, err := cfg.newRouter(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to start")
			}

			// A response is always produced, even a degraded one; only
			// startup failures above exit non-zero.
			resp := r.HandleUtterance(ctx, text, src)
			fmt.Fprintln(c.Root().Writer, resp)
			return nil
		},
	}
}
