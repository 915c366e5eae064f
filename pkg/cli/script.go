package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jarvis-assistant/jarvis/pkg/script"
)

func scriptCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "script",
		Usage:     "Replay a YAML script of utterances through the assistant",
		ArgsUsage: "<file>",
		Flags:     routerFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.New("no script file given")
			}

			s, err := script.Load(path)
			if err != nil {
				return err
			}

			r, err := cfg.newRouter(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to start")
			}

			for _, turn := range script.Run(ctx, r, s) {
				fmt.Fprintf(c.Root().Writer, "> %s\n%s\n\n", turn.Utterance, turn.Response)
			}
			return nil
		},
	}
}
