package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

// exitWords end the interactive session.
var exitWords = map[string]bool{
	"exit":    true,
	"quit":    true,
	"goodbye": true,
}

func chatCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation loop",
		Flags: routerFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := cfg.newRouter(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to start")
			}

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintln(c.Root().Writer, "Jarvis online. Say 'exit' to quit.")

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt || err == io.EOF {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				text := strings.TrimSpace(line)
				if text == "" {
					continue
				}
				if exitWords[strings.ToLower(text)] {
					fmt.Fprintln(c.Root().Writer, "Goodbye.")
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Start()
				resp := r.HandleUtterance(ctx, text, model.SourceTyped)
				sp.Stop()

				fmt.Fprintln(c.Root().Writer, resp)
			}

			return nil
		},
	}
}
