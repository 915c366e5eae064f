package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

func memoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Export, import or clear the long-term memory store",
		Commands: []*cli.Command{
			memoryExportCommand(),
			memoryImportCommand(),
			memoryClearCommand(),
		},
	}
}

func memoryExportCommand() *cli.Command {
	var (
		cfg    config
		output string
		format string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file (default: stdout)",
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format (json or yaml)",
			Value:       "json",
			Destination: &format,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, memoryFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Dump all memory records in a stable serializable form",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			// Export only reads the repository; no embedder needed.
			store, err := cfg.newMemoryStore(ctx, nil)
			if err != nil {
				return err
			}

			records, err := store.Export(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to export records")
			}

			data, err := marshalRecords(records, format)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(c.Root().Writer, string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return goerr.Wrap(err, "failed to write export", goerr.V("path", output))
			}
			fmt.Fprintf(c.Root().Writer, "Exported %d records to %s\n", len(records), output)
			return nil
		},
	}
}

func memoryImportCommand() *cli.Command {
	var (
		cfg     config
		replace bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "replace",
			Usage:       "Clear the store before importing",
			Destination: &replace,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, memoryFlags(&cfg)...)

	return &cli.Command{
		Name:      "import",
		Usage:     "Load memory records from an export file (additive by record ID)",
		ArgsUsage: "<file>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			path := c.Args().First()
			if path == "" {
				return goerr.New("no input file given")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read import file", goerr.V("path", path))
			}

			records, err := unmarshalRecords(data, path)
			if err != nil {
				return err
			}

			store, err := cfg.newMemoryStore(ctx, nil)
			if err != nil {
				return err
			}

			imported, err := store.Import(ctx, records, replace)
			if err != nil {
				return goerr.Wrap(err, "failed to import records")
			}

			fmt.Fprintf(c.Root().Writer, "Imported %d of %d records\n", imported, len(records))
			return nil
		},
	}
}

func memoryClearCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, memoryFlags(&cfg)...)

	return &cli.Command{
		Name:  "clear",
		Usage: "Remove all memory records",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			store, err := cfg.newMemoryStore(ctx, nil)
			if err != nil {
				return err
			}

			if err := store.Clear(ctx); err != nil {
				return goerr.Wrap(err, "failed to clear store")
			}
			fmt.Fprintln(c.Root().Writer, "Memory cleared")
			return nil
		},
	}
}

func marshalRecords(records []*model.MemoryRecord, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal records")
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal records")
		}
		return data, nil
	default:
		return nil, goerr.New("unknown format", goerr.V("format", format))
	}
}

func unmarshalRecords(data []byte, path string) ([]*model.MemoryRecord, error) {
	var records []*model.MemoryRecord

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, goerr.Wrap(err, "failed to parse YAML import", goerr.V("path", path))
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, goerr.Wrap(err, "failed to parse JSON import", goerr.V("path", path))
		}
	}

	return records, nil
}
