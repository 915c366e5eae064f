package cli

import (
	"context"
	"os"

	"github.com/knadh/koanf/parsers/dotenv"
	koanffile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	"github.com/jarvis-assistant/jarvis/pkg/utils/logging"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	loadDotEnv()

	cmd := &cli.Command{
		Name:  "jarvis",
		Usage: "Hybrid command/voice assistant with long-term memory",
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			scriptCommand(),
			memoryCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// loadDotEnv merges a .env file into the process environment before flag
// parsing so cli.EnvVars sources pick the values up. Existing environment
// variables win, matching dotenv semantics. The file path comes from
// JARVIS_ENV_FILE, defaulting to ".env"; a missing file is not an error.
func loadDotEnv() {
	path := os.Getenv("JARVIS_ENV_FILE")
	if path == "" {
		path = ".env"
	}

	k := koanf.New(".")
	if err := k.Load(koanffile.Provider(path), dotenv.Parser()); err != nil {
		return
	}

	for key, value := range k.All() {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, s)
	}
}
