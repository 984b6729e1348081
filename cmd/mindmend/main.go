package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"mindmend/internal/cli"
	"mindmend/internal/config"
	"mindmend/internal/engine"
	"mindmend/internal/infra/logging"
	"mindmend/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	eng, err := engine.Default()
	if err != nil {
		return fmt.Errorf("loading lexicon: %w", err)
	}

	// quiet unless MINDMEND_LOG_LEVEL asks otherwise
	level := os.Getenv("MINDMEND_LOG_LEVEL")
	if level == "" {
		level = zerolog.Disabled.String()
	}
	logger := logging.NewWithWriter(os.Stderr, config.LogConfig{Level: level, Format: "console"}, false)

	app := &cli.App{
		Respond: usecase.NewRespondUseCase(eng, nil, 8, logger, false),
		Lexicon: eng.Lexicon(),
	}
	return cli.NewRootCmd(app).Execute()
}
