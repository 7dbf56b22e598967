// Command tealeaf is a terminal reader for forum threads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/odlove/tealeaf/internal/app"
	"github.com/odlove/tealeaf/internal/logging"
	"github.com/odlove/tealeaf/internal/prefs"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default ~/.config/tealeaf/config.toml)")
	prefsPath := flag.String("prefs", prefs.DefaultPath(), "path to prefs.toml")
	threadID := flag.Int64("thread", 0, "thread id to open (required)")
	forumID := flag.Int64("forum", 0, "forum id, if known")
	flag.Parse()

	if *threadID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: tealeaf -thread <id> [-forum <id>] [-config <path>]")
		os.Exit(2)
	}

	// A .env next to the binary can carry TEALEAF_API_BASE overrides.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.Run(ctx, app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		ThreadID:   *threadID,
		ForumID:    *forumID,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error.Printf("%v", err)
		os.Exit(1)
	}
}
