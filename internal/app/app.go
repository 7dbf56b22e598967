package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/odlove/tealeaf/internal/config"
	"github.com/odlove/tealeaf/internal/forum"
	"github.com/odlove/tealeaf/internal/prefs"
	"github.com/odlove/tealeaf/internal/session"
	"github.com/odlove/tealeaf/internal/social"
	"github.com/odlove/tealeaf/internal/store"
	"github.com/odlove/tealeaf/internal/ui"
)

// Options configure a run of the application.
type Options struct {
	ConfigPath string
	PrefsPath  string

	ThreadID int64
	ForumID  int64
}

// Run wires everything together and blocks until the UI exits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.ThreadID <= 0 {
		return fmt.Errorf("thread id required")
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pr, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	client, err := forum.NewClient(cfg.APIBase)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	st := store.New(store.Options{
		MaxThreads:        cfg.MaxThreads,
		MaxPostsPerThread: cfg.MaxPostsPerThread,
	})
	loader := session.NewLoader(client, st)
	sess := session.NewSession(loader, session.Config{
		ThreadID:      opts.ThreadID,
		ForumID:       opts.ForumID,
		SeeAuthorOnly: pr.SeeAuthorOnly,
		Sort:          pr.SortMode(),
	})
	actions := social.New(client, st)

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	StartPoller(pollCtx, sess, cfg.PollInterval)

	model := ui.New(ui.Deps{
		Store:     st,
		Session:   sess,
		Actions:   actions,
		Prefs:     pr,
		PrefsPath: opts.PrefsPath,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
