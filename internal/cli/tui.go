// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/genchat/internal/config"
	"github.com/jeranaias/genchat/internal/ui/chat"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

// runTUI restores the transcript and runs the chat view until the user
// quits. The config file is watched so endpoint changes apply to the
// next request.
func runTUI(ctx context.Context, opts *globalOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	restoreErr := a.ctrl.Restore(ctx)

	m := chat.New(chat.Options{
		Controller: a.ctrl,
		Client:     a.client,
		Theme:      styles.NewTheme(a.cfg.UI.Theme),
		Markdown:   a.cfg.UI.Markdown,
		RestoreErr: restoreErr,
		Logger:     a.logger,
		Context:    ctx,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	watcher, err := config.Watch(ctx, a.configPath, func(cfg *config.Config, err error) {
		if err == nil {
			err = opts.applyFlags(cfg)
		}
		p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("path", a.configPath).Msg("config watch disabled")
	} else {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
