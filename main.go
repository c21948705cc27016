// Package main provides the entry point for the Digilib Viewer application.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"digilib-viewer/internal/app"
	"digilib-viewer/internal/config"
	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/params"
	"digilib-viewer/internal/version"
	"digilib-viewer/ui/canvas"
	"digilib-viewer/ui/mainwindow"
	"digilib-viewer/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appID = "de.mpiwg.digilib.viewer"

func main() {
	var (
		configPath string
		logLevel   string
		fullscreen bool
	)

	root := &cobra.Command{
		Use:     "digilib-viewer [image | query]",
		Short:   "Zoom, annotate and measure scanned pages",
		Version: version.Version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil && !errors.Is(err, config.ErrInvalid) {
				return err
			}
			clamped := err
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if fullscreen {
				cfg.Mode = "fullscreen"
			}
			logger, err := logging.New(cfg.LogLevel, cfg.Debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if clamped != nil {
				logger.Warn("settings adjusted", zap.Error(clamped))
			}
			return run(cfg, args, logger)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "settings file")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&fullscreen, "fullscreen", false, "start in fullscreen mode")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string, logger *zap.Logger) error {
	logger.Info("starting", zap.String("version", version.Version), zap.String("commit", version.GitCommit))

	session, err := app.NewSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.ViewerTheme{})
	session.SetAnimator(canvas.Animator{})

	win := mainwindow.New(fyneApp, session, prefs.Load(), logger)

	if len(args) == 1 {
		openArg(win, args[0], logger)
	}

	win.ShowAndRun()
	return nil
}

// openArg opens a page path, or a view given as a query string.
func openArg(win *mainwindow.MainWindow, arg string, logger *zap.Logger) {
	if !strings.Contains(arg, "=") {
		win.Open(arg)
		return
	}
	p, err := params.Parse(arg)
	if err != nil {
		logger.Warn("ignoring bad view parameters", zap.String("query", arg), zap.Error(err))
		return
	}
	win.OpenParams(p)
}
