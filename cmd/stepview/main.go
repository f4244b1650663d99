// Package main is the entry point for the stepview model viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/asset"
	"github.com/Faultbox/stepview/internal/config"
	"github.com/Faultbox/stepview/internal/engine/loop"
	"github.com/Faultbox/stepview/internal/engine/renderer"
	"github.com/Faultbox/stepview/internal/engine/screenshot"
	"github.com/Faultbox/stepview/internal/engine/window"
	"github.com/Faultbox/stepview/internal/logger"
	"github.com/Faultbox/stepview/internal/metadata"
	"github.com/Faultbox/stepview/internal/panel"
	"github.com/Faultbox/stepview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Log.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	id := config.AssetID()
	if id == "" {
		return errors.New("no asset given, pass --asset or an identifier argument")
	}

	logger.Log.Info("=== stepview ===", zap.String("asset", id))
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := asset.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout)
	meta, err := loadMetadata(ctx, client, id)
	if err != nil {
		logger.Log.Warn("metadata unavailable, components will use fallback names", zap.Error(err))
	}

	win, err := window.New(window.Config{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Close()

	l := loop.New()
	v := viewer.New(l, win, renderer.Factory(win.Size), asset.NewLoader(client), cfg.Viewer)
	defer func() {
		v.Close()
		v.Wait()
	}()

	v.Subscribe(func(s viewer.State) {
		title := cfg.Window.Title
		switch {
		case s.Error != "":
			title += " - " + s.Error
		case s.Loading:
			title += " - loading"
		case s.Hovered != nil:
			title += " - " + s.Hovered.DisplayName
		}
		win.SetTitle(title)
	})

	shots := screenshot.New(cfg.Window.ScreenshotDir, "stepview")
	win.OnKey(func(key sdl.Scancode) {
		if key == sdl.SCANCODE_F12 {
			requestScreenshot(win, shots)
		}
	})

	if cfg.Panel.Addr != "" {
		hub := panel.NewHub()
		v.Subscribe(hub.Publish)
		go func() {
			if err := panel.ListenAndServe(ctx, cfg.Panel.Addr, hub); err != nil {
				logger.Log.Error("panel server failed", zap.Error(err))
			}
		}()
	}

	if err := v.SetAsset(id, meta); err != nil {
		return fmt.Errorf("mount viewer: %w", err)
	}

	if err := l.Run(ctx, win); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadMetadata reads the --metadata file when given, otherwise the metadata
// tree stored on the registry's file record.
func loadMetadata(ctx context.Context, client *asset.Client, id string) (*metadata.Tree, error) {
	if path := config.MetadataPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		return metadata.Parse(data)
	}

	rec, err := client.FileRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return metadata.Parse(rec.MetadataJSON)
}

type capturer interface {
	RequestCapture(fn func(*image.RGBA, error))
}

// requestScreenshot saves the next frame of every attached surface that
// supports capture.
func requestScreenshot(win *window.Window, shots *screenshot.Capture) {
	for _, s := range win.Surfaces() {
		c, ok := s.(capturer)
		if !ok {
			continue
		}
		c.RequestCapture(func(img *image.RGBA, err error) {
			if err != nil {
				logger.Log.Warn("screenshot failed", zap.Error(err))
				return
			}
			go func() {
				path, err := shots.Save(img)
				if err != nil {
					logger.Log.Warn("screenshot failed", zap.Error(err))
					return
				}
				logger.Log.Info("screenshot saved", zap.String("path", path))
			}()
		})
	}
}
