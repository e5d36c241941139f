// Package commands implements the blueprint subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/jarch-dev/blueprint"
	"github.com/jarch-dev/blueprint/handoff"
	"github.com/jarch-dev/blueprint/internal/config"
)

// ErrNotReady is returned by commands that found violations.
var ErrNotReady = blueprint.ErrNotReady

func editorOptions(ctx context.Context) []blueprint.EditorOption {
	return []blueprint.EditorOption{blueprint.WithHistoryDepth(config.Get(ctx).History.Depth)}
}

func decodeOptions(ctx context.Context) blueprint.DecodeOptions {
	return blueprint.DecodeOptions{MaxDepth: config.Get(ctx).Decode.MaxDepth}
}

// docPaths returns the two document files of a project directory.
func docPaths(dir string) (app, graph string) {
	return filepath.Join(dir, blueprint.AppConfigDoc.FileName()),
		filepath.Join(dir, blueprint.EntityGraphDoc.FileName())
}

// readPair decodes both documents concurrently.
func readPair(ctx context.Context, appPath, graphPath string) (*blueprint.Document, *blueprint.Document, error) {
	opt := decodeOptions(ctx)
	var app, graph *blueprint.Document
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := blueprint.ReadDocument(blueprint.AppConfigDoc, appPath, opt)
		if err != nil {
			return fmt.Errorf("%s: %w", appPath, err)
		}
		app = d
		return nil
	})
	g.Go(func() error {
		d, err := blueprint.ReadDocument(blueprint.EntityGraphDoc, graphPath, opt)
		if err != nil {
			return fmt.Errorf("%s: %w", graphPath, err)
		}
		graph = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return app, graph, nil
}

// openSession loads the project in dir. Missing files start from defaults.
func openSession(ctx context.Context, dir string) (*blueprint.Session, error) {
	appPath, graphPath := docPaths(dir)
	s := blueprint.NewSession(editorOptions(ctx)...)
	_, appErr := os.Stat(appPath)
	_, graphErr := os.Stat(graphPath)
	if errors.Is(appErr, os.ErrNotExist) && errors.Is(graphErr, os.ErrNotExist) {
		return s, nil
	}
	app, graph, err := readPair(ctx, appPath, graphPath)
	if err != nil {
		return nil, err
	}
	if _, err := s.App.Load(app); err != nil {
		return nil, err
	}
	if _, err := s.Graph.Load(graph); err != nil {
		return nil, err
	}
	return s, nil
}

// writeSession writes both documents to dir regardless of readiness.
func writeSession(s *blueprint.Session, dir string) error {
	app, err := blueprint.EncodeIndent(s.App.Document())
	if err != nil {
		return err
	}
	graph, err := blueprint.EncodeIndent(s.Graph.Document())
	if err != nil {
		return err
	}
	return handoff.Bundle{AppConfig: app, EntityConfig: graph}.WriteDir(dir)
}
