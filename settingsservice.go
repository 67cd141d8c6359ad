package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"folio/internal/config"
	"folio/internal/library"
)

type SettingsService struct {
	roots    *library.RootRepository
	settings config.Settings
	paths    config.Paths
}

func NewSettingsService(roots *library.RootRepository, settings config.Settings, paths config.Paths) *SettingsService {
	return &SettingsService{roots: roots, settings: settings, paths: paths}
}

func (s *SettingsService) Settings() config.Settings {
	return s.settings
}

func (s *SettingsService) Paths() config.Paths {
	return s.paths
}

func (s *SettingsService) ListRoots(ctx context.Context) ([]library.Root, error) {
	return s.roots.List(ctx)
}

func (s *SettingsService) AddRoot(ctx context.Context, path string) (library.Root, error) {
	cleaned, err := library.NormalizePath(path)
	if err != nil {
		return library.Root{}, err
	}

	info, err := os.Stat(cleaned)
	if err != nil {
		return library.Root{}, fmt.Errorf("add library root: %w", err)
	}
	if !info.IsDir() {
		return library.Root{}, fmt.Errorf("add library root: %s is not a directory", cleaned)
	}

	root, err := s.roots.Add(ctx, cleaned)
	if errors.Is(err, library.ErrRootExists) {
		return library.Root{}, fmt.Errorf("library root %s is already added", cleaned)
	}
	return root, err
}

func (s *SettingsService) RemoveRoot(ctx context.Context, path string) error {
	err := s.roots.Delete(ctx, path)
	if errors.Is(err, library.ErrRootNotFound) {
		return fmt.Errorf("library root %s does not exist", path)
	}
	return err
}

func (s *SettingsService) SetRootEnabled(ctx context.Context, path string, enabled bool) error {
	err := s.roots.SetEnabled(ctx, path, enabled)
	if errors.Is(err, library.ErrRootNotFound) {
		return fmt.Errorf("library root %s does not exist", path)
	}
	return err
}
