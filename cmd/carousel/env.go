package main

import (
	"io"
	"os"
	"time"

	carousel "github.com/alnah/go-carousel"
)

// LauncherFactory builds the browser launcher for an engine.
type LauncherFactory func(engine string, cfg carousel.LaunchConfig) (carousel.Launcher, error)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Environ     func() []string
	NewLauncher LauncherFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Environ:     os.Environ,
		NewLauncher: carousel.NewLauncher,
	}
}
