// Package generator writes rendered codes to short-lived files so they can
// be uploaded, then removes them.
package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Exporter struct {
	OutputDir  string
	GraceDelay time.Duration
}

// NewExporter resolves outputDir against the working directory.
func NewExporter(outputDir string, graceDelay time.Duration) *Exporter {
	if !filepath.IsAbs(outputDir) {
		wd, _ := os.Getwd()
		outputDir = filepath.Join(wd, outputDir)
	}
	return &Exporter{
		OutputDir:  outputDir,
		GraceDelay: graceDelay,
	}
}

// Artifact is one exported file. It is removed at most once no matter how
// many times Remove is called.
type Artifact struct {
	ID   string
	Name string
	Path string

	once sync.Once
	err  error
}

func (e *Exporter) Create(data []byte, ext string) (*Artifact, error) {
	if err := e.ensureOutputDir(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	name := fmt.Sprintf("qr-%s.%s", id, ext)
	path := filepath.Join(e.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	return &Artifact{ID: id, Name: name, Path: path}, nil
}

// Remove deletes the file. A file that is already gone is not an error.
func (a *Artifact) Remove() error {
	a.once.Do(func() {
		err := os.Remove(a.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			a.err = fmt.Errorf("failed to delete export file: %w", err)
		}
	})
	return a.err
}

// ScheduleRemove removes the artifact after the grace delay so an upload
// that is still reading it can finish. onErr may be nil.
func (e *Exporter) ScheduleRemove(a *Artifact, onErr func(error)) *time.Timer {
	return time.AfterFunc(e.GraceDelay, func() {
		if err := a.Remove(); err != nil && onErr != nil {
			onErr(err)
		}
	})
}

func (e *Exporter) ensureOutputDir() error {
	if _, err := os.Stat(e.OutputDir); os.IsNotExist(err) {
		err = os.MkdirAll(e.OutputDir, os.ModePerm)
		if err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}
	return nil
}
