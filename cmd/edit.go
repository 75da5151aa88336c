package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/rm-hull/pngedit/internal/chunkio"
	"github.com/rm-hull/pngedit/internal/edit"
)

// Edit streams the chunks of the PNG at inPath through the directive list
// and writes the rewritten file to outPath. The output is staged in a
// temporary file and renamed into place on success, so a failed run never
// leaves a partial file behind. With strict set, edits that could not be
// placed (no IDAT chunk in the input) fail the run instead of warning.
func Edit(inPath, outPath string, directives []edit.Directive, strict bool) error {
	plan, err := edit.NewPlan(directives)
	if err != nil {
		return err
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			log.Printf("warning: failed to close input file %s: %v", inPath, err)
		}
	}()

	reader, err := chunkio.NewReader(in)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), "pngedit-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	writer, err := chunkio.NewWriter(tmpFile)
	if err != nil {
		return err
	}

	rw := plan.Rewrite(reader)
	for {
		c, err := rw.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", inPath, err)
		}
		if err := writer.WriteChunk(c); err != nil {
			return err
		}
	}

	if unapplied := rw.Unapplied(); len(unapplied) > 0 {
		if strict {
			return fmt.Errorf("no image data chunk found, %d edit(s) could not be placed: %v", len(unapplied), unapplied)
		}
		log.Printf("warning: no image data chunk found, dropping edits: %v", unapplied)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	// Close tmpFile before renaming to ensure all data is flushed
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), outPath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
