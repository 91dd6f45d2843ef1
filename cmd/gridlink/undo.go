package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/1broseidon/gridlink/internal/runtimepath"
	"github.com/1broseidon/gridlink/internal/tiling"
)

// saveUndoState writes state for a later 'gridlink undo'. An empty state
// leaves the previous file alone.
func saveUndoState(path string, state tiling.UndoState) error {
	if len(state) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode undo state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write undo state: %w", err)
	}
	return nil
}

// loadUndoState reads state saved by saveUndoState. A missing file is an
// empty state.
func loadUndoState(path string) (tiling.UndoState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return tiling.UndoState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var state tiling.UndoState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}

func runUndo(args []string) int {
	fs := flag.NewFlagSet("undo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridlink undo")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Restore the windows of the active display to where they were before")
		fmt.Fprintln(os.Stderr, "the last 'gridlink tile'.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "undo takes no arguments")
		fs.Usage()
		return 2
	}

	path, err := runtimepath.UndoStatePath()
	if err != nil {
		return fail(err)
	}
	state, err := loadUndoState(path)
	if err != nil {
		return fail(err)
	}
	if len(state) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to undo")
		return 0
	}

	_, s, err := common.open(context.Background())
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	s.tiler.RestoreUndoState(state)
	if err := s.tiler.Undo(); err != nil {
		return fail(err)
	}
	if err := saveUndoStateOrRemove(path, s.tiler.UndoState()); err != nil {
		s.logger.Warn("failed to update undo state", "path", path, "err", err)
	}
	return 0
}

// saveUndoStateOrRemove keeps the undo state of displays other than the one
// just restored and removes the file once nothing is left.
func saveUndoStateOrRemove(path string, state tiling.UndoState) error {
	if len(state) == 0 {
		err := os.Remove(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return saveUndoState(path, state)
}

// rememberUndo stores the tiler's undo state after a tiling run.
func rememberUndo(s *session) {
	path, err := runtimepath.UndoStatePath()
	if err == nil {
		err = saveUndoState(path, s.tiler.UndoState())
	}
	if err != nil {
		s.logger.Warn("failed to save undo state", "err", err)
	}
}
