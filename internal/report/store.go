package report

import (
	"bytes"
	"fmt"

	"github.com/signalnine/agentbench/internal/fsutil"
	"github.com/signalnine/agentbench/internal/result"
)

// Store is a result.Store that also writes the markdown companion of every
// loop report.
type Store struct {
	*result.Store
}

func (s *Store) WriteLoopReport(r *result.LoopReport) error {
	if err := s.Store.WriteLoopReport(r); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteMarkdown(r, &buf); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(s.LoopPath(r.LoopIndex, "md"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}
	return nil
}
