package relocate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/storage"
)

// Restore moves journaled files back to where they came from. forget is
// called for every move that was undone. Emptied group folders are removed.
func Restore(ctx context.Context, moves []storage.Move, forget func(storage.Move) error) (*Summary, error) {
	sum := &Summary{Planned: len(moves)}
	dirs := make(map[string]struct{})
	for _, mv := range moves {
		if err := ctx.Err(); err != nil {
			sum.Skipped = len(moves) - sum.Moved - sum.Failed
			return sum, fmt.Errorf("restore interrupted: %w", err)
		}
		logger := logrus.WithField("path", mv.Destination)
		if err := os.MkdirAll(filepath.Dir(mv.Source), 0755); err != nil {
			logger.Errorf("Error recreating source directory: %v", err)
			sum.Failed++
			continue
		}
		if err := moveFile(mv.Destination, mv.Source); err != nil {
			logger.Errorf("Error restoring file: %v", err)
			sum.Failed++
			continue
		}
		sum.Moved++
		dirs[filepath.Dir(mv.Destination)] = struct{}{}
		if forget != nil {
			if err := forget(mv); err != nil {
				logger.Errorf("Error updating journal: %v", err)
			}
		}
	}
	for dir := range dirs {
		// Fails harmlessly when the folder still holds files.
		_ = os.Remove(dir)
	}
	return sum, nil
}
