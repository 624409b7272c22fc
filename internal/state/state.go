// Package state persists discovered entities as versioned JSON state records
// under an output directory.
//
// Concurrent traversal branches write records without locking; safety rests
// on the scope-to-path mapping being injective. The writer enforces that
// invariant at runtime: two different entities claiming the same path is a
// hard error instead of a silent overwrite.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/errors"
	"github.com/scopeworks/azscope/pkg/log"
)

const (
	recordContentVersion = "1.0.0.0"

	dirPerms  = 0o755
	filePerms = 0o644
)

// Record is the envelope persisted for every discovered entity. The entity is
// kept verbatim under parameters.input.value so records can be replayed as
// deployment parameters.
type Record struct {
	ContentVersion string     `json:"contentVersion"`
	Parameters     Parameters `json:"parameters"`
}

// Parameters holds the record's single input parameter.
type Parameters struct {
	Input Input `json:"input"`
}

// Input wraps the raw entity value.
type Input struct {
	Value types.RawEntity `json:"value"`
}

// NewRecord wraps an entity in the state record envelope.
func NewRecord(entity types.RawEntity) *Record {
	return &Record{
		ContentVersion: recordContentVersion,
		Parameters:     Parameters{Input: Input{Value: entity}},
	}
}

// PathConflictError reports two distinct entities mapping to the same state
// path, which would make concurrent writes racy.
type PathConflictError struct {
	StatePath  string
	OwnerID    string
	ClaimantID string
}

func (err PathConflictError) Error() string {
	return fmt.Sprintf("state path %q already written for %q, refusing to overwrite it for %q", err.StatePath, err.OwnerID, err.ClaimantID)
}

// Writer persists state records under a root directory.
type Writer struct {
	logger  log.Logger
	owners  *xsync.MapOf[string, string]
	rootDir string
}

// NewWriter returns a Writer rooted at rootDir.
func NewWriter(rootDir string, l log.Logger) *Writer {
	return &Writer{
		rootDir: rootDir,
		logger:  l,
		owners:  xsync.NewMapOf[string, string](),
	}
}

// Write persists the entity as a fresh state record at the given relative
// path and returns the absolute path written. Writing the same path on behalf
// of a different entity ID fails with PathConflictError.
func (w *Writer) Write(entity types.RawEntity, statePath string) (string, error) {
	ownerID := entity.ID()
	if ownerID == "" {
		ownerID = statePath
	}

	if owner, loaded := w.owners.LoadOrStore(statePath, ownerID); loaded && owner != ownerID {
		return "", errors.WithStackTrace(PathConflictError{
			StatePath:  statePath,
			OwnerID:    owner,
			ClaimantID: ownerID,
		})
	}

	fullPath := filepath.Join(w.rootDir, filepath.FromSlash(statePath))
	if err := w.writeRecord(NewRecord(entity), fullPath); err != nil {
		return "", err
	}

	w.logger.Debugf("Wrote state record %s", statePath)

	return fullPath, nil
}

// ReadExisting loads a previously written record so it can be augmented and
// rewritten in place.
func (w *Writer) ReadExisting(statePath string) (*Record, error) {
	fullPath := filepath.Join(w.rootDir, filepath.FromSlash(statePath))

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "reading state record %s", statePath)
	}

	record := new(Record)
	if err := json.Unmarshal(data, record); err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "decoding state record %s", statePath)
	}

	return record, nil
}

// Rewrite replaces the record at the given path. Only valid for paths this
// writer has already written during the current run.
func (w *Writer) Rewrite(record *Record, statePath string) error {
	if _, ok := w.owners.Load(statePath); !ok {
		return errors.Errorf("refusing to rewrite state record %s that was not written this run", statePath)
	}

	fullPath := filepath.Join(w.rootDir, filepath.FromSlash(statePath))

	return w.writeRecord(record, fullPath)
}

func (w *Writer) writeRecord(record *Record, fullPath string) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), dirPerms); err != nil {
		return errors.WithStackTraceAndPrefix(err, "creating state directory for %s", fullPath)
	}

	// MarshalIndent sorts map keys, so an unchanged hierarchy always
	// serializes to identical bytes.
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "encoding state record %s", fullPath)
	}

	data = append(data, '\n')

	if err := os.WriteFile(fullPath, data, filePerms); err != nil {
		return errors.WithStackTraceAndPrefix(err, "writing state record %s", fullPath)
	}

	return nil
}
