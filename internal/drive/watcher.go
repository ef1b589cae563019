// internal/drive/watcher.go
package drive

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// SyncResult records what happened to one folder file during a sync.
type SyncResult struct {
	FileName string              `json:"fileName"`
	Kind     string              `json:"kind"`
	Result   domain.ImportResult `json:"result"`
	Error    string              `json:"error,omitempty"`
}

// FolderSync pulls every recognized feed file from one Drive folder
// through the ingest path.
type FolderSync struct {
	service *Service
	ingest  *IngestService
}

func NewFolderSync(service *Service, ingest *IngestService) *FolderSync {
	return &FolderSync{service: service, ingest: ingest}
}

// SyncFolder ingests every CSV, XML and XLSX file in the folder named
// by path. One bad file does not stop the rest.
func (fs *FolderSync) SyncFolder(ctx context.Context, path string) ([]SyncResult, error) {
	folderID, err := fs.service.FindFolderByPath(path)
	if err != nil {
		return nil, err
	}

	files, err := fs.service.ListFiles(folderID)
	if err != nil {
		return nil, err
	}

	var results []SyncResult
	for _, f := range files {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".csv" && ext != ".xml" && ext != ".xlsx" {
			continue
		}

		kind := guessKind(f.Name)
		if kind == "" {
			log.Warn().Str("file", f.Name).Msg("skipping file with unrecognized feed kind")
			continue
		}

		result, err := fs.ingest.IngestFile(ctx, f.ID, kind)
		entry := SyncResult{FileName: f.Name, Kind: kind, Result: result}
		if err != nil {
			entry.Error = err.Error()
			log.Error().Err(err).Str("file", f.Name).Str("kind", kind).Msg("folder sync: ingest failed")
		} else {
			log.Info().Str("file", f.Name).Str("kind", kind).
				Int("imported", result.ImportedCount).Msg("folder sync: file ingested")
		}
		results = append(results, entry)
	}

	return results, nil
}
