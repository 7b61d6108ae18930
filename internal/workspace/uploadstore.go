package workspace

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/core/ports"
)

// UploadStore tracks the remote file listing plus the in-flight upload and
// refresh flags. Local mutations are optimistic; Refresh reconciles against
// the gateway listing.
type UploadStore struct {
	mu        sync.RWMutex
	files     []domain.RemoteFile
	uploading bool
	loading   bool

	gateway ports.FileGateway
	log     *slog.Logger
}

func NewUploadStore(gateway ports.FileGateway, log *slog.Logger) *UploadStore {
	return &UploadStore{gateway: gateway, log: log}
}

// Refresh replaces the cached listing with the gateway's. On failure the
// cached files are kept and the error is returned; the loading flag is
// cleared either way.
func (s *UploadStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	files, err := s.gateway.List(ctx)
	if err != nil {
		s.log.Error("refresh remote file listing", "error", err)
		return err
	}

	s.mu.Lock()
	s.files = files
	s.mu.Unlock()
	return nil
}

// Files returns a copy of the cached listing.
func (s *UploadStore) Files() []domain.RemoteFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RemoteFile, len(s.files))
	copy(out, s.files)
	return out
}

// Add caches one remote file. A file with the same URI is replaced.
func (s *UploadStore) Add(f domain.RemoteFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.files {
		if s.files[i].URI == f.URI {
			s.files[i] = f
			return
		}
	}
	s.files = append(s.files, f)
}

// Remove drops the file with the given remote name. Missing names are a
// no-op.
func (s *UploadStore) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.files[:0]
	for _, f := range s.files {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	s.files = kept
}

func (s *UploadStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = nil
}

func (s *UploadStore) SetUploading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = v
}

func (s *UploadStore) Uploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploading
}

func (s *UploadStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
