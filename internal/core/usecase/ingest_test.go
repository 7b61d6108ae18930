package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/workspace"
)

type fakeNormalizer struct {
	staged domain.StagedFile
	err    error
}

func (f *fakeNormalizer) Normalize(_ context.Context, filename, mimeType string, _ int64, body io.Reader) (domain.StagedFile, error) {
	if f.err != nil {
		return domain.StagedFile{}, f.err
	}
	if f.staged.Key == "" {
		data, _ := io.ReadAll(body)
		return domain.StagedFile{Key: "1730000000000_" + filename, Data: data, MimeType: mimeType, FileName: filename}, nil
	}
	return f.staged, nil
}

type fakeStaging struct {
	saveErr   error
	saved     map[string][]byte
	removed   []string
	removeErr error
}

func newFakeStaging() *fakeStaging {
	return &fakeStaging{saved: make(map[string][]byte)}
}

func (f *fakeStaging) Save(_ context.Context, key string, data io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	b, _ := io.ReadAll(data)
	f.saved[key] = b
	return "/staging/" + key, nil
}

func (f *fakeStaging) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.saved[key]
	if !ok {
		return nil, errors.New("not staged")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStaging) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return f.removeErr
}

type fakeFileGateway struct {
	remote    domain.RemoteFile
	uploadErr error
	uploads   int
}

func (f *fakeFileGateway) Upload(_ context.Context, staged domain.StagedFile) (domain.RemoteFile, error) {
	f.uploads++
	if f.uploadErr != nil {
		return domain.RemoteFile{}, f.uploadErr
	}
	if f.remote.URI == "" {
		return domain.RemoteFile{URI: "files/abc", DisplayName: staged.FileName, MimeType: staged.MimeType, Name: "abc"}, nil
	}
	return f.remote, nil
}

func (f *fakeFileGateway) List(context.Context) ([]domain.RemoteFile, error) { return nil, nil }
func (f *fakeFileGateway) Delete(context.Context, string) error              { return nil }

type fakeDocRepo struct {
	createErr   error
	statusErr   error
	remoteErr   error
	created     []*domain.Document
	statuses    []domain.DocumentStatus
	errMsgs     []string
	remoteSaved []string
	byID        map[string]*domain.Document
	getErr      error
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{byID: make(map[string]*domain.Document)}
}

func (f *fakeDocRepo) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, doc)
	f.byID[doc.ID] = doc
	return nil
}

func (f *fakeDocRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	return doc, nil
}

func (f *fakeDocRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses = append(f.statuses, status)
	f.errMsgs = append(f.errMsgs, errMessage)
	if doc, ok := f.byID[id]; ok {
		doc.Status = status
		doc.Error = errMessage
	}
	return nil
}

func (f *fakeDocRepo) SaveRemoteFile(_ context.Context, id string, remote domain.RemoteFile) error {
	if f.remoteErr != nil {
		return f.remoteErr
	}
	f.remoteSaved = append(f.remoteSaved, id)
	if doc, ok := f.byID[id]; ok {
		doc.RemoteURI = remote.URI
		doc.RemoteName = remote.Name
		doc.DisplayName = remote.DisplayName
		doc.Status = domain.StatusUploaded
	}
	return nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishDocumentStaged(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeDocumentStaged(context.Context, func(context.Context, string) error) error {
	return nil
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newIngestFixture() (*IngestDocumentUseCase, *fakeStaging, *fakeFileGateway, *fakeDocRepo, *fakeQueue, *workspace.UploadStore) {
	staging := newFakeStaging()
	gateway := &fakeFileGateway{}
	repo := newFakeDocRepo()
	queue := &fakeQueue{}
	uploads := workspace.NewUploadStore(gateway, testLogger())
	uc := NewIngestDocumentUseCase(&fakeNormalizer{}, staging, &fakeTextExtractor{}, gateway, repo, queue, uploads, testLogger())
	return uc, staging, gateway, repo, queue, uploads
}

func TestUploadHappyPath(t *testing.T) {
	uc, staging, _, repo, queue, uploads := newIngestFixture()

	doc, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 9, strings.NewReader("%PDF-data"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" || doc.Status != domain.StatusUploaded {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.RemoteURI != "files/abc" {
		t.Fatalf("RemoteURI = %q", doc.RemoteURI)
	}
	if len(repo.created) != 1 {
		t.Fatalf("ledger records = %d, want 1", len(repo.created))
	}
	if doc.ExtractedText != "%PDF-data" {
		t.Fatalf("ExtractedText = %q", doc.ExtractedText)
	}
	if len(repo.remoteSaved) != 1 || repo.remoteSaved[0] != doc.ID {
		t.Fatalf("remote handle not saved to ledger: %v", repo.remoteSaved)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("published = %v", queue.published)
	}
	if len(staging.removed) != 1 {
		t.Fatalf("staged artifact not cleaned up: %v", staging.removed)
	}
	if files := uploads.Files(); len(files) != 1 || files[0].URI != "files/abc" {
		t.Fatalf("upload store files = %v", files)
	}
	if uploads.Uploading() {
		t.Fatalf("uploading flag left set")
	}
}

func TestUploadNormalizerErrorPassesThrough(t *testing.T) {
	uc, staging, gateway, _, _, _ := newIngestFixture()
	ncErr := domain.NewUploadError(domain.CodeInvalidFileFormat, "unsupported", nil)
	uc.normalizer = &fakeNormalizer{err: ncErr}

	_, err := uc.Upload(context.Background(), "a.exe", "application/octet-stream", 4, strings.NewReader("MZ"))
	ue, ok := domain.AsUploadError(err)
	if !ok || ue.Code != domain.CodeInvalidFileFormat {
		t.Fatalf("error = %v, want INVALID_FILE_FORMAT", err)
	}
	if gateway.uploads != 0 {
		t.Fatalf("gateway called after normalization failure")
	}
	if len(staging.removed) != 0 {
		t.Fatalf("nothing was staged, nothing should be removed")
	}
}

func TestUploadGatewayFailureStillCleansUp(t *testing.T) {
	uc, staging, gateway, repo, _, _ := newIngestFixture()
	gateway.uploadErr = errors.New("service unavailable")

	_, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 4, strings.NewReader("data"))
	ue, ok := domain.AsUploadError(err)
	if !ok || ue.Code != domain.CodeUploadFailed {
		t.Fatalf("error = %v, want UPLOAD_FAILED", err)
	}
	if ue.Unwrap() == nil {
		t.Fatalf("underlying cause dropped")
	}
	if len(staging.removed) != 1 {
		t.Fatalf("staged artifact not cleaned up after gateway failure")
	}
	if len(repo.created) != 1 {
		t.Fatalf("ledger records = %d, want 1", len(repo.created))
	}
	if repo.created[0].Status != domain.StatusFailed || repo.created[0].Error == "" {
		t.Fatalf("failed upload not marked on ledger: %+v", repo.created[0])
	}
}

func TestUploadRecordsLedgerBeforeGateway(t *testing.T) {
	uc, _, gateway, repo, _, _ := newIngestFixture()
	repo.createErr = errors.New("db down")

	_, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 4, strings.NewReader("data"))
	ue, ok := domain.AsUploadError(err)
	if !ok || ue.Code != domain.CodeUploadFailed {
		t.Fatalf("error = %v, want UPLOAD_FAILED", err)
	}
	if gateway.uploads != 0 {
		t.Fatalf("gateway called before ledger record existed")
	}
}

func TestUploadTextExtractionFailureProceeds(t *testing.T) {
	uc, _, _, repo, queue, _ := newIngestFixture()
	uc.extractor = &fakeTextExtractor{err: errors.New("unreadable")}

	doc, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 4, strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ExtractedText != "" {
		t.Fatalf("ExtractedText = %q, want empty", doc.ExtractedText)
	}
	if len(repo.created) != 1 || len(queue.published) != 1 {
		t.Fatalf("pipeline short-circuited by advisory extraction failure")
	}
}

func TestUploadPublishFailureMarksFailed(t *testing.T) {
	uc, _, _, repo, queue, _ := newIngestFixture()
	queue.publishErr = errors.New("nats down")

	_, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 4, strings.NewReader("data"))
	ue, ok := domain.AsUploadError(err)
	if !ok || ue.Code != domain.CodeUploadFailed {
		t.Fatalf("error = %v, want UPLOAD_FAILED", err)
	}
	if len(repo.created) != 1 || repo.created[0].Status != domain.StatusFailed {
		t.Fatalf("publish failure not marked on ledger: %+v", repo.created)
	}
}

func TestUploadGatewayInitErrorKeepsCode(t *testing.T) {
	uc, _, gateway, _, _, _ := newIngestFixture()
	gateway.uploadErr = domain.NewUploadError(domain.CodeInitFailed, "missing api key", nil)

	_, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 4, strings.NewReader("data"))
	ue, ok := domain.AsUploadError(err)
	if !ok || ue.Code != domain.CodeInitFailed {
		t.Fatalf("error = %v, want INIT_FAILED preserved", err)
	}
}

func TestUploadStagingFailureSkipsGateway(t *testing.T) {
	uc, staging, gateway, _, _, _ := newIngestFixture()
	staging.saveErr = errors.New("disk full")

	_, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 4, strings.NewReader("data"))
	ue, ok := domain.AsUploadError(err)
	if !ok || ue.Code != domain.CodeUploadFailed {
		t.Fatalf("error = %v, want UPLOAD_FAILED", err)
	}
	if gateway.uploads != 0 {
		t.Fatalf("gateway called after staging failure")
	}
}

func TestUploadCleanupFailureNotSurfaced(t *testing.T) {
	uc, staging, _, _, _, _ := newIngestFixture()
	staging.removeErr = errors.New("permission denied")

	if _, err := uc.Upload(context.Background(), "invoice.pdf", "application/pdf", 4, strings.NewReader("data")); err != nil {
		t.Fatalf("cleanup failure surfaced: %v", err)
	}
}
