// Package gemini talks to the Google AI file service: file registration,
// listing, deletion and schema-constrained generation over uploaded files.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/resilience"
)

type Client struct {
	baseURL string
	apiKey  string
	model   string

	httpClient *http.Client
	executor   *resilience.Executor

	initOnce sync.Once
	initErr  error
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// ensureInit validates the credential on first use. Construction is lazy so
// a misconfigured key fails the first request, not process startup.
func (c *Client) ensureInit() error {
	c.initOnce.Do(func() {
		if c.apiKey == "" {
			c.initErr = domain.NewUploadError(domain.CodeInitFailed, "file service api key is not set", nil)
		}
	})
	return c.initErr
}

type remoteFilePayload struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	MimeType    string `json:"mimeType"`
	URI         string `json:"uri"`
}

func (p remoteFilePayload) toDomain() domain.RemoteFile {
	return domain.RemoteFile{
		URI:         p.URI,
		DisplayName: p.DisplayName,
		MimeType:    p.MimeType,
		Name:        strings.TrimPrefix(p.Name, "files/"),
	}
}

// Upload registers the staged artifact with the file service and returns the
// remote handle used in later extraction calls.
func (c *Client) Upload(ctx context.Context, staged domain.StagedFile) (domain.RemoteFile, error) {
	if err := c.ensureInit(); err != nil {
		return domain.RemoteFile{}, err
	}

	var response struct {
		File remoteFilePayload `json:"file"`
	}
	call := func(ctx context.Context) error {
		return c.uploadRaw(ctx, staged, &response)
	}

	err := c.execute(ctx, "gemini.upload_file", call)
	if err != nil {
		return domain.RemoteFile{}, domain.NewUploadError(domain.CodeUploadFailed,
			fmt.Sprintf("upload %s to file service", staged.FileName), wrapTemporaryIfNeeded("upload file", err))
	}
	return response.File.toDomain(), nil
}

// List returns all files currently registered with the service, walking the
// paged listing to the end.
func (c *Client) List(ctx context.Context) ([]domain.RemoteFile, error) {
	if err := c.ensureInit(); err != nil {
		return nil, err
	}

	var out []domain.RemoteFile
	pageToken := ""
	for {
		var response struct {
			Files         []remoteFilePayload `json:"files"`
			NextPageToken string              `json:"nextPageToken"`
		}
		call := func(ctx context.Context) error {
			return c.getJSON(ctx, c.listPath(pageToken), &response, "list")
		}
		if err := c.execute(ctx, "gemini.list_files", call); err != nil {
			return nil, wrapTemporaryIfNeeded("list files", err)
		}
		for _, f := range response.Files {
			out = append(out, f.toDomain())
		}
		if response.NextPageToken == "" {
			return out, nil
		}
		pageToken = response.NextPageToken
	}
}

// Delete removes one remote file by its short name.
func (c *Client) Delete(ctx context.Context, name string) error {
	if err := c.ensureInit(); err != nil {
		return err
	}

	call := func(ctx context.Context) error {
		return c.deleteResource(ctx, "/v1beta/files/"+name, "delete")
	}
	if err := c.execute(ctx, "gemini.delete_file", call); err != nil {
		var statusErr *HTTPStatusError
		if asHTTPStatusError(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return domain.WrapError(domain.ErrDocumentNotFound, "delete remote file", err)
		}
		return wrapTemporaryIfNeeded("delete file", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	if c.executor == nil {
		return call(ctx)
	}
	return c.executor.Execute(ctx, operation, call, classifyGeminiError)
}

func (c *Client) listPath(pageToken string) string {
	path := "/v1beta/files?pageSize=100"
	if pageToken != "" {
		path += "&pageToken=" + pageToken
	}
	return path
}
