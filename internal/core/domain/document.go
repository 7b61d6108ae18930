package domain

import "time"

type DocumentStatus string

const (
	StatusStaged     DocumentStatus = "staged"
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusRejected   DocumentStatus = "rejected"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the server-side ledger record for one upload attempt.
// ExtractedText is the plain text pulled from the artifact at ingest time;
// the worker classifies over it after the staged copy is gone. It never
// leaves the server.
type Document struct {
	ID            string         `json:"id"`
	Filename      string         `json:"filename"`
	MimeType      string         `json:"mime_type"`
	StagingKey    string         `json:"staging_key"`
	RemoteURI     string         `json:"remote_uri,omitempty"`
	RemoteName    string         `json:"remote_name,omitempty"`
	DisplayName   string         `json:"display_name,omitempty"`
	ExtractedText string         `json:"-"`
	Status        DocumentStatus `json:"status"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// RemoteFile references a file registered with the external AI service.
// URI is the unique handle used in subsequent extraction calls.
type RemoteFile struct {
	URI         string `json:"fileUri"`
	DisplayName string `json:"displayName"`
	MimeType    string `json:"mimeType"`
	Name        string `json:"name"`
}

// StagedFile is the normalized artifact handed to the extraction gateway.
// Path points at the staged copy on disk; Data holds the normalized bytes.
type StagedFile struct {
	Key      string
	Path     string
	Data     []byte
	MimeType string
	FileName string
}
