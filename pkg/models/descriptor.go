package models

import (
	"strings"
	"time"
)

// FileDescriptor represents a file handed to the similarity engine.
// The engine borrows it read-only; the caller owns it.
type FileDescriptor struct {
	// Path uniquely identifies the file
	Path string `json:"path"`

	// Content is the raw text, nil when it was not loaded
	Content *string `json:"content,omitempty"`

	// Metadata holds cheap attributes known without reading the content
	Metadata FileMetadata `json:"metadata"`
}

// FileMetadata holds file attributes
type FileMetadata struct {
	// Size in bytes
	Size int64 `json:"size"`
	// Extension including the leading dot (e.g. ".md")
	Extension string `json:"extension,omitempty"`
	// MimeType as detected by the loader
	MimeType string `json:"mime_type,omitempty"`
	// LastModified is the last modification time
	LastModified time.Time `json:"last_modified"`
}

// NewFileDescriptor creates a descriptor with content
func NewFileDescriptor(path, content string, metadata FileMetadata) FileDescriptor {
	return FileDescriptor{
		Path:     path,
		Content:  &content,
		Metadata: metadata,
	}
}

// HasContent reports whether content was loaded
func (f FileDescriptor) HasContent() bool {
	return f.Content != nil
}

// Text returns the content, or the empty string when absent
func (f FileDescriptor) Text() string {
	if f.Content == nil {
		return ""
	}
	return *f.Content
}

// Validate checks that the descriptor can be analyzed
func (f FileDescriptor) Validate() error {
	if strings.TrimSpace(f.Path) == "" {
		return &ValidationError{Field: "Path", Message: "path is required"}
	}
	if f.Metadata.Size < 0 {
		return &ValidationError{Field: "Metadata.Size", Message: "size cannot be negative"}
	}
	return nil
}

// SameMetadata reports whether two metadata values are equal.
// Timestamps are compared with time.Equal so monotonic readings are ignored.
func (m FileMetadata) SameMetadata(other FileMetadata) bool {
	return m.Size == other.Size &&
		m.Extension == other.Extension &&
		m.MimeType == other.MimeType &&
		m.LastModified.Equal(other.LastModified)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
