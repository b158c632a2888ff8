package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported indicates a format is not supported.
	ErrUnsupported = errors.New("unsupported file format")
	// ErrEmptyFile indicates a file without a header row.
	ErrEmptyFile = errors.New("empty file")
)

// FileLoadError reports a file that could not be opened or decoded.
type FileLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *FileLoadError) Unwrap() error { return e.Err }

// UnsupportedFormatError names the rejected extension.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("format %q not supported (accepted: %s)", e.Ext, strings.Join(SupportedExtensions(), ", "))
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupported }

// FileSizeError reports a file above the configured size limit.
type FileSizeError struct {
	Path   string
	SizeMB float64
	MaxMB  int
}

func (e *FileSizeError) Error() string {
	return fmt.Sprintf("file too large: %s is %.1f MB (limit %d MB)", e.Path, e.SizeMB, e.MaxMB)
}

// DataValidationError reports loaded data that breaks a limit or shape rule.
type DataValidationError struct {
	Column string
	Reason string
}

func (e *DataValidationError) Error() string {
	if e.Column == "" {
		return "invalid data: " + e.Reason
	}
	return fmt.Sprintf("invalid data in column %q: %s", e.Column, e.Reason)
}
