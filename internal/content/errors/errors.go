package errors

// Package errors provides sentinel errors for content discovery and loading.

import "errors"

var (
	// ErrFileReadFailed indicates reading a content file failed.
	ErrFileReadFailed = errors.New("content file read failed")

	// ErrFileOpenFailed indicates opening a content file for classification failed.
	ErrFileOpenFailed = errors.New("content file open failed")

	// ErrDirReadFailed indicates enumerating a content directory failed.
	ErrDirReadFailed = errors.New("content directory read failed")

	// ErrInvalidRelativePath indicates computing a path relative to its content root failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")
)
