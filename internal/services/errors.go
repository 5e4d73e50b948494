package services

import "errors"

// Service errors
var (
	// Snapshot errors
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrEmptyUpload      = errors.New("uploaded file is empty")

	// Query errors
	ErrProjectNotFound    = errors.New("project not found")
	ErrUnknownDimension   = errors.New("unknown allocation dimension")
	ErrNoProjectNameField = errors.New("snapshot has no project name column")
)
