package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrNoDocument          = errors.New("no document attached")
	ErrDownload            = errors.New("file download failed")
	ErrAcquisition         = errors.New("document acquisition failed")
	ErrExtraction          = errors.New("receipt extraction failed")
	ErrCommit              = errors.New("applying corrections failed")
	ErrSessionNotFound     = errors.New("no active session")
	ErrUnauthorized        = errors.New("unauthorized")
)
