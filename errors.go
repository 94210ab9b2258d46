package ckptedit

import "errors"

// Sentinel errors for checkpoint rewriting.
var (
	// ErrEmptyAddress is returned when the target address is empty.
	ErrEmptyAddress = errors.New("ckptedit: target address is empty")

	// ErrImageEntryMissing is returned when the archive does not contain
	// the checkpoint image entry after a full scan.
	ErrImageEntryMissing = errors.New("ckptedit: checkpoint image entry not found in archive")

	// ErrEntryTooLarge is returned when a patched entry exceeds the
	// configured in-memory size limit.
	ErrEntryTooLarge = errors.New("ckptedit: archive entry exceeds size limit")
)
