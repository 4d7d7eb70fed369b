package domain

import "errors"

var (
	// ErrFaceBusy means the face lock was not acquired within the caller's timeout.
	ErrFaceBusy = errors.New("face is busy")
	// ErrFaceUnavailable means the face store has not been initialized.
	ErrFaceUnavailable = errors.New("face is unavailable")
)

// Wire error codes, reported per-command in acknowledgement payloads.
// All are recoverable; none is fatal to the process.
const (
	CodeInvalidJSON    = "invalid_json"
	CodeMissingType    = "missing_type"
	CodeUnknownCommand = "unknown_or_invalid_command"
	CodeFaceBusy       = "face_busy"
	CodeFaceUnavail    = "face_unavailable"
	CodeMissingDataB64 = "missing_data_b64"
	CodeBadBase64      = "bad_base64"
	CodeNoMem          = "no_mem"
)
