package glview

import "errors"

// Load failures are reported, not escalated: functions that hit one log a
// diagnostic and return an absent result to the caller. Match against these
// sentinels with errors.Is.
var (
	// ErrFileUnreadable means the named file's bytes could not be obtained.
	ErrFileUnreadable = errors.New("glview: file unreadable")

	// ErrTooShort means PVR data ends before its header or payload does.
	ErrTooShort = errors.New("glview: PVR data too short")

	// ErrBadMagic means the PVR magic field does not read "PVR!".
	ErrBadMagic = errors.New("glview: bad PVR magic")

	// ErrBadDimensions means the PVR header declares a zero or implausibly
	// large texture dimension.
	ErrBadDimensions = errors.New("glview: bad PVR dimensions")

	// ErrUnsupportedFormat means the PVR pixel format is either recognized
	// but unsupported, or unknown.
	ErrUnsupportedFormat = errors.New("glview: unsupported PVR pixel format")

	// ErrUnrecognizedDocument means the atlas document is not a dictionary
	// property list with parseable frames.
	ErrUnrecognizedDocument = errors.New("glview: unrecognized atlas document")

	// ErrMissingTexture means the atlas could not resolve its base image.
	ErrMissingTexture = errors.New("glview: atlas texture missing")

	// ErrNoFrames means the atlas document declares no frames.
	ErrNoFrames = errors.New("glview: atlas document has no frames")
)
