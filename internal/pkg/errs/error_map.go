/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its client message and HTTP status.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrInvalidPath:          {Code: ErrInvalidPath, Message: "Invalid path.", Status: http.StatusBadRequest},
	ErrInvalidRoomID:        {Code: ErrInvalidRoomID, Message: "Invalid room ID.", Status: http.StatusBadRequest},

	// 2xxx: Room and File Tree Errors
	ErrRoomNotFound:  {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrPathNotFound:  {Code: ErrPathNotFound, Message: "File/folder not found.", Status: http.StatusNotFound},
	ErrFileNotFound:  {Code: ErrFileNotFound, Message: "File not found or invalid.", Status: http.StatusNotFound},
	ErrPathExists:    {Code: ErrPathExists, Message: "%s already exists.", Status: http.StatusBadRequest},
	ErrTreeCorrupted: {Code: ErrTreeCorrupted, Message: "File tree is corrupted.", Status: http.StatusInternalServerError},

	ErrSnapshotNotFound: {Code: ErrSnapshotNotFound, Message: "Snapshot not found.", Status: http.StatusNotFound},

	// 3xxx: Upstream and Optional Feature Errors
	ErrUpstreamFailure: {Code: ErrUpstreamFailure, Message: "Upstream service failed.", Status: http.StatusBadGateway},
	ErrFeatureDisabled: {Code: ErrFeatureDisabled, Message: "%s is not enabled on this server.", Status: http.StatusServiceUnavailable},
	ErrStorageFailed:   {Code: ErrStorageFailed, Message: "Snapshot storage failed. Please try again.", Status: http.StatusBadGateway},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
