/*
Package errs provides custom error types and application-level error code constants.

These codes identify request, tree, room and upstream failures both in server logs
and in the JSON error bodies returned by the HTTP facade.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON for the target shape.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrInvalidPath indicates that a file or folder path failed the path grammar.
	ErrInvalidPath = 1101

	// ErrInvalidRoomID indicates that a room identifier failed the room id grammar.
	ErrInvalidRoomID = 1102
)

// 2xxx: Room and File Tree Errors
const (
	// ErrRoomNotFound indicates that the room (or its file tree) does not exist.
	ErrRoomNotFound = 2101

	// ErrPathNotFound indicates that a path segment or the target entry is missing.
	ErrPathNotFound = 2201

	// ErrFileNotFound indicates that the path does not name a file.
	ErrFileNotFound = 2202

	// ErrPathExists indicates that a file creation collided with an existing entry.
	ErrPathExists = 2203

	// ErrTreeCorrupted indicates that a stored tree failed sanitization.
	ErrTreeCorrupted = 2204

	// ErrSnapshotNotFound indicates that no snapshot exists under the given key.
	ErrSnapshotNotFound = 2301
)

// 3xxx: Upstream and Optional Feature Errors
const (
	// ErrUpstreamFailure indicates that an external service call failed.
	ErrUpstreamFailure = 3001

	// ErrFeatureDisabled indicates that the requested feature is not configured on this server.
	ErrFeatureDisabled = 3002

	// ErrStorageFailed indicates that the snapshot storage backend failed.
	ErrStorageFailed = 3003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
