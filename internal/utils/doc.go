// Package utils provides shared low-level helpers used throughout the
// polychat internals: the streaming (SSE) HTTP request helper shared by all
// provider adapters and the scanner that decodes Server-Sent Events from a
// vendor response body.
//
// Key entry points: [DoPostStream] together with [SSEScanner].
package utils
