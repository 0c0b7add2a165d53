// Package profile reads and writes apiperf files: request profiles (JSON or
// YAML) and result files (JSON).
//
// Request profiles store taskLimit and waitTime as strings. Decoding accepts an
// optional trailing ".0" on both and also tolerates plain numbers. The coercion
// stays inside this package; request.Config only ever sees integers.
//
// Every failure is reported as an *Error that matches ErrPersistence. When the
// file content does not describe a valid request it also matches
// request.ErrInvalidConfig.
//
// Writes are serialized through a "<path>.lock" file lock and land atomically
// through a temporary file and rename.
package profile
