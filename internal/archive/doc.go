// Package archive extracts worker payload archives with Windows long-path
// support.
//
// Worker bundles contain deeply nested interpreter trees whose absolute
// destination paths routinely exceed the legacy Windows MAX_PATH limit of
// 260 characters. ExtractZip behaves exactly like plain zip extraction
// except that on Windows every destination path is rewritten to the
// extended-length form (\\?\ or \\?\UNC\) immediately before the filesystem
// operation, which bypasses the limit without changing the extracted layout
// or contents. On other platforms paths are used as-is.
package archive
