// Package writer provides the token writer the execution engine and
// converters emit JSON through.
//
// Writer buffers tokens in a jsoniter.Stream and tracks separator state
// itself, so callers never write commas or colons. Output is only handed to
// the underlying io.Writer on Flush, which lets the streaming facade decide
// when bytes leave the process.
package writer
