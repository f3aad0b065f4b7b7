package lsp

import "fmt"

// FramingError indicates the wire stream from the language server could
// not be parsed as a Content-Length-framed JSON-RPC message. It is
// always fatal: once framing is lost there is no way to resynchronize
// with the stream.
type FramingError struct {
	Cause error
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("lsp: framing error: %v", e.Cause)
}

func (e *FramingError) Unwrap() error { return e.Cause }

// QueryError wraps a server-returned JSON-RPC error for a single
// request. It is always a soft, per-query failure: the caller drops the
// identifier that produced it and continues.
type QueryError struct {
	Method  string
	Code    int64
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("lsp: %s failed: %s (code %d)", e.Method, e.Message, e.Code)
}
