package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
)

const headerContentLength = "content-length"
const headerContentType = "content-type"

// envelope is the union shape of every JSON-RPC frame this tool can
// receive: a request, a notification, a success response, or an error
// response. Which fields are populated tells a reader which of those it
// is. The id and error fields reuse jsonrpc2's wire types so request-id
// matching (numeric or string ids) and error payloads follow the exact
// shapes the JSON-RPC 2.0 spec and the sourcegraph/jsonrpc2 package
// already model.
type envelope struct {
	JSONRPC string           `json:"jsonrpc,omitempty"`
	ID      *jsonrpc2.ID     `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *jsonrpc2.Error  `json:"error,omitempty"`
}

func (e *envelope) isNotification() bool { return e.Method != "" && e.ID == nil }
func (e *envelope) isRequest() bool      { return e.Method != "" && e.ID != nil }
func (e *envelope) isResponse() bool     { return e.Method == "" && e.ID != nil }

// Transport frames and exchanges JSON-RPC messages with a child
// process over its stdio, per the Content-Length-delimited header
// framing LSP uses. Writes are serialized with a mutex since the
// client may be called from only one goroutine at a time but the
// transport itself makes no such assumption.
type Transport struct {
	mu sync.Mutex
	w  io.Writer
	r  *bufio.Reader
}

// NewTransport wraps a child process's stdin/stdout pipes.
func NewTransport(stdout io.Reader, stdin io.Writer) *Transport {
	return &Transport{w: stdin, r: bufio.NewReader(stdout)}
}

// Send serializes value, frames it with a Content-Length header, and
// writes it. A write failure is always fatal to the transport.
func (t *Transport) Send(value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("lsp: encoding message: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(t.w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return fmt.Errorf("lsp: writing header: %w", err)
	}
	if _, err := t.w.Write(body); err != nil {
		return fmt.Errorf("lsp: writing body: %w", err)
	}
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// ReadOne blocks until the next frame's header block and body have been
// read, then returns the decoded envelope. A missing Content-Length
// header is treated as a zero-length body (permits empty heartbeat
// frames) rather than an error; any other parse failure is a
// *FramingError, which is always fatal.
func (t *Transport) ReadOne() (*envelope, error) {
	contentLength := -1

	for {
		line, err := t.r.ReadString('\n')
		if err != nil {
			return nil, &FramingError{Cause: err}
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			return nil, &FramingError{Cause: fmt.Errorf("malformed header: %q", line)}
		}
		name := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])

		switch name {
		case headerContentLength:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, &FramingError{Cause: fmt.Errorf("bad Content-Length %q: %w", value, err)}
			}
			contentLength = n
		case headerContentType:
			// ignored
		default:
			return nil, &FramingError{Cause: fmt.Errorf("unknown header %q", name)}
		}
	}

	if contentLength < 0 {
		contentLength = 0
	}

	body := make([]byte, contentLength)
	if contentLength > 0 {
		if _, err := io.ReadFull(t.r, body); err != nil {
			return nil, &FramingError{Cause: err}
		}
	}

	if len(body) == 0 {
		return &envelope{}, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &FramingError{Cause: fmt.Errorf("decoding body: %w", err)}
	}
	return &env, nil
}
