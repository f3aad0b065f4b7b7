// Package lsp drives a language server child process as a client: it
// owns the process's stdin exclusively, runs a dedicated reader
// goroutine that owns stdout, and exposes the three requests the
// indexing pipeline needs (initialize, didOpen, goto-definition).
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/jsonrpc2"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Client is a single-user-at-a-time JSON-RPC client for one language
// server process: the crawler that owns it never has more than one
// request in flight, so no internal request multiplexing is needed —
// awaitResponse simply drains frames until it sees the id it is
// waiting for.
type Client struct {
	RunID     string
	transport *Transport
	frames    <-chan *envelope
	readErrs  <-chan error
	nextID    uint64
	proc      *exec.Cmd
}

// Spawn starts the language server process, wires its stdio through a
// Transport, and starts the background reader goroutine that owns
// stdout. It does not perform the LSP handshake — call Initialize for
// that.
func Spawn(ctx context.Context, command string, args []string, stderr io.Writer) (*Client, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lsp: spawning %q: %w", command, err)
	}

	transport := NewTransport(stdout, stdin)
	frames := make(chan *envelope)
	readErrs := make(chan error, 1)

	go func() {
		defer close(frames)
		for {
			frame, err := transport.ReadOne()
			if err != nil {
				readErrs <- err
				return
			}
			frames <- frame
		}
	}()

	return &Client{
		RunID:     uuid.NewString()[:8],
		transport: transport,
		frames:    frames,
		readErrs:  readErrs,
		proc:      cmd,
	}, nil
}

// Close terminates the child process.
func (c *Client) Close() error {
	if c.proc == nil || c.proc.Process == nil {
		return nil
	}
	return c.proc.Process.Kill()
}

func (c *Client) allocID() jsonrpc2.ID {
	id := jsonrpc2.ID{Num: c.nextID}
	c.nextID++
	return id
}

func (c *Client) sendRequest(method string, params any, id jsonrpc2.ID) error {
	return c.transport.Send(&envelope{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
		Params:  mustMarshal(params),
	})
}

func (c *Client) sendNotification(method string, params any) error {
	return c.transport.Send(&envelope{
		JSONRPC: "2.0",
		Method:  method,
		Params:  mustMarshal(params),
	})
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// params are always one of our own request structs; a marshal
		// failure here is a programming error, not a runtime condition.
		panic(fmt.Sprintf("lsp: marshaling params: %v", err))
	}
	return data
}

// awaitResponse drains frames until it sees a success or error response
// whose id matches want. Unsolicited server requests and notifications
// are silently discarded, per the concurrency contract in §4.2.
func (c *Client) awaitResponse(method string, want jsonrpc2.ID) (json.RawMessage, error) {
	for frame := range c.frames {
		if !frame.isResponse() || *frame.ID != want {
			// unsolicited request/notification, or a response to an id
			// we're no longer waiting on: drop and keep draining.
			continue
		}
		if frame.Error != nil {
			return nil, &QueryError{Method: method, Code: frame.Error.Code, Message: frame.Error.Message}
		}
		return frame.Result, nil
	}
	return nil, <-c.readErrs
}

// Initialize performs the LSP handshake: sends `initialize` with the
// given root path, awaits success, then fires the `initialized`
// notification.
func (c *Client) Initialize(rootPath string) error {
	id := c.allocID()
	rootURI := fileURI(rootPath)
	params := protocol.InitializeParams{
		ProcessID: intPtr(os.Getpid()),
		RootURI:   &rootURI,
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{},
		},
		Trace: traceValuePtr(protocol.TraceValueVerbose),
	}
	if err := c.sendRequest("initialize", params, id); err != nil {
		return fmt.Errorf("lsp: sending initialize: %w", err)
	}
	if _, err := c.awaitResponse("initialize", id); err != nil {
		return fmt.Errorf("lsp: server rejected initialize: %w", err)
	}
	return c.sendNotification("initialized", protocol.InitializedParams{})
}

// DidOpen tells the server about a file's contents. Fire-and-forget.
func (c *Client) DidOpen(path, text string) error {
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        fileURI(path),
			LanguageID: "",
			Version:    0,
			Text:       text,
		},
	}
	return c.sendNotification("textDocument/didOpen", params)
}

// GotoDefinition asks the server to resolve the identifier at path:pos.
// The raw result may be a single Location, an array of Locations, or an
// array of LocationLinks; this normalizes all three shapes down to at
// most one Location, preferring the first element of an array and
// resolving a LocationLink via its target fields rather than discarding
// it (see SPEC_FULL.md's Open Question resolution).
func (c *Client) GotoDefinition(path string, pos protocol.Position) (*protocol.Location, error) {
	id := c.allocID()
	params := protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: fileURI(path)},
			Position:     pos,
		},
	}
	if err := c.sendRequest("textDocument/definition", params, id); err != nil {
		return nil, fmt.Errorf("lsp: sending textDocument/definition: %w", err)
	}
	raw, err := c.awaitResponse("textDocument/definition", id)
	if err != nil {
		return nil, err
	}
	return normalizeDefinitionResponse(raw)
}

func normalizeDefinitionResponse(raw json.RawMessage) (*protocol.Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	// Try array shape first (Location[] or LocationLink[]).
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		if len(items) == 0 {
			return nil, nil
		}
		return normalizeDefinitionResponse(items[0])
	}

	// Single object: Location or LocationLink. Location has "uri";
	// LocationLink has "targetUri" instead.
	var probe struct {
		URI       *string `json:"uri"`
		TargetURI *string `json:"targetUri"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("lsp: malformed definition response: %w", err)
	}

	if probe.URI != nil {
		var loc protocol.Location
		if err := json.Unmarshal(raw, &loc); err != nil {
			return nil, fmt.Errorf("lsp: malformed Location: %w", err)
		}
		return &loc, nil
	}

	if probe.TargetURI != nil {
		var link protocol.LocationLink
		if err := json.Unmarshal(raw, &link); err != nil {
			return nil, fmt.Errorf("lsp: malformed LocationLink: %w", err)
		}
		return &protocol.Location{URI: link.TargetURI, Range: link.TargetSelectionRange}, nil
	}

	return nil, nil
}

func fileURI(path string) protocol.DocumentUri {
	if strings.HasPrefix(path, "file://") {
		return protocol.DocumentUri(path)
	}
	return protocol.DocumentUri("file://" + path)
}

func intPtr(i int) *protocol.Integer {
	v := protocol.Integer(i)
	return &v
}

func traceValuePtr(v protocol.TraceValue) *protocol.TraceValue { return &v }
