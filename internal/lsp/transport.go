package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"

	"github.com/charmbracelet/x/powernap/pkg/lsp/protocol"
	"github.com/rs/zerolog/log"
)

// JSON-RPC and LSP error codes.
const (
	codeParseError       = -32700
	codeInvalidRequest   = -32600
	codeMethodNotFound   = -32601
	codeInvalidParams    = -32602
	codeInternalError    = -32603
	codeServerNotStarted = -32002
)

// ErrExitWithoutShutdown is returned by Serve when the client sends exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *request) isNotification() bool {
	return len(r.ID) == 0
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Handler receives the lifecycle events the shell understands. It knows
// nothing about framing or JSON-RPC.
type Handler interface {
	OnInitialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	OnInitialized(ctx context.Context)
	OnDocumentOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams)
	OnShutdown(ctx context.Context) error
}

type conn struct {
	handler     Handler
	reader      *textproto.Reader
	writer      *bufio.Writer
	initialized bool
	shutdown    bool
}

// Serve runs the base protocol over in/out until exit, end of input or a
// transport error. Messages are handled one at a time in arrival order.
func Serve(ctx context.Context, handler Handler, in io.Reader, out io.Writer) error {
	c := &conn{
		handler: handler,
		reader:  textproto.NewReader(bufio.NewReader(in)),
		writer:  bufio.NewWriter(out),
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var req request
		if err := json.Unmarshal(body, &req); err != nil {
			if err := c.writeError(nil, codeParseError, "Parse error"); err != nil {
				return err
			}
			continue
		}

		if done, err := c.handle(ctx, &req); done || err != nil {
			return err
		}
	}
}

func (c *conn) readMessage() ([]byte, error) {
	header, err := c.reader.ReadMIMEHeader()
	if err != nil {
		if errors.Is(err, io.EOF) && len(header) == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	raw := header.Get("Content-Length")
	if raw == "" {
		return nil, errors.New("missing Content-Length header")
	}
	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		return nil, fmt.Errorf("invalid Content-Length %q", raw)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.reader.R, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// handle dispatches one message. done reports that the session ended.
func (c *conn) handle(ctx context.Context, req *request) (done bool, err error) {
	if req.Method == "exit" {
		if !c.shutdown {
			return true, ErrExitWithoutShutdown
		}
		return true, nil
	}

	if c.shutdown {
		if req.isNotification() {
			return false, nil
		}
		return false, c.writeError(req.ID, codeInvalidRequest, "server is shutting down")
	}

	if !c.initialized && req.Method != "initialize" {
		if req.isNotification() {
			return false, nil
		}
		return false, c.writeError(req.ID, codeServerNotStarted, "server not initialized")
	}

	switch req.Method {
	case "initialize":
		var params protocol.InitializeParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return false, c.writeError(req.ID, codeInvalidParams, err.Error())
		}
		result, err := c.handler.OnInitialize(ctx, &params)
		if err != nil {
			return false, c.writeError(req.ID, codeInternalError, err.Error())
		}
		c.initialized = true
		return false, c.writeResult(req.ID, result)

	case "initialized":
		c.handler.OnInitialized(ctx)
		return false, nil

	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			log.Warn().Err(err).Msg("lsp: ignoring malformed didOpen")
			return false, nil
		}
		c.handler.OnDocumentOpen(ctx, &params)
		return false, nil

	case "shutdown":
		c.shutdown = true
		if err := c.handler.OnShutdown(ctx); err != nil {
			return false, c.writeError(req.ID, codeInternalError, err.Error())
		}
		return false, c.writeResult(req.ID, nil)

	default:
		if req.isNotification() {
			return false, nil
		}
		return false, c.writeError(req.ID, codeMethodNotFound, "Method not found")
	}
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (c *conn) writeResult(id json.RawMessage, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return c.writeError(id, codeInternalError, err.Error())
	}
	return c.write(response{JSONRPC: "2.0", ID: id, Result: data})
}

func (c *conn) writeError(id json.RawMessage, code int, message string) error {
	return c.write(response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
	})
}

func (c *conn) write(resp response) error {
	if len(resp.ID) == 0 {
		resp.ID = json.RawMessage("null")
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := c.writer.Write(data); err != nil {
		return err
	}
	return c.writer.Flush()
}
