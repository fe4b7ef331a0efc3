// Package mcpserver exposes the record store as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/values"
)

const (
	serverName    = "books-record-store"
	serverVersion = "1.0.0"
)

// Server registers the books tools on an MCP server.
type Server struct {
	server   *server.MCPServer
	provider *provider.Provider
	logger   *slog.Logger
	ids      RequestIDGenerator
}

// Option configures a Server.
type Option func(*Server)

// WithRequestIDs replaces the UUIDv7 request ID generator.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(s *Server) {
		s.ids = g
	}
}

// New creates a server over p with every tool registered.
func New(p *provider.Provider, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		server: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithToolCapabilities(true),
			server.WithLogging(),
		),
		provider: p,
		logger:   logger,
		ids:      UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, t := range s.tools() {
		s.server.AddTool(t.def, t.handler)
	}
	s.server.AddNotificationHandler(s.handleNotification)

	logger.Debug("mcp server created", "tools", len(s.tools()))
	return s
}

// Serve speaks MCP on stdin/stdout until stdin closes.
func (s *Server) Serve() error {
	s.logger.Info("starting mcp server", "name", serverName)
	if err := server.ServeStdio(s.server); err != nil {
		s.logger.Error("mcp server error", "error", err)
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("mcp server stopped")
	return nil
}

type tool struct {
	def     mcp.Tool
	handler func(arguments map[string]interface{}) (*mcp.CallToolResult, error)
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func (s *Server) tools() []tool {
	addressProp := stringProp("Content address, e.g. content://" + s.provider.Routes().Authority() + "/books or .../books/1")
	whereProp := stringProp("SQL filter expression with ? placeholders, e.g. \"quanity > ?\"")
	argsProp := map[string]interface{}{
		"type":        "array",
		"description": "Positional arguments for the filter placeholders",
	}
	valuesProp := map[string]interface{}{
		"type":        "object",
		"description": "Column values keyed by column name: product_name, price, quanity, supplier_name, supplier_phone_number",
	}

	return []tool{
		{
			def: mcp.Tool{
				Name:        "list_books",
				Description: "List books at an address, optionally filtered, projected and sorted",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"address": addressProp,
						"fields": map[string]interface{}{
							"type":        "array",
							"description": "Columns to return; all columns when omitted",
						},
						"where": whereProp,
						"args":  argsProp,
						"sort":  stringProp("ORDER BY fragment, e.g. \"product_name ASC\""),
					},
				},
			},
			handler: s.handleListBooks,
		},
		{
			def: mcp.Tool{
				Name:        "insert_book",
				Description: "Insert a book; product_name is required and quanity must be a non-negative integer",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"address": addressProp,
						"values":  valuesProp,
					},
					Required: []string{"values"},
				},
			},
			handler: s.handleInsertBook,
		},
		{
			def: mcp.Tool{
				Name:        "update_books",
				Description: "Update the books at an address and return how many changed",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"address": addressProp,
						"values":  valuesProp,
						"where":   whereProp,
						"args":    argsProp,
					},
					Required: []string{"address", "values"},
				},
			},
			handler: s.handleUpdateBooks,
		},
		{
			def: mcp.Tool{
				Name:        "delete_books",
				Description: "Delete the books at an address and return how many were removed",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"address": addressProp,
						"where":   whereProp,
						"args":    argsProp,
					},
					Required: []string{"address"},
				},
			},
			handler: s.handleDeleteBooks,
		},
		{
			def: mcp.Tool{
				Name:        "resolve_type",
				Description: "Return the result kind of an address",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"address": addressProp,
					},
					Required: []string{"address"},
				},
			},
			handler: s.handleResolveType,
		},
	}
}

func (s *Server) handleListBooks(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	logger := s.requestLogger("list_books")

	addr, err := s.address(arguments, false)
	if err != nil {
		return s.fail(logger, err)
	}
	filter, err := filterArg(arguments)
	if err != nil {
		return s.fail(logger, err)
	}
	fields, err := stringsArg(arguments, "fields")
	if err != nil {
		return s.fail(logger, err)
	}
	sort, _ := arguments["sort"].(string)

	rs, err := s.provider.List(context.Background(), addr, provider.ListOptions{
		Fields:    fields,
		Filter:    filter,
		SortOrder: sort,
	})
	if err != nil {
		return s.fail(logger, err)
	}
	defer rs.Close()

	logger.Info("listed books", "address", addr.String(), "rows", rs.Len())
	return textResult(map[string]any{
		"address": addr.String(),
		"columns": rs.Columns,
		"count":   rs.Len(),
		"rows":    rs.Rows,
	})
}

func (s *Server) handleInsertBook(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	logger := s.requestLogger("insert_book")

	addr, err := s.address(arguments, false)
	if err != nil {
		return s.fail(logger, err)
	}
	vals, err := valuesArg(arguments)
	if err != nil {
		return s.fail(logger, err)
	}

	created, err := s.provider.Insert(context.Background(), addr, vals)
	if err != nil {
		return s.fail(logger, err)
	}

	logger.Info("inserted book", "address", created.String())
	return textResult(map[string]any{"address": created.String()})
}

func (s *Server) handleUpdateBooks(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	logger := s.requestLogger("update_books")

	addr, err := s.address(arguments, true)
	if err != nil {
		return s.fail(logger, err)
	}
	vals, err := valuesArg(arguments)
	if err != nil {
		return s.fail(logger, err)
	}
	filter, err := filterArg(arguments)
	if err != nil {
		return s.fail(logger, err)
	}

	n, err := s.provider.Update(context.Background(), addr, vals, filter)
	if err != nil {
		return s.fail(logger, err)
	}

	logger.Info("updated books", "address", addr.String(), "rows", n)
	return textResult(map[string]any{"count": n})
}

func (s *Server) handleDeleteBooks(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	logger := s.requestLogger("delete_books")

	addr, err := s.address(arguments, true)
	if err != nil {
		return s.fail(logger, err)
	}
	filter, err := filterArg(arguments)
	if err != nil {
		return s.fail(logger, err)
	}

	n, err := s.provider.Delete(context.Background(), addr, filter)
	if err != nil {
		return s.fail(logger, err)
	}

	logger.Info("deleted books", "address", addr.String(), "rows", n)
	return textResult(map[string]any{"count": n})
}

func (s *Server) handleResolveType(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	logger := s.requestLogger("resolve_type")

	addr, err := s.address(arguments, true)
	if err != nil {
		return s.fail(logger, err)
	}

	typ, err := s.provider.ResolveType(addr)
	if err != nil {
		return s.fail(logger, err)
	}
	return textResult(map[string]any{"type": typ})
}

func (s *Server) handleNotification(notification mcp.JSONRPCNotification) {
	s.logger.Debug("received notification", "method", notification.Method)
}

func (s *Server) requestLogger(toolName string) *slog.Logger {
	return s.logger.With("tool", toolName, "request_id", s.ids.Generate())
}

func (s *Server) fail(logger *slog.Logger, err error) (*mcp.CallToolResult, error) {
	logger.Warn("tool call failed", "error", err)
	return nil, err
}

// address reads the "address" argument. When it is optional and absent the
// collection address is used.
func (s *Server) address(arguments map[string]interface{}, required bool) (contract.Address, error) {
	raw, ok := arguments["address"]
	if !ok || raw == nil {
		if required {
			return contract.Address{}, fmt.Errorf("address is required")
		}
		return s.provider.CollectionAddress(), nil
	}
	str, ok := raw.(string)
	if !ok {
		return contract.Address{}, fmt.Errorf("address must be a string, got %T", raw)
	}
	return contract.ParseAddress(str)
}

func valuesArg(arguments map[string]interface{}) (values.Values, error) {
	raw, ok := arguments["values"]
	if !ok || raw == nil {
		return values.New(), nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("values must be an object, got %T", raw)
	}
	return values.FromMap(m)
}

func filterArg(arguments map[string]interface{}) (querysql.Filter, error) {
	var f querysql.Filter
	if w, ok := arguments["where"].(string); ok {
		f.Where = w
	}

	raw, ok := arguments["args"]
	if !ok || raw == nil {
		return f, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return f, fmt.Errorf("args must be an array, got %T", raw)
	}
	for i, a := range list {
		v, err := values.FromAny(a)
		if err != nil {
			return f, fmt.Errorf("args[%d]: %w", i, err)
		}
		f.Args = append(f.Args, values.ToSQL(v))
	}
	return f, nil
}

func stringsArg(arguments map[string]interface{}, key string) ([]string, error) {
	raw, ok := arguments[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings, got %T", key, raw)
	}
	out := make([]string, len(list))
	for i, item := range list {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string, got %T", key, i, item)
		}
		out[i] = str
	}
	return out, nil
}

func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := values.MarshalCanonical(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []interface{}{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}
