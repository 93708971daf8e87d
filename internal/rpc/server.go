package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
	"github.com/sirupsen/logrus"
)

const defaultMaxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Timeout bounds how long a single method may run.
	Timeout time.Duration
	// MaxBodyBytes caps the size of a POST body.
	MaxBodyBytes int64
	// AdminLoopback grants the admin role to clients on a loopback address.
	AdminLoopback bool
	Logger        *logrus.Entry
}

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *rpc_types.MethodRegistry
	services *rpc_types.ServiceContainer
	opts     Options
	log      *logrus.Entry
}

// NewServer creates an RPC server over services with every method
// registered.
func NewServer(services *rpc_types.ServiceContainer, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	log := opts.Logger
	if log == nil {
		log = logrus.WithField("component", "rpc")
	}

	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		services: services,
		opts:     opts,
		log:      log,
	}
	server.registerAllMethods()
	return server
}

// Registry returns the method registry, shared with the WebSocket server.
func (s *Server) Registry() *rpc_types.MethodRegistry {
	return s.registry
}

// Request is a JSON-RPC request: {"method": "name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest serves parameterless queries such as server_info.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}

	ctx := s.newContext(r, rpc_types.DefaultApiVersion)
	result, rpcErr := s.executeMethod(method, nil, ctx)
	s.writeResponse(w, nil, result, rpcErr)
}

func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, s.opts.MaxBodyBytes+1))
	if err != nil {
		s.writeResponse(w, nil, nil, rpc_types.RpcErrorInternal("Failed to read request body"))
		return
	}
	if int64(len(body)) > s.opts.MaxBodyBytes {
		s.writeResponse(w, nil, nil, rpc_types.RpcErrorInvalidParams("Request body too large"))
		return
	}

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, nil, rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, nil, rpc_types.RpcErrorMissingCommand())
		return
	}

	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	var paramsMap map[string]interface{}
	if params != nil {
		if err := json.Unmarshal(params, &paramsMap); err != nil {
			s.writeResponse(w, nil, nil, rpc_types.RpcErrorInvalidParams("params must be an object"))
			return
		}
	}

	apiVersion := rpc_types.DefaultApiVersion
	if v, ok := paramsMap["api_version"].(float64); ok {
		apiVersion = int(v)
	}

	ctx := s.newContext(r, apiVersion)
	result, rpcErr := s.executeMethod(request.Method, params, ctx)

	// Error responses echo the request back.
	if paramsMap == nil {
		paramsMap = map[string]interface{}{}
	}
	paramsMap["command"] = request.Method
	delete(paramsMap, "secret")
	s.writeResponse(w, paramsMap, result, rpcErr)
}

func (s *Server) newContext(r *http.Request, apiVersion int) *rpc_types.RpcContext {
	role := rpc_types.RoleGuest
	// Forwarding headers are client controlled, so the role uses the peer.
	if s.opts.AdminLoopback && isLoopback(remoteHost(r)) {
		role = rpc_types.RoleAdmin
	}
	return &rpc_types.RpcContext{
		Context:    r.Context(),
		Role:       role,
		ApiVersion: apiVersion,
		ClientIP:   getClientIP(r),
		Services:   s.services,
	}
}

// executeMethod runs method, enforcing role, API version and timeout.
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	return execute(s.registry, s.opts.Timeout, s.log, method, params, ctx)
}

func execute(registry *rpc_types.MethodRegistry, timeout time.Duration, log *logrus.Entry, method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	handler, exists := registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	if ctx.Role < handler.RequiredRole() {
		return nil, rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "noPermission", "noPermission",
			"Method '"+method+"' requires an admin connection")
	}

	if versions := handler.SupportedApiVersions(); len(versions) > 0 {
		supported := false
		for _, v := range versions {
			if ctx.ApiVersion == v {
				supported = true
				break
			}
		}
		if !supported {
			return nil, rpc_types.RpcErrorInvalidApiVersion(strconv.Itoa(ctx.ApiVersion))
		}
	}

	if timeout > 0 {
		c, cancel := context.WithTimeout(ctx.Context, timeout)
		defer cancel()
		ctx.Context = c
	}

	start := time.Now()
	result, rpcErr := handler.Handle(ctx, params)

	entry := log.WithFields(logrus.Fields{
		"method":    method,
		"client":    ctx.ClientIP,
		"elapsed":   time.Since(start),
		"api_level": ctx.ApiVersion,
	})
	if rpcErr != nil {
		entry.WithField("error", rpcErr.ErrorString).Debug("rpc request failed")
	} else {
		entry.Debug("rpc request served")
	}
	return result, rpcErr
}

// Call runs method in-process with role, bypassing HTTP. The CLI uses it to
// answer queries against a local ledger.
func (s *Server) Call(ctx context.Context, role rpc_types.Role, method string, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return s.executeMethod(method, params, &rpc_types.RpcContext{
		Context:    ctx,
		Role:       role,
		ApiVersion: rpc_types.DefaultApiVersion,
		ClientIP:   "local",
		Services:   s.services,
	})
}

// writeResponse writes {"result": {...}} with result.status set to
// "success" or "error".
func (s *Server) writeResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	var resultObj map[string]interface{}
	if rpcErr != nil {
		resultObj = map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
	} else if m, ok := result.(map[string]interface{}); ok {
		resultObj = m
		resultObj["status"] = "success"
	} else {
		resultObj = map[string]interface{}{
			"status": "success",
			"data":   result,
		}
	}

	data, err := json.Marshal(map[string]interface{}{"result": resultObj})
	if err != nil {
		s.log.WithError(err).Error("failed to marshal response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.WithError(err).Debug("failed to write response")
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

// Handler serves JSON-RPC on / and, when ws is not nil, WebSocket on /ws.
func Handler(s *Server, ws *WebSocketServer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	if ws != nil {
		mux.Handle("/ws", ws)
	}
	return mux
}
