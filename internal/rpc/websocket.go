package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	maxMessageSize = 512 * 1024
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	writeWait      = 10 * time.Second
	sendBuffer     = 256
)

// WebSocketServer serves RPC methods over WebSocket and streams every
// processed transaction to subscribed connections.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	server   *Server
	log      *logrus.Entry

	mu          sync.RWMutex
	connections map[string]*WebSocketConnection
}

var _ tx.Observer = (*WebSocketServer)(nil)

// WebSocketConnection represents a single WebSocket connection
type WebSocketConnection struct {
	ID   string
	conn *websocket.Conn
	role rpc_types.Role
	ip   string
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.RWMutex
	transactions bool
	accounts     map[string]struct{}
}

// NewWebSocketServer creates a WebSocket front end sharing server's methods
// and services.
func NewWebSocketServer(server *Server) *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		server:      server,
		log:         server.log.WithField("transport", "websocket"),
		connections: make(map[string]*WebSocketConnection),
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rpcCtx := ws.server.newContext(r, rpc_types.DefaultApiVersion)
	wsConn := &WebSocketConnection{
		ID:       uuid.NewString(),
		conn:     conn,
		role:     rpcCtx.Role,
		ip:       rpcCtx.ClientIP,
		send:     make(chan []byte, sendBuffer),
		ctx:      ctx,
		cancel:   cancel,
		accounts: make(map[string]struct{}),
	}

	ws.mu.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.mu.Unlock()

	ws.log.WithFields(logrus.Fields{"conn": wsConn.ID, "client": wsConn.ip}).Debug("websocket connected")

	go ws.writePump(wsConn)
	go ws.readPump(wsConn)
}

// ConnectionCount returns the number of open connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.connections)
}

// Close disconnects every client.
func (ws *WebSocketServer) Close() {
	ws.mu.RLock()
	conns := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.mu.RUnlock()

	for _, c := range conns {
		ws.closeConnection(c)
	}
}

func (ws *WebSocketServer) readPump(c *WebSocketConnection) {
	defer ws.closeConnection(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.WithError(err).WithField("conn", c.ID).Debug("websocket read failed")
			}
			return
		}
		ws.handleMessage(c, message)
	}
}

func (ws *WebSocketServer) writePump(c *WebSocketConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.log.WithError(err).WithField("conn", c.ID).Debug("websocket send failed")
				ws.closeConnection(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.closeConnection(c)
				return
			}
		}
	}
}

// handleMessage processes one command. Commands carry their parameters at
// the top level next to "command" and an optional "id".
func (ws *WebSocketServer) handleMessage(c *WebSocketConnection, message []byte) {
	var cmdMap map[string]interface{}
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(c, rpc_types.RpcErrorInvalidParams("Invalid JSON: "+err.Error()), nil)
		return
	}

	command, _ := cmdMap["command"].(string)
	id := cmdMap["id"]
	if command == "" {
		ws.sendError(c, rpc_types.RpcErrorMissingCommand(), id)
		return
	}
	delete(cmdMap, "command")
	delete(cmdMap, "id")

	apiVersion := rpc_types.DefaultApiVersion
	if v, ok := cmdMap["api_version"].(float64); ok {
		apiVersion = int(v)
	}

	params, err := json.Marshal(cmdMap)
	if err != nil {
		ws.sendError(c, rpc_types.RpcErrorInternal(err.Error()), id)
		return
	}

	switch command {
	case "subscribe":
		ws.handleSubscribe(c, params, id, apiVersion, true)
		return
	case "unsubscribe":
		ws.handleSubscribe(c, params, id, apiVersion, false)
		return
	}

	ctx := &rpc_types.RpcContext{
		Context:    c.ctx,
		Role:       c.role,
		ApiVersion: apiVersion,
		ClientIP:   c.ip,
		Services:   ws.server.services,
	}
	result, rpcErr := execute(ws.server.registry, ws.server.opts.Timeout, ws.log, command, params, ctx)
	if rpcErr != nil {
		ws.sendError(c, rpcErr, id)
		return
	}
	ws.sendResponse(c, rpc_types.WebSocketResponse{
		Type:       "response",
		ID:         id,
		Status:     "success",
		Result:     result,
		ApiVersion: apiVersion,
	})
}

type subscriptionRequest struct {
	Streams  []string `json:"streams,omitempty"`
	Accounts []string `json:"accounts,omitempty"`
}

func (ws *WebSocketServer) handleSubscribe(c *WebSocketConnection, params json.RawMessage, id interface{}, apiVersion int, subscribe bool) {
	var request subscriptionRequest
	if err := json.Unmarshal(params, &request); err != nil {
		ws.sendError(c, rpc_types.RpcErrorInvalidParams("Invalid subscription parameters"), id)
		return
	}
	for _, stream := range request.Streams {
		if stream != rpc_types.StreamTransactions {
			ws.sendError(c, rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "malformedStream", "malformedStream",
				"Stream malformed: "+stream), id)
			return
		}
	}
	for _, account := range request.Accounts {
		if !addresscodec.IsValidAddress(account) {
			ws.sendError(c, rpc_types.RpcErrorActMalformed("Account malformed: "+account), id)
			return
		}
	}

	c.mu.Lock()
	if len(request.Streams) > 0 {
		c.transactions = subscribe
	}
	for _, account := range request.Accounts {
		if subscribe {
			c.accounts[account] = struct{}{}
		} else {
			delete(c.accounts, account)
		}
	}
	c.mu.Unlock()

	ws.sendResponse(c, rpc_types.WebSocketResponse{
		Type:       "response",
		ID:         id,
		Status:     "success",
		Result:     map[string]interface{}{},
		ApiVersion: apiVersion,
	})
}

// OnApplied streams a processed transaction to every subscriber of the
// transactions stream or of its sending account.
func (ws *WebSocketServer) OnApplied(r *tx.Receipt) {
	msg := map[string]interface{}{
		"type":                  "transaction",
		"hash":                  r.HashHex(),
		"account":               r.Account,
		"sequence":              r.Sequence,
		"engine_result":         r.Result.String(),
		"engine_result_code":    int(r.Result),
		"engine_result_message": r.Result.Message(),
		"applied":               r.Result.IsApplied(),
		"date":                  r.AppliedAt.UTC().Format(time.RFC3339),
	}
	if len(r.Tx) > 0 {
		msg["transaction"] = r.Tx
	}
	if r.Metadata != nil {
		msg["meta"] = r.Metadata
	}
	data, err := json.Marshal(msg)
	if err != nil {
		ws.log.WithError(err).Error("failed to marshal transaction stream message")
		return
	}

	var slow []*WebSocketConnection
	ws.mu.RLock()
	for _, c := range ws.connections {
		if !c.wants(r.Account) {
			continue
		}
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	ws.mu.RUnlock()

	for _, c := range slow {
		ws.log.WithField("conn", c.ID).Warn("websocket subscriber too slow, disconnecting")
		ws.closeConnection(c)
	}
}

func (c *WebSocketConnection) wants(account string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.transactions {
		return true
	}
	_, ok := c.accounts[account]
	return ok
}

// enqueue queues data without blocking. It reports false when the send
// buffer is full.
func (c *WebSocketConnection) enqueue(data []byte) bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (ws *WebSocketServer) sendResponse(c *WebSocketConnection, response rpc_types.WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.log.WithError(err).Error("failed to marshal websocket response")
		return
	}
	if !c.enqueue(data) {
		ws.closeConnection(c)
	}
}

// sendError sends an error response with flat error fields
func (ws *WebSocketServer) sendError(c *WebSocketConnection, rpcErr *rpc_types.RpcError, id interface{}) {
	response := map[string]interface{}{
		"type":          "response",
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if id != nil {
		response["id"] = id
	}

	data, err := json.Marshal(response)
	if err != nil {
		ws.log.WithError(err).Error("failed to marshal websocket error")
		return
	}
	if !c.enqueue(data) {
		ws.closeConnection(c)
	}
}

// closeConnection removes c and stops its pumps. It is safe to call more
// than once.
func (ws *WebSocketServer) closeConnection(c *WebSocketConnection) {
	ws.mu.Lock()
	_, open := ws.connections[c.ID]
	delete(ws.connections, c.ID)
	ws.mu.Unlock()

	c.cancel()
	if open {
		ws.log.WithField("conn", c.ID).Debug("websocket disconnected")
	}
}
