package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
	"github.com/MeKo-Tech/tokenprinter/internal/docx"
)

// WebSocket message types.
const (
	wsTypeConvert  = "convert"
	wsTypeStarted  = "started"
	wsTypeProgress = "progress"
	wsTypeResult   = "result"
	wsTypeError    = "error"
)

// WebSocketConvertRequest is a conversion request sent by the client.
type WebSocketConvertRequest struct {
	Type string `json:"type"`
	convert.Request
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketResponse is every message the server sends over the socket.
type WebSocketResponse struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Processed int             `json:"processed,omitempty"`
	Total     int             `json:"total,omitempty"`
	Result    *convert.Result `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorType string          `json:"error_type,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originAllowed,
	}
}

// convertWebSocketHandler streams conversion progress over a WebSocket.
func (s *Server) convertWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
			// a conversion may outlast the read deadline
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		}
	}
}

// handleWebSocketMessage runs the conversion described by data, sending a
// started message, one progress message per row and a final result.
func (s *Server) handleWebSocketMessage(conn WebSocketConnWriter, data []byte) {
	var req WebSocketConvertRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}
	if req.Type != wsTypeConvert {
		s.sendWebSocketError(conn, "", "invalid_request", "Unsupported request type: "+req.Type)
		return
	}

	requestID := uuid.NewString()
	progress := &wsProgress{server: s, conn: conn, requestID: requestID}
	res := s.runConversion("websocket", req.Request, progress)

	if !progress.finished {
		s.sendWebSocketResult(conn, requestID, res)
	}
}

func (s *Server) sendWebSocketResult(conn WebSocketConnWriter, requestID string, res convert.Result) {
	resp := WebSocketResponse{Type: wsTypeResult, RequestID: requestID, Result: &res}
	if !res.Success {
		resp.ErrorType = errorType(res)
	}
	s.sendWebSocketResponse(conn, resp)
}

// wsProgress forwards converter progress to the socket. The converter calls
// it from the goroutine handling the connection.
type wsProgress struct {
	server    *Server
	conn      WebSocketConnWriter
	requestID string
	finished  bool
}

func (p *wsProgress) OnStart(total int) {
	p.server.sendWebSocketResponse(p.conn, WebSocketResponse{Type: wsTypeStarted, RequestID: p.requestID, Total: total})
}

func (p *wsProgress) OnProgress(processed, total int) {
	p.server.sendWebSocketResponse(p.conn, WebSocketResponse{
		Type:      wsTypeProgress,
		RequestID: p.requestID,
		Processed: processed,
		Total:     total,
	})
}

func (p *wsProgress) OnComplete(res convert.Result) {
	p.finished = true
	p.server.sendWebSocketResult(p.conn, p.requestID, res)
}

func (p *wsProgress) OnError(_ int, err error) {
	p.finished = true
	p.server.sendWebSocketResult(p.conn, p.requestID, convert.Failed(err))
}

func errorType(res convert.Result) string {
	switch statusForResult(res) {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnprocessableEntity:
		return "decode_error"
	}
	var writeErr *docx.WriteError
	if errors.As(res.Err, &writeErr) {
		return "write_error"
	}
	return "internal_error"
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errType, message string) {
	s.sendWebSocketResponse(conn, WebSocketResponse{
		Type:      wsTypeError,
		RequestID: requestID,
		Error:     message,
		ErrorType: errType,
	})
}
