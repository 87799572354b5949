package websockets

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/aura-wagers/pkg/websockets"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingMessage = "ping"
	pongMessage = "pong"
)

// Handler registers clients that receive bet events.
type Handler struct {
	connManager websockets.ConnectionManager
}

// NewHandler creates a new Handler.
func NewHandler(connManager websockets.ConnectionManager) *Handler {
	return &Handler{
		connManager: connManager,
	}
}

// HandleConnect registers an API Gateway connection.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	slog.InfoContext(ctx, "event subscriber connected", "connectionId", connectionID)

	if err := h.connManager.AddConnection(ctx, connectionID); err != nil {
		slog.ErrorContext(ctx, "failed to register subscriber", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDisconnect drops an API Gateway connection.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	slog.InfoContext(ctx, "event subscriber disconnected", "connectionId", connectionID)

	if err := h.connManager.RemoveConnection(ctx, connectionID); err != nil {
		slog.ErrorContext(ctx, "failed to drop subscriber", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDefault answers keepalive pings. Subscribers have nothing else to send.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPing(request.Body) {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: pongMessage}, nil
	}
	slog.DebugContext(ctx, "ignoring subscriber message", "connectionId", request.RequestContext.ConnectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func isPing(body string) bool {
	return strings.EqualFold(strings.TrimSpace(body), pingMessage)
}

var upgrader = websocket.Upgrader{
	// The local endpoint serves development clients from any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeHTTP serves the local websocket endpoint. The connection stays registered until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	ctx := r.Context()
	slog.InfoContext(ctx, "local subscriber connected", "connectionId", connectionID)

	if err := h.connManager.AddConnection(ctx, connectionID); err != nil {
		slog.ErrorContext(ctx, "failed to register local subscriber", "connectionId", connectionID, "error", err)
		return
	}
	defer func() {
		// The request context is done by now.
		if err := h.connManager.RemoveConnection(context.Background(), connectionID); err != nil {
			slog.Error("failed to drop local subscriber", "connectionId", connectionID, "error", err)
		}
		slog.Info("local subscriber disconnected", "connectionId", connectionID)
	}()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("unexpected close", "connectionId", connectionID, "error", err)
			}
			return
		}
		if msgType == websocket.TextMessage && isPing(string(payload)) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(pongMessage)); err != nil {
				return
			}
		}
	}
}
