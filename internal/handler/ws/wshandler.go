package wshandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/service"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

type SessionRepository interface {
	CreateSession(userID int64, sessionID string) error
	DeactivateSession(sessionID string) error
}

type WSHandler struct {
	hub      *service.Hub
	repo     SessionRepository
	config   *config.Config
	upgrader websocket.Upgrader
}

func New(hub *service.Hub, repo SessionRepository, config *config.Config) *WSHandler {
	return &WSHandler{
		hub:    hub,
		repo:   repo,
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Attach upgrades the connection, records a session row and streams balance
// events to the client until it goes away. Browsers cannot set headers on
// WebSocket dials, so the bearer token arrives as a query parameter.
func (h *WSHandler) Attach(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(r.URL.Query().Get("token"))
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("websocket upgrade failed", logger.Error(err))
		return
	}

	sessionID := uuid.NewString()
	if err := h.repo.CreateSession(userID, sessionID); err != nil {
		logger.Log.Error("error recording session", logger.Int64("user_id", userID), logger.Error(err))
		_ = conn.Close()
		return
	}

	logger.Log.Info("session attached",
		logger.Int64("user_id", userID),
		logger.String("session_id", sessionID),
	)

	events, unsubscribe := h.hub.Subscribe(userID)

	done := make(chan struct{})
	go readLoop(conn, done)

	go func() {
		defer func() {
			unsubscribe()
			_ = conn.Close()
			if err := h.repo.DeactivateSession(sessionID); err != nil {
				logger.Log.Error("error deactivating session", logger.String("session_id", sessionID), logger.Error(err))
			}
			logger.Log.Info("session detached", logger.String("session_id", sessionID))
		}()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case payload, ok := <-events:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}

// readLoop drains client frames so pings and close frames are processed.
func readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) authenticate(tokenString string) (int64, bool) {
	if tokenString == "" {
		return 0, false
	}

	var claims jwt.StandardClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.config.PrivateKey), nil
	})
	if err != nil {
		logger.Log.Warn("websocket auth failed", logger.Error(err))
		return 0, false
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, false
	}

	return userID, true
}
