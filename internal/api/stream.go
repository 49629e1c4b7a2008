package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/scrape"
)

// Message é o envelope enviado pelo WebSocket: vários "progress" e por fim um "result" ou "error".
type Message struct {
	Type  string            `json:"type"`
	Event *scrape.Event     `json:"event,omitempty"`
	Data  *comment.Comments `json:"data,omitempty"`
	Error string            `json:"error,omitempty"`
}

// streamConn serializa as escritas: o progresso chega da goroutine do scraping.
type streamConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (sc *streamConn) send(m Message) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.WriteJSON(m)
}

func (s *Server) handleStream(c *gin.Context) {
	identifier := c.Query("identifier")
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier é obrigatório"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Printf("[API] upgrade websocket: %v", err)
		return
	}
	defer conn.Close()
	sc := &streamConn{conn: conn}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Cliente que fecha a conexão cancela o scraping (as requisições em andamento falham e a paginação para).
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	res, err := s.scrape(ctx, identifier, func(e scrape.Event) {
		if err := sc.send(Message{Type: "progress", Event: &e}); err != nil {
			cancel()
		}
	})
	if err != nil {
		sc.send(Message{Type: "error", Error: err.Error()})
	} else {
		sc.send(Message{Type: "result", Data: res})
	}

	sc.mu.Lock()
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	sc.mu.Unlock()
}
