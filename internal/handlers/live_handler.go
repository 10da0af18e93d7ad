package handlers

import (
	"log"
	"net/http"
	"time"

	"caregame/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Subscriber delivers change notifications for a child's sessions
type Subscriber interface {
	Subscribe(childID string) (<-chan struct{}, func())
}

// LiveHandler streams report updates over a websocket
type LiveHandler struct {
	reports  ReportBuilder
	hub      Subscriber
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a live handler accepting the given origins ("*" allows all)
func NewLiveHandler(reports ReportBuilder, hub Subscriber, origins []string) *LiveHandler {
	return &LiveHandler{
		reports: reports,
		hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(origins),
		},
	}
}

// Stream pushes the current report on connect and again whenever the child's
// sessions change, until the client goes away
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("childId")

	// fail before upgrading so the client sees a proper status
	report, err := h.reports.Build(r.Context(), childID)
	if err != nil {
		respondWithServiceError(w, "Failed to build report", err)
		return
	}

	changes, cancel := h.hub.Subscribe(report.Child.Name)
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	if err := writeReport(conn, report); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	last := report
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			next, err := h.reports.Build(r.Context(), childID)
			if err != nil {
				log.Printf("Failed to rebuild live report for %s: %v", childID, err)
				continue
			}
			// a report missing the remote history would replace a fuller one
			if next.RemoteUnavailable && !last.RemoteUnavailable {
				continue
			}
			if err := writeReport(conn, next); err != nil {
				return
			}
			last = next
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeReport(conn *websocket.Conn, report *service.Report) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(report); err != nil {
		log.Printf("WebSocket write error: %v", err)
		return err
	}
	return nil
}

// readUntilClosed drains client frames so pongs and close frames are handled
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
