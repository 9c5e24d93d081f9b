package api

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Event types published during an ask round-trip
const (
	EventAskStarted     = "ask_started"
	EventSearchStarted  = "search_started"
	EventSearchFinished = "search_finished"
	EventAnswerReady    = "answer_ready"
	EventAskFailed      = "ask_failed"
)

// AnalysisEvent is one progress event for an ask operation
type AnalysisEvent struct {
	DatasetID string    `json:"dataset_id"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// sseClient represents a connected SSE client
type sseClient struct {
	datasetID string
	channel   chan AnalysisEvent
}

// SSEHub manages Server-Sent Events for ask progress updates, keyed by
// dataset ID.
type SSEHub struct {
	clients    map[string]map[chan AnalysisEvent]bool
	clientsMu  sync.RWMutex
	register   chan sseClient
	unregister chan sseClient
	broadcast  chan AnalysisEvent
}

// NewSSEHub creates a new SSE hub and starts its event loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan AnalysisEvent]bool),
		register:   make(chan sseClient, 10),
		unregister: make(chan sseClient, 10),
		broadcast:  make(chan AnalysisEvent, 100),
	}
	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.datasetID] == nil {
				h.clients[client.datasetID] = make(map[chan AnalysisEvent]bool)
			}
			h.clients[client.datasetID][client.channel] = true
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if channels, ok := h.clients[client.datasetID]; ok {
				if channels[client.channel] {
					delete(channels, client.channel)
					close(client.channel)
				}
				if len(channels) == 0 {
					delete(h.clients, client.datasetID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for channel := range h.clients[event.DatasetID] {
				select {
				case channel <- event:
				default:
					// Slow consumer, drop rather than block the loop
					log.Printf("[SSEHub] Dropped %s event for dataset %s", event.EventType, event.DatasetID)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Publish broadcasts an event to all subscribers of a dataset
func (h *SSEHub) Publish(datasetID, eventType, message string) {
	h.broadcast <- AnalysisEvent{
		DatasetID: datasetID,
		EventType: eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Subscribe registers a new listener for a dataset's events
func (h *SSEHub) Subscribe(datasetID string) chan AnalysisEvent {
	channel := make(chan AnalysisEvent, 16)
	h.register <- sseClient{datasetID: datasetID, channel: channel}
	return channel
}

// Unsubscribe removes a listener
func (h *SSEHub) Unsubscribe(datasetID string, channel chan AnalysisEvent) {
	h.unregister <- sseClient{datasetID: datasetID, channel: channel}
}

// Handler streams a dataset's events to the client as SSE
func (h *SSEHub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID := c.Param("id")

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		channel := h.Subscribe(datasetID)
		defer h.Unsubscribe(datasetID, channel)

		c.Stream(func(w io.Writer) bool {
			select {
			case event, ok := <-channel:
				if !ok {
					return false
				}
				c.SSEvent("message", event)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
