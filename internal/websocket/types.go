package websocket

import (
	"time"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeDetection represents a PII detection event
	EventTypeDetection EventType = "pii_detection"
	// EventTypeAnonymization represents an anonymization event
	EventTypeAnonymization EventType = "anonymization"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// DetectionEvent summarizes one analysis request. It carries entity type
// counts only, never the matched text.
type DetectionEvent struct {
	RequestID    string         `json:"request_id"`
	TextLength   int            `json:"text_length"`
	EntityCount  int            `json:"entity_count"`
	EntityTypes  map[string]int `json:"entity_types"`
	Cached       bool           `json:"cached"`
	ProcessingMS float64        `json:"processing_ms"`
}

// AnonymizationEvent summarizes one anonymization request
type AnonymizationEvent struct {
	RequestID    string         `json:"request_id"`
	TextLength   int            `json:"text_length"`
	ItemCount    int            `json:"item_count"`
	EntityTypes  map[string]int `json:"entity_types"`
	ProcessingMS float64        `json:"processing_ms"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	TotalRequests    int64   `json:"total_requests"`
	TotalDetections  int64   `json:"total_detections"`
	NERAvailable     bool    `json:"ner_available"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	ConnectedClients int     `json:"connected_clients"`
	MemoryUsage      string  `json:"memory_usage,omitempty"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType  `json:"events"`
	Filter *EventFilter `json:"filter,omitempty"`
}

// EventFilter represents filtering options for events
type EventFilter struct {
	EntityTypes    []string `json:"entity_types,omitempty"`
	MinEntityCount int      `json:"min_entity_count,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	Conn         interface{} // Will be *websocket.Conn
	Send         chan Event
	Subscription *SubscriptionRequest
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
	UserAgent    string
}
