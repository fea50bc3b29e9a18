// Package sse fans draft events out to the author's connected editors.
package sse

import (
	"encoding/json"
	"sync"

	"github.com/debemdeboas/quill/internal/model"
	"github.com/rs/zerolog"
)

var sseLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sseLogger = l
}

// Message is one server-sent event: Event becomes the "event:" line and Data the "data:" line.
type Message struct {
	Event string
	Data  string
}

type Client struct {
	Msg    chan Message
	UserID model.UserID
}

func NewClient(userID model.UserID) *Client {
	return &Client{Msg: make(chan Message, 16), UserID: userID}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client of userID. Slow clients miss messages
// instead of blocking the sender.
func (s *SSEClients) Broadcast(userID model.UserID, msg Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.UserID == userID {
			select {
			case client.Msg <- msg:
			default:
				sseLogger.Debug().Str("user_id", string(userID)).Str("event", msg.Event).Msg("Dropped event for slow client")
			}
		}
	}
}

func (s *SSEClients) Notify(author model.UserID, event model.DraftEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		sseLogger.Error().Err(err).Msg("Failed to encode draft event")
		return
	}
	s.Broadcast(author, Message{Event: string(event.Type), Data: string(data)})
}
