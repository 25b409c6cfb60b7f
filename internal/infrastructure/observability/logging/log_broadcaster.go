// Package logging provides the log broadcaster for real-time log streaming.
package logging

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// backlogSize is how many recent entries a new viewer is replayed.
const backlogSize = 200

// LogEntry represents a single log entry to be sent to the client.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Channel   string `json:"channel"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// AppliedFilters narrows what one viewer receives.
type AppliedFilters struct {
	Channel   Channel    // "all", "" or a single channel
	Level     slog.Level // minimum level
	RequestID string     // follow a single request when set
}

func (f AppliedFilters) match(e LogEntry, level slog.Level) bool {
	if f.Channel != "" && f.Channel != "all" && f.Channel != Channel(e.Channel) {
		return false
	}
	if f.RequestID != "" && f.RequestID != e.RequestID {
		return false
	}
	return level >= f.Level
}

// Client is one connected admin log viewer. Channel is closed when the
// viewer is unregistered or the broadcaster shuts down.
type Client struct {
	id      uint64
	Channel chan []byte
	filters AppliedFilters
	dropped atomic.Uint64
}

// Dropped counts messages skipped because the viewer fell behind.
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

type leveledEntry struct {
	entry LogEntry
	level slog.Level
}

// LogBroadcaster fans log entries out to SSE viewers.
type LogBroadcaster struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	entries    chan leveledEntry
	stop       chan struct{}
	stopOnce   sync.Once

	backlog []leveledEntry
	next    int

	nextID   atomic.Uint64
	overflow atomic.Uint64
	mu       sync.RWMutex
}

var (
	broadcaster *LogBroadcaster
	once        sync.Once
)

// GetBroadcaster returns the process-wide broadcaster, starting it on first use.
func GetBroadcaster() *LogBroadcaster {
	once.Do(func() {
		broadcaster = NewLogBroadcaster()
		go broadcaster.Run()
	})
	return broadcaster
}

// NewLogBroadcaster creates an unstarted broadcaster. Call Run in a goroutine.
func NewLogBroadcaster() *LogBroadcaster {
	return &LogBroadcaster{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		entries:    make(chan leveledEntry, 1000),
		stop:       make(chan struct{}),
		backlog:    make([]leveledEntry, 0, backlogSize),
	}
}

// Run owns the client set and blocks until Shutdown.
func (b *LogBroadcaster) Run() {
	for {
		select {
		case <-b.stop:
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
			return
		case client := <-b.register:
			b.replay(client)
			b.mu.Lock()
			b.clients[client] = struct{}{}
			b.mu.Unlock()
		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
		case le := <-b.entries:
			b.remember(le)
			b.distribute(le)
		}
	}
}

// remember keeps the newest backlogSize entries in a ring.
func (b *LogBroadcaster) remember(le leveledEntry) {
	if len(b.backlog) < backlogSize {
		b.backlog = append(b.backlog, le)
		return
	}
	b.backlog[b.next] = le
	b.next = (b.next + 1) % backlogSize
}

// replay sends matching backlog entries, oldest first, to a new viewer.
func (b *LogBroadcaster) replay(client *Client) {
	n := len(b.backlog)
	for i := 0; i < n; i++ {
		le := b.backlog[(b.next+i)%n]
		if client.filters.match(le.entry, le.level) {
			b.send(client, le.entry)
		}
	}
}

func (b *LogBroadcaster) distribute(le leveledEntry) {
	message, err := json.Marshal(le.entry)
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		if client.filters.match(le.entry, le.level) {
			b.offer(client, message)
		}
	}
}

func (b *LogBroadcaster) send(client *Client, e LogEntry) {
	if message, err := json.Marshal(e); err == nil {
		b.offer(client, message)
	}
}

func (b *LogBroadcaster) offer(client *Client, message []byte) {
	select {
	case client.Channel <- message:
	default:
		client.dropped.Add(1)
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// SubmitLog queues entry for distribution without blocking the logger.
func (b *LogBroadcaster) SubmitLog(entry LogEntry) {
	select {
	case b.entries <- leveledEntry{entry: entry, level: parseLevel(entry.Level)}:
	default:
		b.overflow.Add(1)
	}
}

// Overflow counts entries dropped because the queue was full.
func (b *LogBroadcaster) Overflow() uint64 { return b.overflow.Load() }

// NewClient creates an unregistered viewer.
func (b *LogBroadcaster) NewClient(filters AppliedFilters) *Client {
	return &Client{
		id:      b.nextID.Add(1),
		Channel: make(chan []byte, backlogSize),
		filters: filters,
	}
}

// Shutdown stops Run and closes every viewer channel.
func (b *LogBroadcaster) Shutdown() {
	b.stopOnce.Do(func() { close(b.stop) })
}

// RegisterClient adds a viewer; after Shutdown its channel is closed at once.
func (b *LogBroadcaster) RegisterClient(client *Client) {
	select {
	case b.register <- client:
	case <-b.stop:
		close(client.Channel)
	}
}

// UnregisterClient removes a viewer and closes its channel.
func (b *LogBroadcaster) UnregisterClient(client *Client) {
	select {
	case b.unregister <- client:
	case <-b.stop:
	}
}
