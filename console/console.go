// Package console collects the diagnostics of an instance: posts, warnings
// and errors, optionally attributed to the object they came from.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/kiwi/notify"
)

type Level int

const (
	Post Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Post:
		return "post"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	}
	return slog.LevelInfo
}

type Message struct {
	Level  Level
	Text   string
	Source fmt.Stringer // the originating object, or nil
}

func (m Message) String() string {
	if m.Source != nil {
		return m.Source.String() + ": " + m.Text
	}
	return m.Text
}

// A Listener receives every message posted to a Console it is added to.
type Listener struct {
	Receive func(Message)
}

const DefaultHistory = 1024

type Console struct {
	logger    *slog.Logger
	listeners notify.Set[Listener]

	mu       sync.Mutex
	history  []Message
	capacity int
}

// New returns a Console writing to logger, or to slog.Default() if logger is
// nil.
func New(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger, capacity: DefaultHistory}
}

func (c *Console) AddListener(l *Listener)    { c.listeners.Add(l) }
func (c *Console) RemoveListener(l *Listener) { c.listeners.Remove(l) }

func (c *Console) Post(text string)    { c.send(Message{Post, text, nil}) }
func (c *Console) Warning(text string) { c.send(Message{Warning, text, nil}) }
func (c *Console) Error(text string)   { c.send(Message{Error, text, nil}) }

func (c *Console) PostFrom(src fmt.Stringer, text string)    { c.send(Message{Post, text, src}) }
func (c *Console) WarningFrom(src fmt.Stringer, text string) { c.send(Message{Warning, text, src}) }
func (c *Console) ErrorFrom(src fmt.Stringer, text string)   { c.send(Message{Error, text, src}) }

// Messages returns the most recent messages, oldest first.
func (c *Console) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

func (c *Console) Clear() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
}

func (c *Console) send(m Message) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if len(c.history) == c.capacity {
		copy(c.history, c.history[1:])
		c.history = c.history[:len(c.history)-1]
	}
	c.history = append(c.history, m)
	c.mu.Unlock()

	if m.Source != nil {
		c.logger.Log(context.Background(), m.Level.slogLevel(), m.Text, "object", m.Source.String())
	} else {
		c.logger.Log(context.Background(), m.Level.slogLevel(), m.Text)
	}
	c.listeners.Call(func(l *Listener) {
		if l.Receive != nil {
			l.Receive(m)
		}
	})
}
