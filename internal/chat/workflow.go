// Package chat runs the turn-based conversation with the career advisor.
// The transcript lives in memory only.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/career"
)

// ApologyText is the bot reply appended when the advisor cannot be reached.
const ApologyText = "I'm sorry, I'm having trouble connecting right now. Please try again later."

// QuickQuestions are suggested openers.
var QuickQuestions = []string{
	"How do I change my career?",
	"What skills are in demand?",
	"How to negotiate salary?",
	"Best way to network?",
	"Remote work opportunities?",
	"Interview preparation tips",
}

// Advisor answers one chat message. Implemented by remote.Client.
type Advisor interface {
	Chat(ctx context.Context, message string, userContext any) (string, error)
}

// SessionRecorder counts chat sessions. Implemented by stats.Aggregator.
type SessionRecorder interface {
	RecordChatSessionStart() (career.UserStats, error)
}

// Workflow holds one conversation. The session counter is bumped on the
// first user message and never again for the lifetime of the Workflow.
type Workflow struct {
	advisor Advisor
	stats   SessionRecorder
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	messages []career.ChatMessage
	pending  int // replies in flight
	counted  bool
}

// New creates an empty conversation.
func New(advisor Advisor, stats SessionRecorder, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		advisor: advisor,
		stats:   stats,
		logger:  logger.Named("chat"),
		now:     time.Now,
	}
}

// Messages returns a copy of the transcript in order.
func (w *Workflow) Messages() []career.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]career.ChatMessage(nil), w.messages...)
}

// Typing reports whether any reply is pending. Send calls may overlap;
// Typing stays true until the last of them has its reply.
func (w *Workflow) Typing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending > 0
}

// Send appends text as a user message, asks the advisor and appends its
// reply. Blank text is ignored and returns a zero message. When the advisor
// fails the apology is appended and returned along with the error; the
// conversation stays usable.
func (w *Workflow) Send(ctx context.Context, text string) (career.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return career.ChatMessage{}, nil
	}

	w.mu.Lock()
	w.messages = append(w.messages, w.message(text, career.SenderUser))
	w.pending++
	first := !w.counted
	w.counted = true
	w.mu.Unlock()

	if first && w.stats != nil {
		if _, err := w.stats.RecordChatSessionStart(); err != nil {
			w.logger.Warn("recording chat session", zap.Error(err))
		}
	}

	reply, err := w.advisor.Chat(ctx, text, nil)
	if err != nil {
		w.logger.Warn("chat request failed", zap.Error(err))
		reply = ApologyText
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	msg := w.message(reply, career.SenderBot)
	w.messages = append(w.messages, msg)
	w.pending--
	return msg, err
}

func (w *Workflow) message(text string, sender career.Sender) career.ChatMessage {
	return career.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: w.now(),
	}
}
