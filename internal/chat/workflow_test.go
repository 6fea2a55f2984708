package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/stats"
	"github.com/kalambet/pathwise/internal/storage"
)

type fakeAdvisor struct {
	replies []string
	err     error
	got     []string
}

func (f *fakeAdvisor) Chat(_ context.Context, message string, userContext any) (string, error) {
	f.got = append(f.got, message)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func newAggregator(t *testing.T) *stats.Aggregator {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return stats.New(store, zaptest.NewLogger(t))
}

func TestSend_AppendsUserAndBot(t *testing.T) {
	adv := &fakeAdvisor{replies: []string{"Start by listing transferable skills."}}
	w := New(adv, newAggregator(t), zaptest.NewLogger(t))

	reply, err := w.Send(context.Background(), "How do I change my career?")
	require.NoError(t, err)
	assert.Equal(t, career.SenderBot, reply.Sender)
	assert.Equal(t, "Start by listing transferable skills.", reply.Text)

	msgs := w.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, career.SenderUser, msgs[0].Sender)
	assert.Equal(t, "How do I change my career?", msgs[0].Text)
	assert.Equal(t, reply, msgs[1])
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
	_, err = uuid.Parse(msgs[0].ID)
	assert.NoError(t, err)
	assert.False(t, w.Typing())
}

func TestSend_BlankIgnored(t *testing.T) {
	adv := &fakeAdvisor{}
	agg := newAggregator(t)
	w := New(adv, agg, nil)

	msg, err := w.Send(context.Background(), "   \n\t")
	require.NoError(t, err)
	assert.Equal(t, career.ChatMessage{}, msg)
	assert.Empty(t, w.Messages())
	assert.Empty(t, adv.got)
	assert.Equal(t, 0, agg.Read().ChatSessions)
}

func TestSend_CountsSessionOnce(t *testing.T) {
	agg := newAggregator(t)
	w := New(&fakeAdvisor{}, agg, zaptest.NewLogger(t))
	ctx := context.Background()

	for _, q := range QuickQuestions[:3] {
		_, err := w.Send(ctx, q)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, agg.Read().ChatSessions)
	assert.Len(t, w.Messages(), 6)

	// A new conversation is a new session.
	w2 := New(&fakeAdvisor{}, agg, zaptest.NewLogger(t))
	_, err := w2.Send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Read().ChatSessions)
}

func TestSend_FailureAppendsApology(t *testing.T) {
	agg := newAggregator(t)
	adv := &fakeAdvisor{err: errors.New("connection refused")}
	w := New(adv, agg, zaptest.NewLogger(t))

	reply, err := w.Send(context.Background(), "What skills are in demand?")
	require.Error(t, err)
	assert.Equal(t, ApologyText, reply.Text)
	assert.Equal(t, career.SenderBot, reply.Sender)
	assert.Len(t, w.Messages(), 2)
	assert.False(t, w.Typing())

	// The session still counts and the conversation carries on.
	assert.Equal(t, 1, agg.Read().ChatSessions)
	adv.err = nil
	_, err = w.Send(context.Background(), "retry")
	require.NoError(t, err)
	assert.Len(t, w.Messages(), 4)
	assert.Equal(t, 1, agg.Read().ChatSessions)
}

type brokenRecorder struct{ calls int }

func (b *brokenRecorder) RecordChatSessionStart() (career.UserStats, error) {
	b.calls++
	return career.UserStats{}, errors.New("store unavailable")
}

func TestSend_CounterFailureDoesNotBlockChat(t *testing.T) {
	rec := &brokenRecorder{}
	w := New(&fakeAdvisor{replies: []string{"hi"}}, rec, zaptest.NewLogger(t))

	reply, err := w.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", reply.Text)

	_, err = w.Send(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.calls)
}

// gatedAdvisor holds each reply until its message is released.
type gatedAdvisor struct {
	arrived chan string
	release map[string]chan struct{}
}

func (g *gatedAdvisor) Chat(ctx context.Context, message string, _ any) (string, error) {
	g.arrived <- message
	select {
	case <-g.release[message]:
		return "re: " + message, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestTyping_OverlappingSends(t *testing.T) {
	adv := &gatedAdvisor{
		arrived: make(chan string, 2),
		release: map[string]chan struct{}{"first": make(chan struct{}), "second": make(chan struct{})},
	}
	w := New(adv, nil, zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := map[string]chan career.ChatMessage{"first": make(chan career.ChatMessage, 1), "second": make(chan career.ChatMessage, 1)}
	for _, text := range []string{"first", "second"} {
		go func() {
			msg, err := w.Send(ctx, text)
			assert.NoError(t, err)
			done[text] <- msg
		}()
	}
	<-adv.arrived
	<-adv.arrived
	assert.True(t, w.Typing())

	close(adv.release["first"])
	assert.Equal(t, "re: first", (<-done["first"]).Text)
	assert.True(t, w.Typing(), "second reply still pending")

	close(adv.release["second"])
	assert.Equal(t, "re: second", (<-done["second"]).Text)
	assert.False(t, w.Typing())
	assert.Len(t, w.Messages(), 4)
}
