package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultMaxLen bounds each stream when the caller does not pick a length.
const DefaultMaxLen int64 = 100_000

var ErrClosed = errors.New("stream transport closed")

// MessageTransport fans out purchase events to downstream consumers.
type MessageTransport interface {
	Publish(ctx context.Context, stream string, fields map[string]any) (string, error)
	Close() error
}

// Stream publishes to Redis Streams.
type Stream struct {
	client *redis.Client
	maxLen int64
}

func NewStream(ctx context.Context, url string, maxLen int64) (*Stream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Stream{client: client, maxLen: maxLen}, nil
}

// Publish appends fields with XADD, trimming to roughly maxLen entries.
func (s *Stream) Publish(ctx context.Context, stream string, fields map[string]any) (string, error) {
	if stream == "" {
		return "", errors.New("stream name is required")
	}
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: fields,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}
	return id, nil
}

func (s *Stream) Close() error {
	return s.client.Close()
}

// Message is one entry held by InMemoryStream.
type Message struct {
	ID     string
	Fields map[string]any
}

// InMemoryStream is a process-local transport for tests.
type InMemoryStream struct {
	mu      sync.Mutex
	seq     map[string]int64
	streams map[string][]Message
	maxLen  int64
	closed  bool
}

func NewInMemoryStream(maxLen int64) *InMemoryStream {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &InMemoryStream{
		seq:     make(map[string]int64),
		streams: make(map[string][]Message),
		maxLen:  maxLen,
	}
}

func (s *InMemoryStream) Publish(ctx context.Context, stream string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if stream == "" {
		return "", errors.New("stream name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	s.seq[stream]++
	id := fmt.Sprintf("%d-0", s.seq[stream])

	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	msgs := append(s.streams[stream], Message{ID: id, Fields: copied})
	if over := int64(len(msgs)) - s.maxLen; over > 0 {
		msgs = msgs[over:]
	}
	s.streams[stream] = msgs
	return id, nil
}

// Messages returns a snapshot of the entries currently held for stream.
func (s *InMemoryStream) Messages(stream string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.streams[stream]))
	copy(out, s.streams[stream])
	return out
}

// Streams lists stream names that have received at least one message.
func (s *InMemoryStream) Streams() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *InMemoryStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var (
	_ MessageTransport = (*Stream)(nil)
	_ MessageTransport = (*InMemoryStream)(nil)
)
