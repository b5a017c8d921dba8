package ws

import (
	"sync"
	"time"

	"github.com/huddlehq/huddle/internal/infrastructure/logging"
	"github.com/huddlehq/huddle/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type nopLogger struct{}

func (nopLogger) Init() {}

func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                                         {}

func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Infof(string, ...any)                                                         {}

func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Warnf(string, ...any)                                                         {}

func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                                         {}

func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                                         {}

// fakeConn records every envelope delivered to it.
type fakeConn struct {
	id string

	mu   sync.Mutex
	sent []*Envelope
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string {
	return f.id
}

func (f *fakeConn) Send(msg *Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeConn) Close() error {
	return nil
}

func (f *fakeConn) envelopes() []*Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*Envelope, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeConn) types() []string {
	envelopes := f.envelopes()
	types := make([]string, 0, len(envelopes))
	for _, e := range envelopes {
		types = append(types, e.Type)
	}
	return types
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func newTestCoordinator(capacity int) *Coordinator {
	return NewCoordinator(
		Options{RoomCapacity: capacity, RoomLifetime: time.Hour},
		nopLogger{},
		metrics.New(prometheus.NewRegistry()),
		nil,
	)
}
