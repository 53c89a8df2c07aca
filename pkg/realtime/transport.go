package realtime

import "time"

// Transport is one live connection attempt.
type Transport interface {
	Send(data []byte) error
	Close() error
}

// TransportHandler receives lifecycle callbacks from a Transport. Implementations
// must call them from their own goroutines, never from inside the factory or
// Close, and must call OnClose exactly once per transport.
type TransportHandler struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnError   func(err error)
	OnClose   func()
}

// TransportFactory starts connecting to url and returns immediately. An error
// means the attempt failed before it started.
type TransportFactory func(url string, handler TransportHandler) (Transport, error)

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules the reconnect timer. Tests swap in a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall clock.
func SystemClock() Clock { return systemClock{} }
