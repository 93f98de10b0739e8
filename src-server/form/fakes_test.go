package form_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"devevents/src-server/client"
	"devevents/src-server/model"
)

// gatedDecoder holds every decode until its file name is released.
type gatedDecoder struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedDecoder() *gatedDecoder {
	return &gatedDecoder{gates: make(map[string]chan struct{})}
}

func (d *gatedDecoder) gate(name string) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.gates[name]; !ok {
		d.gates[name] = make(chan struct{})
	}
	return d.gates[name]
}

func (d *gatedDecoder) release(name string) {
	close(d.gate(name))
}

func (d *gatedDecoder) Decode(ctx context.Context, file model.ImageFile) (string, error) {
	select {
	case <-d.gate(file.Name):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if file.Name == "broken.png" {
		return "", errors.New("corrupt image")
	}
	return "preview:" + file.Name, nil
}

// instantDecoder never blocks.
type instantDecoder struct{}

func (instantDecoder) Decode(_ context.Context, file model.ImageFile) (string, error) {
	return "preview:" + file.Name, nil
}

type fakeSender struct {
	calls    atomic.Int32
	started  chan struct{}
	release  chan struct{}
	err      error
	payloads []client.Payload
	mu       sync.Mutex
}

func (f *fakeSender) Create(ctx context.Context, payload client.Payload) (*client.Response, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &client.Response{Success: true, Message: "Event created"}, nil
}
