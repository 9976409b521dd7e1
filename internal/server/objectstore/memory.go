package objectstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
}

// Memory is an in-memory Store used by tests and local development. Induced
// failures (FailPut, FailGet, FailDelete) let tests simulate transient and
// permanent storage errors per key; calls are recorded in order.
type Memory struct {
	objects      map[string]memObject
	putFailures  map[string]int
	getFailures  map[string]int
	delFailures  map[string]int
	PutCalls     []string
	GetCalls     []string
	DeleteCalls  []string
	PresignCalls []string
	mu           sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		objects:     map[string]memObject{},
		putFailures: map[string]int{},
		getFailures: map[string]int{},
		delFailures: map[string]int{},
	}
}

// FailPut makes the next n Put calls for key fail.
func (m *Memory) FailPut(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putFailures[key] = n
}

// FailGet makes the next n Get calls for key fail.
func (m *Memory) FailGet(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getFailures[key] = n
}

// FailDelete makes the next n Delete calls for key fail.
func (m *Memory) FailDelete(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delFailures[key] = n
}

func (m *Memory) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.PutCalls = append(m.PutCalls, key)
	if n := m.putFailures[key]; n > 0 {
		m.putFailures[key] = n - 1
		return fmt.Errorf("induced put failure: %s", key)
	}

	data := make([]byte, len(body))
	copy(data, body)
	m.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if n := m.getFailures[key]; n > 0 {
		m.getFailures[key] = n - 1
		return nil, fmt.Errorf("induced get failure: %s", key)
	}

	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, ErrObjectNotFound)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) []error {
	m.mu.Lock()
	defer m.mu.Unlock()

	errs := make([]error, len(keys))
	for i, key := range keys {
		m.DeleteCalls = append(m.DeleteCalls, key)
		if n := m.delFailures[key]; n > 0 {
			m.delFailures[key] = n - 1
			errs[i] = fmt.Errorf("induced delete failure: %s", key)
			continue
		}
		delete(m.objects, key)
	}
	return errs
}

func (m *Memory) PublicURL(key string) string {
	return "memory://" + key
}

func (m *Memory) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PresignCalls = append(m.PresignCalls, "put:"+key)
	return "memory://presign-put/" + key, nil
}

func (m *Memory) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PresignCalls = append(m.PresignCalls, "get:"+key)
	return "memory://presign-get/" + key, nil
}

// ContentType returns the stored content type for key, for assertions.
func (m *Memory) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key].contentType
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
