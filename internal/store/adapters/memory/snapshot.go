package memory

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
	"github.com/dropDatabas3/fleethub/internal/util/atomicwrite"
)

type snapshot struct {
	Tenants []repository.Tenant `json:"tenants"`
	Modules []repository.Module `json:"modules"`
}

func readSnapshot(path string) (snapshot, error) {
	var s snapshot
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	if len(b) == 0 {
		return s, nil
	}
	err = json.Unmarshal(b, &s)
	return s, err
}

// flusher coalesce marcas de "dirty" y escribe el snapshot en background.
type flusher struct {
	path    string
	collect func() snapshot

	dirty chan struct{}
	quit  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	lastErr error
	stopped bool
}

func newFlusher(path string, collect func() snapshot) *flusher {
	f := &flusher{
		path:    path,
		collect: collect,
		dirty:   make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
	f.wg.Add(1)
	go f.loop()
	return f
}

func (f *flusher) mark() {
	select {
	case f.dirty <- struct{}{}:
	default:
	}
}

func (f *flusher) loop() {
	defer f.wg.Done()
	for {
		select {
		case <-f.dirty:
			f.write()
		case <-f.quit:
			f.write()
			return
		}
	}
}

func (f *flusher) write() {
	state := f.collect()
	err := atomicwrite.WriteFunc(f.path, 0o600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	})
	f.mu.Lock()
	f.lastErr = err
	f.mu.Unlock()
	if err != nil {
		logger.L().Error("snapshot write failed",
			logger.Component("store.memory"),
			logger.String("path", f.path),
			logger.Err(err),
		)
	}
}

func (f *flusher) stop() error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return nil
	}
	f.stopped = true
	f.mu.Unlock()

	close(f.quit)
	f.wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}
