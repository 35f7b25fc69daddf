package batch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs a full batch, then watches the input directory and reprocesses
// every input file that is created or rewritten, once it has been quiet for
// the configured settle interval. onBatch is called with the initial Summary
// and then with a one-file Summary per reprocessed file, always from the
// goroutine that called Watch. It runs until ctx is cancelled.
func (p *Processor) Watch(ctx context.Context, onBatch func(*Summary)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Register before the initial run so files arriving during it are seen.
	if err := watcher.Add(p.cfg.InputDir); err != nil {
		return err
	}

	initial, err := p.Process(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	onBatch(initial)
	slog.Info("batch: watching for changes", "input_dir", p.cfg.InputDir)

	ready := make(chan string)
	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok {
			t.Reset(p.cfg.Settle)
			return
		}
		pending[path] = time.AfterFunc(p.cfg.Settle, func() {
			mu.Lock()
			delete(pending, path)
			mu.Unlock()
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !p.isInput(filepath.Base(event.Name)) {
				continue
			}
			schedule(event.Name)

		case path := <-ready:
			s := &Summary{RunID: p.newID(), Started: p.now()}
			res, _ := p.ProcessFile(ctx, path)
			s.Files = append(s.Files, res)
			s.Finished = p.now()
			onBatch(s)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("batch: watcher error", "err", err)
		}
	}
}
