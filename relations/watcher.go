package relations

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/logger"
)

// ModelWatcher watches a model's backing file and evicts the model's cached
// relation map when the file changes, so the next Index call rebuilds from
// the new contents. One watcher per watched model file.
type ModelWatcher struct {
	modelID string
	path    string
	indexer *Indexer
	watcher *fsnotify.Watcher
	log     *zap.SugaredLogger

	mu             sync.Mutex
	callbacks      []func(modelID string)
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// NewModelWatcher creates a watcher tying the model file at path to the
// indexer's cache entry for modelID. Call Start to begin watching.
func NewModelWatcher(modelID, path string, indexer *Indexer, log *zap.SugaredLogger) (*ModelWatcher, error) {
	if log == nil {
		log = logger.Logger
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, errors.Wrapf(err, "watching model file %s", path)
	}
	return &ModelWatcher{
		modelID:        modelID,
		path:           path,
		indexer:        indexer,
		watcher:        fsWatcher,
		log:            log.Named("relations.watcher"),
		debouncePeriod: 500 * time.Millisecond, // debounce rapid file changes
	}, nil
}

// OnChange registers a callback invoked after the cache entry is evicted.
func (mw *ModelWatcher) OnChange(fn func(modelID string)) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.callbacks = append(mw.callbacks, fn)
}

// Start begins watching for model file changes.
func (mw *ModelWatcher) Start() {
	go mw.watchLoop()
}

func (mw *ModelWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			mw.log.Infow("model file changed",
				logger.FieldModelID, mw.modelID,
				logger.FieldFile, event.Name,
				"op", event.Op.String(),
			)
			mw.scheduleEvict()

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			mw.log.Warnw("model watcher error", logger.FieldError, err)
		}
	}
}

// scheduleEvict debounces rapid file changes before evicting.
func (mw *ModelWatcher) scheduleEvict() {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if mw.debounceTimer != nil {
		mw.debounceTimer.Stop()
	}
	mw.debounceTimer = time.AfterFunc(mw.debouncePeriod, mw.evict)
}

func (mw *ModelWatcher) evict() {
	mw.indexer.Evict(mw.modelID)

	mw.mu.Lock()
	callbacks := make([]func(string), len(mw.callbacks))
	copy(callbacks, mw.callbacks)
	mw.mu.Unlock()

	for _, fn := range callbacks {
		fn(mw.modelID)
	}
}

// Stop stops watching. Pending debounced evictions are cancelled.
func (mw *ModelWatcher) Stop() error {
	mw.mu.Lock()
	if mw.debounceTimer != nil {
		mw.debounceTimer.Stop()
	}
	mw.mu.Unlock()
	return mw.watcher.Close()
}
