package relations

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/ifc"
	"github.com/nicoarellano/components-na/logger"
)

// EntityRelations is one entity's slot table: role index to related IDs.
type EntityRelations map[Role][]int

// ModelRelations is a model's full relation map: entity ID to slot table.
// Built once per model and read-only afterwards.
type ModelRelations map[int]EntityRelations

// IndexedFunc is notified once per successful index build.
type IndexedFunc func(modelID string, relations ModelRelations)

// Indexer builds and caches one relation map per model. Maps are memoized by
// model ID: a second Index call for the same model returns the cached map
// unchanged. Callers needing a rebuild must Evict first.
type Indexer struct {
	source ifc.PropertySource
	log    *zap.SugaredLogger

	mu        sync.Mutex
	maps      map[string]ModelRelations
	inFlight  map[string]chan struct{}
	onIndexed []IndexedFunc

	unsubscribe func()
}

// NewIndexer creates an indexer reading raw records through source. When
// notifier is non-nil the indexer registers a disposal handler that evicts
// the disposed model's map; Close deregisters it.
func NewIndexer(source ifc.PropertySource, notifier ifc.DisposalNotifier, log *zap.SugaredLogger) *Indexer {
	if log == nil {
		log = logger.Logger
	}
	idx := &Indexer{
		source:   source,
		log:      log.Named("relations.indexer"),
		maps:     make(map[string]ModelRelations),
		inFlight: make(map[string]chan struct{}),
	}
	if notifier != nil {
		idx.unsubscribe = notifier.OnDisposed(idx.Evict)
	}
	return idx
}

// Close releases the disposal subscription. The cached maps stay usable.
func (idx *Indexer) Close() {
	if idx.unsubscribe != nil {
		idx.unsubscribe()
		idx.unsubscribe = nil
	}
}

// OnIndexed registers a callback fired once per successful build, on either
// ingestion path.
func (idx *Indexer) OnIndexed(fn IndexedFunc) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.onIndexed = append(idx.onIndexed, fn)
}

// Index builds the relation map for an in-memory model by walking its
// relation-bearing entities kind by kind. Idempotent per model ID.
func (idx *Indexer) Index(ctx context.Context, model ifc.Model) (ModelRelations, error) {
	return idx.build(ctx, model.ID(), func(relations ModelRelations) error {
		for _, kind := range kinds {
			kind := kind
			err := model.WalkType(kind.TypeCode, func(entityID int, bag ifc.Bag) error {
				idx.indexRecord(relations, kind, bag)
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "walking %s records", kind.Name)
			}
		}
		return nil
	})
}

// IndexFromSource builds the relation map directly from the raw
// property-retrieval surface, by numeric type code. Used when indexing must
// happen before a full in-memory model is materialized. Produces a map
// structurally identical to Index for the same underlying records.
func (idx *Indexer) IndexFromSource(ctx context.Context, modelID string) (ModelRelations, error) {
	return idx.build(ctx, modelID, func(relations ModelRelations) error {
		for _, kind := range kinds {
			bags, err := idx.source.GetAllPropertiesOfType(ctx, modelID, kind.TypeCode)
			if err != nil {
				return errors.Wrapf(err, "retrieving %s records", kind.Name)
			}
			// Deterministic record order so forward-slot overwrite behavior
			// matches the walk path.
			recordIDs := make([]int, 0, len(bags))
			for recordID := range bags {
				recordIDs = append(recordIDs, recordID)
			}
			sort.Ints(recordIDs)
			for _, recordID := range recordIDs {
				idx.indexRecord(relations, kind, bags[recordID])
			}
		}
		return nil
	})
}

// build runs fill under per-model single-flight: a concurrent Index request
// for a model already being indexed blocks until the first build completes,
// then returns the same map. Two divergent maps are never built.
func (idx *Indexer) build(ctx context.Context, modelID string, fill func(ModelRelations) error) (ModelRelations, error) {
	for {
		idx.mu.Lock()
		if existing, ok := idx.maps[modelID]; ok {
			idx.mu.Unlock()
			return existing, nil
		}
		wait, building := idx.inFlight[modelID]
		if !building {
			done := make(chan struct{})
			idx.inFlight[modelID] = done
			idx.mu.Unlock()

			relations := make(ModelRelations)
			err := fill(relations)

			idx.mu.Lock()
			delete(idx.inFlight, modelID)
			var callbacks []IndexedFunc
			if err == nil {
				idx.maps[modelID] = relations
				callbacks = append(callbacks, idx.onIndexed...)
			}
			idx.mu.Unlock()
			close(done)

			if err != nil {
				return nil, err
			}
			idx.log.Infow("relations indexed",
				logger.FieldModelID, modelID,
				logger.FieldCount, len(relations),
			)
			for _, fn := range callbacks {
				fn(modelID, relations)
			}
			return relations, nil
		}
		idx.mu.Unlock()

		select {
		case <-wait:
			// First build finished; loop to pick up its result (or take
			// over the build if it failed).
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// indexRecord folds one relation record into the map. The forward slot is
// overwritten per (relating, kind) while inverse slots accumulate one entry
// per record: a relating entity seen in a second record of the same kind
// keeps only the later record's related list. Records missing either key
// are dropped.
func (idx *Indexer) indexRecord(relations ModelRelations, kind Kind, bag ifc.Bag) {
	relating, ok := bag.RefID(kind.RelatingKey)
	if !ok {
		idx.log.Debugw("skipping malformed relation record",
			logger.FieldTypeCode, kind.TypeCode,
			"missing", kind.RelatingKey,
		)
		return
	}
	if _, present := bag[kind.RelatedKey]; !present {
		idx.log.Debugw("skipping malformed relation record",
			logger.FieldTypeCode, kind.TypeCode,
			"missing", kind.RelatedKey,
		)
		return
	}
	related := bag.RefIDs(kind.RelatedKey)
	if related == nil {
		related = []int{}
	}

	// Copied so later records cannot alias the stored list. make keeps the
	// slice non-nil for empty related lists.
	forward := make([]int, len(related))
	copy(forward, related)
	relations.slot(relating)[kind.ForRelating] = forward

	for _, relatedID := range related {
		inverse := relations.slot(relatedID)
		inverse[kind.ForRelated] = append(inverse[kind.ForRelated], relating)
	}
}

func (m ModelRelations) slot(entityID int) EntityRelations {
	er, ok := m[entityID]
	if !ok {
		er = make(EntityRelations)
		m[entityID] = er
	}
	return er
}

// Get returns a model's cached relation map, or nil when not indexed.
func (idx *Indexer) Get(modelID string) ModelRelations {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.maps[modelID]
}

// Install places an externally built map (e.g. deserialized from storage)
// in the cache. An existing map for the model is replaced.
func (idx *Indexer) Install(modelID string, relations ModelRelations) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.maps[modelID] = relations
}

// Evict drops a model's cached map. Safe to call for unknown models.
func (idx *Indexer) Evict(modelID string) {
	idx.mu.Lock()
	_, had := idx.maps[modelID]
	delete(idx.maps, modelID)
	idx.mu.Unlock()
	if had {
		idx.log.Debugw("relation map evicted", logger.FieldModelID, modelID)
	}
}

// GetEntityRelations returns the related entity IDs recorded for one entity
// under one role. Returns nil when the model has no index, the entity has no
// slot table, the role name is unrecognized, or the slot was never set; an
// empty non-nil slice only for an indexed-but-empty slot.
func (idx *Indexer) GetEntityRelations(modelID string, entityID int, roleName string) []int {
	role, ok := RoleFromName(roleName)
	if !ok {
		return nil
	}
	return idx.GetEntityRelationsByRole(modelID, entityID, role)
}

// GetEntityRelationsByRole is GetEntityRelations with a resolved role.
func (idx *Indexer) GetEntityRelationsByRole(modelID string, entityID int, role Role) []int {
	if !role.Valid() {
		return nil
	}
	idx.mu.Lock()
	relations := idx.maps[modelID]
	idx.mu.Unlock()
	if relations == nil {
		return nil
	}
	er, ok := relations[entityID]
	if !ok {
		return nil
	}
	ids, ok := er[role]
	if !ok {
		return nil
	}
	return ids
}
