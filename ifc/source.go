package ifc

import "context"

// PropertySource is the attribute-retrieval surface the core consumes.
// Implementations may be backed by an in-memory model or by a native
// parsing engine, so every lookup takes a context and may block on I/O.
type PropertySource interface {
	// GetProperties returns the attribute bag for one entity, or a nil bag
	// (and nil error) when the entity does not exist in the model.
	GetProperties(ctx context.Context, modelID string, entityID int) (Bag, error)

	// GetAllPropertiesOfType returns the attribute bags of every entity of
	// the given type code, keyed by express ID. Used for pre-materialization
	// indexing, before a full in-memory model exists.
	GetAllPropertiesOfType(ctx context.Context, modelID string, typeCode uint32) (map[int]Bag, error)
}

// Model is an already-parsed model whose relation-bearing entities can be
// walked by type. This is the in-memory ingestion path for the indexer.
type Model interface {
	ID() string

	// WalkType invokes fn for every entity of the given type code, in
	// ascending express-ID order. Iteration stops on the first error.
	WalkType(typeCode uint32, fn func(entityID int, bag Bag) error) error
}

// DisposalNotifier announces model disposal so caches keyed by model ID can
// be dropped. OnDisposed returns an unregister func; holders must call it in
// their own teardown.
type DisposalNotifier interface {
	OnDisposed(fn func(modelID string)) (unregister func())
}
