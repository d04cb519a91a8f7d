package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qtest "github.com/nicoarellano/components-na/internal/testing"
	"github.com/nicoarellano/components-na/logger"
	"github.com/nicoarellano/components-na/relations"
)

func testRelations() relations.ModelRelations {
	return relations.ModelRelations{
		1:  {relations.ContainsElements: []int{10, 11}},
		10: {relations.ContainedInStructure: []int{1}},
	}
}

func TestStoreSaveLoadDelete(t *testing.T) {
	db := qtest.CreateTestDB(t)
	store, err := NewStore(db, logger.Logger)
	require.NoError(t, err)

	ctx := context.Background()
	rel := testRelations()

	require.NoError(t, store.Save(ctx, "clinic", rel))

	loaded, err := store.Load(ctx, "clinic")
	require.NoError(t, err)
	assert.Equal(t, rel, loaded)

	// Saving again replaces, not duplicates.
	rel[2] = relations.EntityRelations{relations.IsDefinedBy: []int{200}}
	require.NoError(t, store.Save(ctx, "clinic", rel))
	loaded, err = store.Load(ctx, "clinic")
	require.NoError(t, err)
	assert.Equal(t, rel, loaded)

	models, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "clinic", models[0].ModelID)
	assert.False(t, models[0].IndexedAt.IsZero())

	require.NoError(t, store.Delete(ctx, "clinic"))
	_, err = store.Load(ctx, "clinic")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent model is not an error.
	assert.NoError(t, store.Delete(ctx, "clinic"))
}

func TestStoreLoadUnknownModel(t *testing.T) {
	db := qtest.CreateTestDB(t)
	store, err := NewStore(db, logger.Logger)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "never-saved")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreLoadCorruptPayload(t *testing.T) {
	db := qtest.CreateTestDB(t)
	store, err := NewStore(db, logger.Logger)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO relation_maps (model_id, payload, indexed_at) VALUES (?, ?, datetime('now'))`,
		"broken", "not json",
	)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStoreSaveDatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS relation_maps").
		WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewStore(db, logger.Logger)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO relation_maps").
		WillReturnError(assert.AnError)

	err = store.Save(context.Background(), "clinic", testRelations())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
