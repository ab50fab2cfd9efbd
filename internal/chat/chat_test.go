package chat

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mingle-app/mingle/internal/bus"
	"github.com/mingle-app/mingle/internal/directory"
	"github.com/mingle-app/mingle/internal/store"
)

type testEnv struct {
	db  *store.DB
	bus *bus.Bus
	dir *directory.StoreClient

	registry   *Registry
	stream     *Stream
	aggregator *Aggregator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	dir := directory.NewStoreClient(db)
	logger := zap.NewNop()

	return &testEnv{
		db:         db,
		bus:        b,
		dir:        dir,
		registry:   NewRegistry(db, b, logger),
		stream:     NewStream(db, b, logger),
		aggregator: NewAggregator(db, b, dir, logger),
	}
}
