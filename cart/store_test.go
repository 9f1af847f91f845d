package cart

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/meethahouse/dessert-api/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	basundi = models.Dessert{ID: "d1", Name: "Basundi", Price: 39, ImageURL: "basundi"}
	meetha  = models.Dessert{ID: "d2", Name: "Double ka Meetha", Price: 59, ImageURL: "double-ka-meetha"}
)

type failingStorage struct{}

func (failingStorage) Load(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (failingStorage) Save(string, []byte) error         { return errors.New("disk gone") }

func TestAddMergesQuantity(t *testing.T) {
	s := NewStore(NewMemoryStorage(), nil)

	s.Add(basundi, 2)
	s.Add(basundi, 3)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 5, s.Count())
}

func TestAddDefaultsToOne(t *testing.T) {
	s := NewStore(nil, nil)

	s.Add(basundi, 0)
	s.Add(meetha, -4)

	assert.Equal(t, 2, s.Count())
	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "d1", lines[0].ID)
	assert.Equal(t, "d2", lines[1].ID)
}

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name  string
		qty   int
		lines int
		count int
	}{
		{"overwrite", 4, 1, 4},
		{"zero removes", 0, 0, 0},
		{"negative removes", -1, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(nil, nil)
			s.Add(basundi, 2)

			s.SetQuantity("d1", tc.qty)

			assert.Len(t, s.Lines(), tc.lines)
			assert.Equal(t, tc.count, s.Count())
		})
	}
}

func TestSetQuantityUnknownIDIsIgnored(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(basundi, 1)

	s.SetQuantity("nope", 3)

	assert.Equal(t, 1, s.Count())
}

func TestRemoveAndClear(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(basundi, 1)
	s.Add(meetha, 1)

	s.Remove("d1")
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, "d2", s.Lines()[0].ID)

	s.Remove("missing")
	assert.Len(t, s.Lines(), 1)

	s.Clear()
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Total())
}

func TestTotal(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(basundi, 2)
	s.Add(meetha, 1)

	assert.Equal(t, 137, s.Total())
}

func TestLinesReturnsCopy(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(basundi, 1)

	lines := s.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, s.Count())
}

func TestPersistsAndReloads(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewStore(storage, nil)
	s.Add(basundi, 2)
	s.Add(meetha, 1)

	reloaded := NewStore(storage, nil)
	assert.Equal(t, s.Lines(), reloaded.Lines())
	assert.Equal(t, 137, reloaded.Total())

	reloaded.Clear()
	assert.True(t, NewStore(storage, nil).Empty())
}

func TestMalformedStorageYieldsEmptyCart(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{{"},
		{"wrong shape", `{"id":"d1"}`},
		{"null", `null`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			require.NoError(t, storage.Save(StorageKey, []byte(tc.data)))

			s := NewStore(storage, nil)
			assert.True(t, s.Empty())

			s.Add(basundi, 1)
			assert.Equal(t, 1, s.Count())
		})
	}
}

func TestRehydrateDropsInvalidLines(t *testing.T) {
	storage := NewMemoryStorage()
	raw := `[{"id":"d1","name":"Basundi","price":39,"quantity":2},
		{"id":"d1","name":"Basundi","price":39,"quantity":5},
		{"id":"","name":"Ghost","price":1,"quantity":1},
		{"id":"d2","name":"Double ka Meetha","price":59,"quantity":0}]`
	require.NoError(t, storage.Save(StorageKey, []byte(raw)))

	s := NewStore(storage, nil)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestFailingStorageNeverSurfaces(t *testing.T) {
	s := NewStore(failingStorage{}, nil)
	assert.True(t, s.Empty())

	s.Add(basundi, 1)
	assert.Equal(t, 39, s.Total())
}

func TestConcurrentAdds(t *testing.T) {
	s := NewStore(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(basundi, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
	assert.Len(t, s.Lines(), 1)
}

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "carts")
	storage, err := NewFileStorage(dir)
	require.NoError(t, err)

	_, found, err := storage.Load(StorageKey)
	require.NoError(t, err)
	assert.False(t, found)

	s := NewStore(storage, nil)
	s.Add(meetha, 3)

	raw, err := os.ReadFile(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"d2","name":"Double ka Meetha","price":59,"image_url":"double-ka-meetha","quantity":3}]`, string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, 177, NewStore(storage, nil).Total())
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	storage := NewRedisStorage(client, "shopper-1", time.Hour)

	_, found, err := storage.Load(StorageKey)
	require.NoError(t, err)
	assert.False(t, found)

	s := NewStore(storage, nil)
	s.Add(basundi, 2)

	assert.True(t, mr.Exists("cart:shopper-1:cart"))
	assert.Equal(t, time.Hour, mr.TTL("cart:shopper-1:cart"))
	assert.Equal(t, 78, NewStore(storage, nil).Total())
}
