package settings

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesEmptySettings(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing", FileName))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{}, st)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	store := NewStore(path)

	want := Settings{DefaultInput: "/tmp/tokens", DefaultOutput: "/tmp/out"}
	require.NoError(t, store.Save(want))
	assert.FileExists(t, path)

	got, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpdate_KeepsOtherField(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, store.Save(Settings{DefaultInput: "/in", DefaultOutput: "/out"}))

	got, err := store.Update(func(s *Settings) { s.DefaultOutput = "/elsewhere" })
	require.NoError(t, err)
	assert.Equal(t, Settings{DefaultInput: "/in", DefaultOutput: "/elsewhere"}, got)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, got, loaded)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	st, err := NewStore(path).Load()
	require.Error(t, err)
	assert.Equal(t, Settings{}, st)
}

func TestSave_OverwritesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store := NewStore(path)

	require.NoError(t, store.Save(Settings{DefaultInput: "/in"}))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "/in", st.DefaultInput)
}

func TestUpdate_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// separate stores model separate processes sharing the lock file
			_, err := NewStore(path).Update(func(s *Settings) {
				if i%2 == 0 {
					s.DefaultInput = "/in"
				} else {
					s.DefaultOutput = "/out"
				}
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	st, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{DefaultInput: "/in", DefaultOutput: "/out"}, st)
}

func TestUpdate_SharedStoreSerializes(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))

	const writers = 6
	var (
		inside    atomic.Int32
		maxInside atomic.Int32
		wg        sync.WaitGroup
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(func(s *Settings) {
				n := inside.Add(1)
				defer inside.Add(-1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)

				count, _ := strconv.Atoi(s.DefaultInput)
				s.DefaultInput = strconv.Itoa(count + 1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load(), "updates on one store must not overlap")
	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(writers), st.DefaultInput, "no update may be lost")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/someone")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(path))
	assert.Equal(t, "tokenprinter", filepath.Base(filepath.Dir(path)))
}
