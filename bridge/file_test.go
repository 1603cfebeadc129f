package bridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileHost(t *testing.T, content string) (*FileHost, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.md")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	host, err := NewFileHost(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })
	return host, path
}

func watch(t *testing.T, host *FileHost) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	updates := make(chan string, 8)
	go host.Watch(ctx, func(text string) { updates <- text })
	return updates
}

func TestFileHost_Read(t *testing.T) {
	host, _ := newFileHost(t, "# title\n")

	text, err := host.Read()

	require.NoError(t, err)
	assert.Equal(t, "# title\n", text)
}

func TestFileHost_ReadMissingFile(t *testing.T) {
	host, _ := newFileHost(t, "")

	text, err := host.Read()

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestFileHost_Edit(t *testing.T) {
	host, path := newFileHost(t, "old")

	require.NoError(t, host.Edit("new"))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == "new"
	}, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, host.Info("saved"))
}

func TestFileHost_CloseWritesLastEdit(t *testing.T) {
	host, path := newFileHost(t, "old")

	for _, text := range []string{"a", "ab", "abc"} {
		require.NoError(t, host.Edit(text))
	}
	require.NoError(t, host.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.ErrorIs(t, host.Edit("late"), ErrClosed)
}

func TestFileHost_WatchReportsExternalChange(t *testing.T) {
	host, path := newFileHost(t, "a")
	_, err := host.Read()
	require.NoError(t, err)
	updates := watch(t, host)

	require.NoError(t, os.WriteFile(path, []byte("changed elsewhere"), 0o644))

	assert.Equal(t, "changed elsewhere", receive(t, updates))
}

func TestFileHost_WatchIgnoresOwnEdits(t *testing.T) {
	host, _ := newFileHost(t, "a")
	updates := watch(t, host)

	require.NoError(t, host.Edit("typed locally"))

	assert.Never(t, func() bool { return len(updates) > 0 }, 300*time.Millisecond, 10*time.Millisecond)
}

func TestFileHost_WatchIgnoresOtherFiles(t *testing.T) {
	host, path := newFileHost(t, "a")
	updates := watch(t, host)

	other := filepath.Join(filepath.Dir(path), "other.md")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	assert.Never(t, func() bool { return len(updates) > 0 }, 300*time.Millisecond, 10*time.Millisecond)
}

func TestNewFileHost_NoPath(t *testing.T) {
	_, err := NewFileHost("", nil)

	assert.ErrorIs(t, err, ErrNoPath)
}
