package memory

import (
    "context"
    "io"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestStoreGetDelete(t *testing.T) {
    ctx := context.Background()
    s := NewStorage()

    key, err := s.Store(ctx, strings.NewReader("png-bytes"), "previews/a")
    require.NoError(t, err)
    assert.Equal(t, "previews/a", key)

    rc, err := s.Get(ctx, key)
    require.NoError(t, err)
    data, _ := io.ReadAll(rc)
    assert.Equal(t, "png-bytes", string(data))

    require.NoError(t, s.Delete(ctx, key))
    _, err = s.Get(ctx, key)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanupBefore(t *testing.T) {
    ctx := context.Background()
    s := NewStorage()
    base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

    s.now = func() time.Time { return base }
    _, _ = s.Store(ctx, strings.NewReader("old"), "old")
    s.now = func() time.Time { return base.Add(time.Hour) }
    _, _ = s.Store(ctx, strings.NewReader("new"), "new")

    require.NoError(t, s.CleanupBefore(ctx, base.Add(time.Minute)))
    assert.Equal(t, 1, s.Len())
    _, err := s.Get(ctx, "new")
    assert.NoError(t, err)
}
