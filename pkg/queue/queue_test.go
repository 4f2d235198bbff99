package queue

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestDecodeTaskRequiresIDAndImage(t *testing.T) {
    _, err := DecodeTask([]byte(`{"id":"","image":"AQI="}`))
    assert.Error(t, err)

    _, err = DecodeTask([]byte(`{"id":"t1"}`))
    assert.Error(t, err)

    _, err = DecodeTask([]byte(`not json`))
    assert.Error(t, err)

    task, err := DecodeTask([]byte(`{"id":"t1","mimeType":"image/png","image":"AQI="}`))
    require.NoError(t, err)
    assert.Equal(t, []byte{1, 2}, task.Image)
}

func TestResultChannelIsPerTask(t *testing.T) {
    assert.Equal(t, "screenshot:result:abc", ResultChannel("abc"))
    assert.NotEqual(t, ResultChannel("a"), ResultChannel("b"))
}
