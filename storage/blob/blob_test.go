package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

func TestMemory(t *testing.T) {
	s := NewMemory("http://files.local/")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "1/a.pdf", strings.NewReader("hello"), "application/pdf"))
	obj, ok := s.Get("1/a.pdf")
	require.True(t, ok)
	assert.Equal(t, "hello", string(obj.Data))
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, "http://files.local/1/a.pdf", s.URL("1/a.pdf"))

	require.NoError(t, s.Delete(ctx, "1/a.pdf"))
	require.NoError(t, s.Delete(ctx, "1/a.pdf"))
	assert.Equal(t, 0, s.Len())
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()

	st, err := New(conf)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, st)

	conf.Storage.Driver = "oss"
	_, err = New(conf)
	assert.Error(t, err, "oss without endpoint")

	conf.Storage.Driver = "s3"
	_, err = New(conf)
	assert.Error(t, err)
}
