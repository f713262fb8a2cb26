package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCreateStore(t *testing.T) {
	ctx := context.Background()
	l := zaptest.NewLogger(t)

	v := viper.New()
	v.Set("store.type", "memory")
	st, err := createStore(ctx, v, l)
	require.NoError(t, err)
	require.NoError(t, st.Ping(ctx))
	require.NoError(t, st.Close(ctx))

	v = viper.New()
	v.Set("store.type", "mongo")
	_, err = createStore(ctx, v, l)
	require.Error(t, err, "mongo needs a uri")

	v = viper.New()
	v.Set("store.type", "redis")
	_, err = createStore(ctx, v, l)
	require.Error(t, err)
}

func TestCreateStorage(t *testing.T) {
	ctx := context.Background()
	l := zaptest.NewLogger(t)

	v := viper.New()
	v.Set("storage.type", "blob")
	v.Set("storage.blob.bucket", "mem://")
	objects, err := createStorage(ctx, v, l)
	require.NoError(t, err)
	require.NoError(t, objects.Write(ctx, "a.b/1/f", strings.NewReader("x"), ""))
	require.NoError(t, objects.Close())

	v = viper.New()
	v.Set("storage.type", "filesystem")
	v.Set("storage.dir", t.TempDir())
	objects, err = createStorage(ctx, v, l)
	require.NoError(t, err)
	require.NoError(t, objects.Write(ctx, "a.b/1/f", strings.NewReader("x"), ""))
	require.NoError(t, objects.Close())

	for _, bucket := range []string{"", "http://bucket"} {
		v = viper.New()
		v.Set("storage.type", "blob")
		v.Set("storage.blob.bucket", bucket)
		_, err = createStorage(ctx, v, l)
		require.Error(t, err, bucket)
	}

	v = viper.New()
	v.Set("storage.type", "ftp")
	_, err = createStorage(ctx, v, l)
	require.Error(t, err)
}

func TestDetectBlobProvider(t *testing.T) {
	assert.Equal(t, "AWS S3", detectBlobProvider("s3://releases?region=eu-central-1"))
	assert.Equal(t, "Google Cloud Storage", detectBlobProvider("gs://releases"))
	assert.Equal(t, "Azure Blob Storage", detectBlobProvider("azblob://releases"))
	assert.Equal(t, "local directory", detectBlobProvider("file:///tmp/releases"))
	assert.Equal(t, "memory", detectBlobProvider("mem://"))
	assert.Equal(t, "unknown", detectBlobProvider("ftp://releases"))
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"http", "publish", "list", "names", "versions", "get", "delete", "version"}, names)
}
