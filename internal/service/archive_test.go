package service

import (
	"io"
	"os"
	"testing"
	"time"

	"bulletins/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArchiveID(t *testing.T) {
	assert.NoError(t, ValidateArchiveID("bulletins_BTS_PI_1_1700000000000.zip"))

	for _, id := range []string{"", "../etc/passwd", "a/b.zip", ".hidden", "a..zip", `a\b.zip`} {
		assert.ErrorIs(t, ValidateArchiveID(id), ErrInvalidArchiveID, id)
	}
}

func TestArchiveService_StoreOpen(t *testing.T) {
	svc := newArchiveService(t)
	svc.ttl = time.Hour

	archive, err := svc.Store("bulletins_g_1.zip", []byte("zipdata"), ArchiveMeta{GroupName: "g", StudentCount: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(7), archive.Size)
	assert.Equal(t, 2, archive.StudentCount)

	meta, f, err := svc.Open("bulletins_g_1.zip")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "zipdata", string(data))
	assert.Equal(t, "g", meta.GroupName)

	ok, err := svc.Has("bulletins_g_1.zip")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Has("../x")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = svc.Open("missing.zip")
	assert.ErrorIs(t, err, repository.ErrArchiveNotFound)

	list, err := svc.List(0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestArchiveService_PurgeExpired(t *testing.T) {
	svc := newArchiveService(t)

	now := time.Now()
	svc.now = func() time.Time { return now }
	svc.ttl = time.Minute

	archive, err := svc.Store("bulletins_old_1.zip", []byte("x"), ArchiveMeta{GroupName: "old"})
	require.NoError(t, err)

	// еще не истек
	purged, err := svc.PurgeExpired(now)
	require.NoError(t, err)
	assert.Equal(t, 0, purged)

	svc.now = func() time.Time { return now.Add(time.Hour) }
	_, _, err = svc.Open(archive.ID)
	assert.ErrorIs(t, err, repository.ErrArchiveNotFound)

	purged, err = svc.PurgeExpired(now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = os.Stat(archive.Path)
	assert.True(t, os.IsNotExist(err))
}
