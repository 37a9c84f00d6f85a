package resalesdk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk/resaletest"
)

func TestMemoryStorage(t *testing.T) {
	t.Parallel()

	resaletest.TestStorage(t, func(*testing.T) resalesdk.Storage {
		return resalesdk.NewMemoryStorage()
	})

	t.Run("zero value", func(t *testing.T) {
		var s resalesdk.MemoryStorage
		require.NoError(t, s.Set(context.Background(), "k", "v"))
		require.Equal(t, map[string]string{"k": "v"}, s.Snapshot())
	})
}

// failingStorage fails every read.
type failingStorage struct {
	*resalesdk.MemoryStorage
	err error
}

func (f failingStorage) Get(context.Context, string) (string, error) {
	return "", f.err
}

func TestStorageErrorsPropagate(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	client := resalesdk.NewSDKClient("http://unused", failingStorage{
		MemoryStorage: resalesdk.NewMemoryStorage(),
		err:           boom,
	})

	_, err := client.Send(context.Background(), resalesdk.NewGetRequest("/resale/towns/", nil))
	require.ErrorIs(t, err, boom)

	_, err = client.Recent(context.Background())
	require.ErrorIs(t, err, boom)

	_, err = client.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
}
