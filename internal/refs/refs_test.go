package refs

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubert/imagine/internal/backend"
	"github.com/zhubert/imagine/internal/backend/backendtest"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/session"
)

func newTestManager(t *testing.T, active int) (*Manager, *session.Store, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New(t)
	store := session.NewStore(nil)
	srv.SetState(backend.SessionState{ActiveTab: store.Catalog().At(active)})
	require.NoError(t, session.NewManager(srv.Client(), store).Reload(context.Background()))
	return NewManager(srv.Client(), store), store, srv
}

func TestAdd_AdoptsServerList(t *testing.T) {
	m, store, srv := newTestManager(t, 2)
	imgs := backendtest.Images(2)

	res, err := m.Add(context.Background(), imgs[0], "")
	require.NoError(t, err)
	assert.Equal(t, []string{imgs[0]}, res.References)
	assert.Empty(t, res.SwitchTo)

	// The server dedupes; the client must show what the server says.
	res, err = m.Add(context.Background(), imgs[0], "")
	require.NoError(t, err)
	assert.Len(t, res.References, 1)
	assert.Equal(t, srv.State().ReferenceImages, store.References())
}

func TestAdd_CapacityIsLocal(t *testing.T) {
	m, _, srv := newTestManager(t, 2)
	imgs := backendtest.Images(4)
	for i := 0; i < 3; i++ {
		_, err := m.Add(context.Background(), imgs[i], "")
		require.NoError(t, err)
	}
	assert.True(t, m.Full())
	assert.False(t, m.UploaderVisible())
	before := srv.Calls("add_reference_image")

	_, err := m.Add(context.Background(), imgs[3], "")
	require.Error(t, err)
	assert.True(t, pErrors.Is(err, pErrors.KindCapacity))
	assert.Equal(t, before, srv.Calls("add_reference_image"), "capacity must be enforced without a network call")
	assert.Equal(t, 3, m.Len())
}

func TestAdd_ServerFailureLeavesListUnchanged(t *testing.T) {
	m, store, srv := newTestManager(t, 2)
	imgs := backendtest.Images(2)
	_, err := m.Add(context.Background(), imgs[0], "")
	require.NoError(t, err)

	srv.OnAddRef = func(string) *backendtest.Response {
		return &backendtest.Response{Code: http.StatusBadRequest, Body: backendtest.Failure("too big")}
	}
	_, err = m.Add(context.Background(), imgs[1], "")
	require.Error(t, err)
	assert.Equal(t, "too big", pErrors.UserMessage(err))
	assert.Equal(t, []string{imgs[0]}, store.References())
}

func TestAdd_Validation(t *testing.T) {
	m, _, srv := newTestManager(t, 2)

	tests := []struct {
		name  string
		image string
	}{
		{"not a data uri", "hello"},
		{"not an image", "data:text/plain;base64,aGk="},
		{"too large", "data:image/png;base64," + strings.Repeat("A", 14<<20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Add(context.Background(), tt.image, "")
			require.Error(t, err)
			assert.True(t, pErrors.Is(err, pErrors.KindInvalid))
		})
	}
	assert.Zero(t, srv.Calls("add_reference_image"))
}

func TestAdd_TargetModelRequestsSwitch(t *testing.T) {
	m, store, _ := newTestManager(t, 0)
	target := store.Catalog().At(3)

	res, err := m.Add(context.Background(), backendtest.PNG(1), target)
	require.NoError(t, err)
	assert.Equal(t, target, res.SwitchTo)

	res, err = m.Add(context.Background(), backendtest.PNG(2), store.ActiveModel())
	require.NoError(t, err)
	assert.Empty(t, res.SwitchTo, "same model should not request a switch")
}

func TestRemove(t *testing.T) {
	m, _, srv := newTestManager(t, 2)
	imgs := backendtest.Images(3)
	for _, img := range imgs {
		_, err := m.Add(context.Background(), img, "")
		require.NoError(t, err)
	}

	list, err := m.Remove(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, imgs[1:], list)

	before := srv.Calls("remove_reference_image")
	for _, idx := range []int{-1, 2, 10} {
		_, err := m.Remove(context.Background(), idx)
		require.Error(t, err)
		assert.True(t, pErrors.Is(err, pErrors.KindInvalid))
	}
	assert.Equal(t, before, srv.Calls("remove_reference_image"), "out of range index must not hit the network")
	assert.Equal(t, 1, m.Remaining())
}

func TestAddMany_ContinuesOnError(t *testing.T) {
	m, _, _ := newTestManager(t, 3)
	imgs := backendtest.Images(4)
	batch := []string{imgs[0], "data:text/plain;base64,aGk=", imgs[1], imgs[2], imgs[3]}

	res := m.AddMany(context.Background(), batch)
	assert.Equal(t, 3, res.Added)
	require.Len(t, res.Errors, 2)
	assert.True(t, pErrors.Is(res.Errors[0], pErrors.KindInvalid))
	assert.True(t, pErrors.Is(res.Errors[1], pErrors.KindCapacity))
}

func TestAdd_ConcurrentCallsAreSerialized(t *testing.T) {
	m, store, srv := newTestManager(t, 2)
	imgs := backendtest.Images(6)

	var wg sync.WaitGroup
	for _, img := range imgs {
		wg.Add(1)
		go func(img string) {
			defer wg.Done()
			_, _ = m.Add(context.Background(), img, "")
		}(img)
	}
	wg.Wait()

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, srv.State().ReferenceImages, store.References())
	assert.Equal(t, 3, srv.Calls("add_reference_image"), "only three uploads should reach the server")
}

func TestSectionVisible(t *testing.T) {
	m, _, _ := newTestManager(t, 0)
	assert.False(t, m.SectionVisible())

	m2, _, _ := newTestManager(t, 2)
	assert.True(t, m2.SectionVisible())
	assert.True(t, m2.UploaderVisible())
}
