package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubert/imagine/internal/backend"
	"github.com/zhubert/imagine/internal/backend/backendtest"
	pErrors "github.com/zhubert/imagine/internal/errors"
)

func newRawServer(t *testing.T, h http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestBootstrap(t *testing.T) {
	srv := backendtest.New(t)
	refs := backendtest.Images(2)
	srv.SetState(backend.SessionState{
		ActiveTab:        backendtest.ModelNames[3],
		Results:          backendtest.Images(1),
		ReferenceImages:  refs,
		SaveImages:       true,
		AspectRatioIndex: 2,
	})

	b, err := srv.Client().Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, backendtest.ModelNames[3], b.Session.ActiveTab)
	assert.Equal(t, refs, b.Session.ReferenceImages)
	assert.Len(t, b.Session.Results, 1)
	assert.True(t, b.Session.SaveImages)
	assert.Equal(t, 2, b.Session.AspectRatioIndex)
	assert.Equal(t, backendtest.ModelNames, b.ModelNames)
	assert.Equal(t, "GEM_PIX", b.DisplayNames["Edición Mágica (Nano)"])
}

func TestParseBootstrap(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr string
	}{
		{
			name: "valid with null lists",
			page: `<html><body data-initial-session-state='{"active_tab":"A","results":null}' ` +
				`data-model-display-names='{"A":"IMAGEN_3_1"}' data-model-names-list='["A"]'></body></html>`,
		},
		{
			name:    "missing attribute",
			page:    `<html><body data-model-display-names='{}' data-model-names-list='[]'></body></html>`,
			wantErr: "data-initial-session-state",
		},
		{
			name: "bad json",
			page: `<html><body data-initial-session-state='{' data-model-display-names='{}' ` +
				`data-model-names-list='[]'></body></html>`,
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := backend.ParseBootstrap(strings.NewReader(tt.page))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "A", b.Session.ActiveTab)
			assert.NotNil(t, b.Session.Results)
			assert.NotNil(t, b.Session.ReferenceImages)
		})
	}
}

func TestBootstrap_HTTPError(t *testing.T) {
	url := newRawServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	_, err := backend.New(url).Bootstrap(context.Background())
	require.Error(t, err)
	assert.True(t, pErrors.Is(err, pErrors.KindNetwork))
}
