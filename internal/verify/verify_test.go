package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetAgainst(t *testing.T, handler http.HandlerFunc) *Widget {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	w := NewWidget("secret-1")
	w.Endpoint = srv.URL
	return w
}

func TestWidget_Success(t *testing.T) {
	var gotSecret, gotResponse, gotRemoteIP string
	w := widgetAgainst(t, func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotSecret = r.PostForm.Get("secret")
		gotResponse = r.PostForm.Get("response")
		gotRemoteIP = r.PostForm.Get("remoteip")
		rw.Write([]byte(`{"success":true}`))
	})

	err := w.Verify(context.Background(), "tok-1", "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, "secret-1", gotSecret)
	assert.Equal(t, "tok-1", gotResponse)
	assert.Equal(t, "203.0.113.9", gotRemoteIP)
}

func TestWidget_Rejection(t *testing.T) {
	w := widgetAgainst(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	})

	err := w.Verify(context.Background(), "bad-token", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.Contains(t, err.Error(), "invalid-input-response")
}

func TestWidget_EmptyTokenShortCircuits(t *testing.T) {
	called := false
	w := widgetAgainst(t, func(http.ResponseWriter, *http.Request) {
		called = true
	})

	err := w.Verify(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.False(t, called, "no network call without a token")
}

func TestStatic(t *testing.T) {
	assert.NoError(t, Static(true).Verify(context.Background(), "tok", ""))
	assert.ErrorIs(t, Static(true).Verify(context.Background(), "", ""), ErrNotVerified)
	assert.ErrorIs(t, Static(false).Verify(context.Background(), "tok", ""), ErrNotVerified)
}
