package imagehost

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Defaults(t *testing.T) {
	client := NewHTTPClient(Config{APIKey: "k"})
	assert.Equal(t, "https://api.imgbb.com/1/upload", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestHTTPClient_Upload_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		assert.Equal(t, "600", r.URL.Query().Get("expiration"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "proof.png", header.Filename)
		assert.Equal(t, []byte("PNGDATA"), data)
		assert.Equal(t, "proof.png", r.FormValue("name"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"abc","url":"https://i.ibb.co/abc/proof.png","display_url":"https://ibb.co/abc","delete_url":"https://ibb.co/abc/del"},"success":true,"status":200}`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{BaseURL: server.URL, APIKey: "secret-key", Expiration: 10 * time.Minute})
	img, err := client.Upload(context.Background(), "proof.png", []byte("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "abc", img.ID)
	assert.Equal(t, "https://i.ibb.co/abc/proof.png", img.URL)
}

func TestHTTPClient_Upload_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status_code":400,"error":{"message":"Invalid API v1 key."}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{BaseURL: server.URL, APIKey: "bad"})
	_, err := client.Upload(context.Background(), "x.png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "Invalid API v1 key.")
}

func TestHTTPClient_Upload_NotSuccessful(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"status":200,"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{BaseURL: server.URL})
	_, err := client.Upload(context.Background(), "x.png", []byte("x"))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestHTTPClient_Upload_Empty(t *testing.T) {
	client := NewHTTPClient(Config{})
	_, err := client.Upload(context.Background(), "x.png", nil)
	assert.Error(t, err)
}

func TestNoopClient(t *testing.T) {
	var c Client = NewNoopClient()
	_, err := c.Upload(context.Background(), "x.png", []byte("x"))
	assert.ErrorIs(t, err, ErrDisabled)
}
