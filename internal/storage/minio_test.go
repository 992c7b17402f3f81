package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readable/internal/config"
)

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{
			name:    "missing endpoint",
			cfg:     config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"},
			wantErr: "minio config: missing endpoint",
		},
		{
			name:    "missing secret key",
			cfg:     config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", Bucket: "b"},
			wantErr: "minio config: missing credentials",
		},
		{
			name:    "everything missing",
			cfg:     config.MinIOConfig{},
			wantErr: "minio config: missing endpoint, credentials, bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg)
			assert.Nil(t, s)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestMinIO_PresignGet(t *testing.T) {
	// With a fixed region the signature is computed locally; no server is contacted.
	m, err := newClient(config.MinIOConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
		Bucket:    "uploads",
		Region:    "us-east-1",
	})
	require.NoError(t, err)

	t.Run("attachment name", func(t *testing.T) {
		raw, err := m.PresignGet(context.Background(), "uploads/abc.pdf", "Quarterly report.pdf", 15*time.Minute)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "/uploads/uploads/abc.pdf", u.Path)
		assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
		assert.Equal(t, `attachment; filename="Quarterly report.pdf"`, u.Query().Get("response-content-disposition"))
	})

	t.Run("no filename", func(t *testing.T) {
		raw, err := m.PresignGet(context.Background(), "uploads/abc.txt", "", time.Minute)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Empty(t, u.Query().Get("response-content-disposition"))
	})
}
