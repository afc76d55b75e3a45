package app

import (
	"time"

	"github.com/sitecms/sitecms/pkg/storage"
)

const defaultStorageTimeout = 30 * time.Second

// StorageSettings converts StorageConfig to the storage package representation.
func (c StorageConfig) StorageSettings() storage.Settings {
	return storage.Settings{
		Driver: c.Driver,
		Local: storage.LocalSettings{
			Root:      c.Local.Root,
			PublicURL: c.Local.PublicURL,
		},
		S3: storage.S3Settings{
			Bucket:       c.S3.Bucket,
			Region:       c.S3.Region,
			Endpoint:     c.S3.Endpoint,
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
			PublicURL:    c.S3.PublicURL,
			UsePathStyle: c.S3.UsePathStyle,
		},
	}
}

// OperationTimeout bounds a single upload or delete call.
func (c StorageConfig) OperationTimeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultStorageTimeout
	}
	return c.Timeout
}
