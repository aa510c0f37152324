package config

import (
	"context"

	"book-inventory-backend/utils"
)

// ConfigureReportStorage picks where import error reports are written.
func ConfigureReportStorage(ctx context.Context, cfg *Config) (utils.FileStorage, error) {
	if cfg.ReportStore == S3ReportStore {
		return utils.NewS3FileStorage(ctx, utils.S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.AWSEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
	}
	return utils.NewLocalFileStorage(cfg.ReportDir, cfg.BaseURL+"/files"), nil
}
