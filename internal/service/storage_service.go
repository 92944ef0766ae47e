package service

import (
	"context"
	"goal_pilot_backend/internal/config"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 归档存储；key 使用 / 分隔
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// DeletePrefix 删除 prefix 下的全部对象，不存在时不报错
	DeletePrefix(ctx context.Context, prefix string) error
}

// LocalStorageProvider 本地存储实现，目录不对外提供静态访问
type LocalStorageProvider struct {
	Root string
}

func (p *LocalStorageProvider) path(key string) string {
	return filepath.Join(p.Root, filepath.FromSlash(key))
}

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	dst := p.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

func (p *LocalStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	return os.RemoveAll(p.path(prefix))
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Bucket string
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Bucket: cfg.MinioBucket, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, p.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	objects := p.Client.ListObjects(ctx, p.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	for obj := range objects {
		if obj.Err != nil {
			return obj.Err
		}
		if err := p.Client.RemoveObject(ctx, p.Bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	BucketName string
	Client     *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{BucketName: cfg.OSSBucket, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	bucket, err := p.Client.Bucket(p.BucketName)
	if err != nil {
		return err
	}
	return bucket.PutObject(key, reader, oss.ContentType(contentType))
}

func (p *OSSStorageProvider) DeletePrefix(ctx context.Context, prefix string) error {
	bucket, err := p.Client.Bucket(p.BucketName)
	if err != nil {
		return err
	}

	marker := ""
	for {
		result, err := bucket.ListObjects(oss.Prefix(prefix), oss.Marker(marker))
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(result.Objects))
		for _, obj := range result.Objects {
			keys = append(keys, obj.Key)
		}
		if len(keys) > 0 {
			if _, err := bucket.DeleteObjects(keys, oss.DeleteObjectsQuiet(true)); err != nil {
				return err
			}
		}
		if !result.IsTruncated {
			return nil
		}
		marker = result.NextMarker
	}
}

// StorageService 保存与清理模型原始输出
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		} else {
			logger.L().Warn("MinIO unavailable, falling back to local storage", zap.Error(err))
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		} else {
			logger.L().Warn("OSS unavailable, falling back to local storage", zap.Error(err))
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Root: cfg.Storage.LocalPath}
	}

	return &StorageService{Provider: provider}
}

// archivePrefix 单个路线图的归档目录
func archivePrefix(roadmapID string) string {
	return path.Join("roadmaps", roadmapID) + "/"
}

// ArchiveKey 原始生成结果的存储路径
func ArchiveKey(roadmapID, strategy string) string {
	return archivePrefix(roadmapID) + strategy + ".json"
}

// ArchiveGeneration 归档模型原始输出，失败只记录日志
func (s *StorageService) ArchiveGeneration(ctx context.Context, roadmapID, strategy, raw string) {
	key := ArchiveKey(roadmapID, strategy)
	if err := s.Provider.Upload(ctx, key, strings.NewReader(raw), int64(len(raw)), util.MimeJSON); err != nil {
		logger.L().Warn("Failed to archive generation output",
			zap.String("roadmap_id", roadmapID),
			zap.String("strategy", strategy),
			zap.Error(err),
		)
	}
}

// PurgeGenerations 删除已被替换或删除的路线图的归档
func (s *StorageService) PurgeGenerations(ctx context.Context, roadmapIDs []string) {
	for _, id := range roadmapIDs {
		if id == "" {
			continue
		}
		if err := s.Provider.DeletePrefix(ctx, archivePrefix(id)); err != nil {
			logger.L().Warn("Failed to purge generation archive",
				zap.String("roadmap_id", id),
				zap.Error(err),
			)
		}
	}
}
