package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yashpatel08/railsathi/internal/platform/gcp"
	"github.com/yashpatel08/railsathi/internal/platform/localmedia"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/platform/mailer"
	"github.com/yashpatel08/railsathi/internal/platform/sendgrid"
)

type Clients struct {
	Bucket gcp.BucketService
	Media  localmedia.Tools
	Mailer mailer.Mailer
	Redis  goredis.UniversalClient
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.Storage.Mode, cfg.Storage.EmulatorHost)
	if err != nil {
		return Clients{}, fmt.Errorf("resolve object storage config: %w", err)
	}
	bucket, err := gcp.NewBucketService(log, gcp.BucketConfig{
		Storage:       storageCfg,
		Bucket:        cfg.Storage.Bucket,
		ProjectID:     cfg.Storage.ProjectID,
		Credentials:   cfg.Storage.Credentials,
		CDNDomain:     cfg.Storage.CDNDomain,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	tools := localmedia.New(log, localmedia.Config{
		FFmpegPath: cfg.Media.FFmpegPath,
		WorkRoot:   cfg.Media.TempDir,
		Timeout:    cfg.Media.TranscodeTimeout,
	})
	if err := tools.AssertReady(ctx); err != nil {
		// Images still work without ffmpeg; video uploads will fail per file.
		log.Warn("ffmpeg not available", "error", err)
	}

	mail, err := wireMailer(log, cfg.Mail)
	if err != nil {
		_ = bucket.Close()
		return Clients{}, err
	}

	var rdb goredis.UniversalClient
	if cfg.Notify.Queue == QueueRedis {
		rdb = goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:       []string{cfg.Redis.Addr},
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			_ = bucket.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
	}

	return Clients{Bucket: bucket, Media: tools, Mailer: mail, Redis: rdb}, nil
}

func wireMailer(log *logger.Logger, cfg MailConfig) (mailer.Mailer, error) {
	log.Info("Mail transport selected", "transport", cfg.Transport)
	switch cfg.Transport {
	case mailer.TransportSendGrid:
		client, err := sendgrid.New(log, sendgrid.Config{
			APIKey:           cfg.SendGridAPIKey,
			BaseURL:          cfg.SendGridBaseURL,
			DefaultFromEmail: cfg.From,
			DefaultFromName:  cfg.FromName,
			MaxRetries:       cfg.SendGridMaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("init sendgrid client: %w", err)
		}
		return mailer.NewSendGridMailer(client), nil
	case mailer.TransportSMTP:
		from := cfg.From
		if from == "" {
			from = cfg.Username
		}
		m, err := mailer.NewSMTPMailer(log, mailer.SMTPConfig{
			Server:   cfg.Server,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     from,
			FromName: cfg.FromName,
			StartTLS: cfg.StartTLS,
			SSLTLS:   cfg.SSLTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("init smtp mailer: %w", err)
		}
		return m, nil
	default:
		return mailer.NewLogMailer(log), nil
	}
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
