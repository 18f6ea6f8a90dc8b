package app

import (
	"fmt"

	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/services"
)

type Services struct {
	Trains       services.TrainResolver
	Catalog      services.TrainCatalogService
	Media        services.MediaProcessor
	Notification services.NotificationDispatcher
	Queue        services.NotificationQueue
	Complaints   services.ComplaintService

	// Set only for the redis queue; started with the app.
	redisQueue services.RedisNotificationQueue
}

func wireServices(log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")
	loc := cfg.Location()

	trains := services.NewTrainResolver(log, r.TrainDetail)
	catalog := services.NewTrainCatalogService(log, r.Train, r.TrainDetail)
	media := services.NewMediaProcessor(log, c.Bucket, c.Media, r.ComplaintMedia, services.MediaConfig{
		JPEGQuality:  cfg.Media.JPEGQuality,
		MaxImageEdge: cfg.Media.MaxImageEdge,
		VideoBitrate: cfg.Media.VideoBitrate,
		VideoCodec:   cfg.Media.VideoCodec,
	})
	dispatcher, err := services.NewNotificationDispatcher(log, r.Staff, c.Mailer, services.NotificationConfig{
		TemplatePath:  cfg.Notify.TemplatePath,
		Location:      loc,
		NoEmailPrefix: cfg.Notify.NoEmailPrefix,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init notification dispatcher: %w", err)
	}

	out := Services{
		Trains:       trains,
		Catalog:      catalog,
		Media:        media,
		Notification: dispatcher,
	}
	switch cfg.Notify.Queue {
	case QueueRedis:
		q, err := services.NewRedisNotificationQueue(log, c.Redis, dispatcher, services.RedisQueueConfig{
			Key:     cfg.Redis.QueueKey,
			Timeout: cfg.Notify.Timeout,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init redis notification queue: %w", err)
		}
		out.Queue, out.redisQueue = q, q
	default:
		out.Queue = services.NewMemoryNotificationQueue(log, dispatcher, cfg.Notify.Workers, cfg.Notify.Timeout)
	}

	out.Complaints = services.NewComplaintService(log, r.Complaint, r.ComplaintMedia, trains, media, out.Queue, services.ComplaintServiceConfig{
		MaxParallelMedia: cfg.Media.MaxParallel,
		Location:         loc,
	})
	return out, nil
}
