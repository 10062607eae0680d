package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/user-profile-service/config"
	"github.com/oksasatya/user-profile-service/internal/domain/entity"
	pginfra "github.com/oksasatya/user-profile-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-profile-service/pkg/helpers"
)

const (
	maxAttempts  = 3
	backoffBase  = 3 * time.Second
	uploadWindow = 30 * time.Second
)

// Avatar worker: consumes avatar jobs, uploads the decoded image to
// GCS and writes the public URL back onto the profile. Each job gets
// 3 attempts with exponential backoff starting at 3s; after terminal
// success or failure the job is acked away, nothing is retained.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.GCSBucket == "" {
		log.Fatal("GCS_BUCKET not configured")
	}

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		log.Fatalf("gcs client: %v", err)
	}
	defer func() { _ = gcsClient.Close() }()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQAvatarQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQAvatarQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	w := &worker{pool: pool, gcs: gcsClient, bucket: cfg.GCSBucket}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job entity.AvatarJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}

			if err := w.processWithRetry(ctx, job); err != nil {
				log.Printf("avatar job for user %s failed terminally: %v", job.UserID, err)
			}
			// Terminal success and terminal failure both drop the job.
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("avatar worker listening on queue=%s", cfg.RabbitMQAvatarQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type worker struct {
	pool   *pgxpool.Pool
	gcs    *storage.Client
	bucket string
}

func (w *worker) processWithRetry(ctx context.Context, job entity.AvatarJob) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoffBase << (attempt - 1)) // 3s, 6s
		}
		if err = w.process(ctx, job); err == nil {
			return nil
		}
		log.Printf("avatar job for user %s attempt %d/%d: %v", job.UserID, attempt+1, maxAttempts, err)
	}
	return err
}

func (w *worker) process(ctx context.Context, job entity.AvatarJob) error {
	img, err := base64.StdEncoding.DecodeString(job.ImagePath)
	if err != nil {
		return err
	}
	contentType := http.DetectContentType(img)

	objectPath := path.Join("avatars", job.UserID, uuid.NewString())

	c, cancel := context.WithTimeout(ctx, uploadWindow)
	defer cancel()
	url, err := helpers.UploadObject(c, w.gcs, w.bucket, objectPath, contentType, bytes.NewReader(img))
	if err != nil {
		return err
	}

	repo := pginfra.NewUserRepository(w.pool)
	return repo.UpdateAvatarURL(c, job.UserID, url)
}
