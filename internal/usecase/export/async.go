package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"cv-builder/internal/domain/profile"
	"cv-builder/internal/infrastructure/mq"
	"cv-builder/internal/pkg/logger"
	"cv-builder/internal/pkg/workerpool"
)

// Events pushed to the owner's websocket connections.
const (
	EventCompleted = "pdf_export_completed"
	EventFailed    = "pdf_export_failed"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler mq.Handler) error
}

// ObjectStore holds rendered files.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type Notifier interface {
	NotifyUser(userID uuid.UUID, event string, payload any)
}

// Request is the queued message body.
type Request struct {
	JobID     uuid.UUID `json:"job_id"`
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// Queue accepts export requests and answers status and download queries.
type Queue struct {
	publisher Publisher
	statuses  StatusStore
	objects   ObjectStore
	now       func() time.Time
}

func NewQueue(publisher Publisher, statuses StatusStore, objects ObjectStore) *Queue {
	return &Queue{publisher: publisher, statuses: statuses, objects: objects, now: time.Now}
}

// Enqueue records a pending job and publishes it for the workers.
func (q *Queue) Enqueue(ctx context.Context, p profile.Profile) (Job, error) {
	now := q.now().UTC()
	job := Job{
		ID:        uuid.New(),
		ProfileID: p.ID,
		UserID:    p.UserID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.statuses.Put(ctx, job); err != nil {
		return Job{}, fmt.Errorf("store export status: %w", err)
	}

	body, err := json.Marshal(Request{JobID: job.ID, ProfileID: p.ID, UserID: p.UserID})
	if err != nil {
		return Job{}, err
	}
	if _, err := q.publisher.Publish(ctx, Channel, body, map[string]string{"profile_id": p.ID.String()}); err != nil {
		return Job{}, fmt.Errorf("publish export: %w", err)
	}
	return job, nil
}

// Status returns the job when it belongs to the profile.
func (q *Queue) Status(ctx context.Context, profileID, jobID uuid.UUID) (Job, error) {
	job, err := q.statuses.Get(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.ProfileID != profileID {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// Open returns a reader over a completed export. The caller closes it.
func (q *Queue) Open(ctx context.Context, profileID, jobID uuid.UUID) (Job, io.ReadCloser, error) {
	job, err := q.Status(ctx, profileID, jobID)
	if err != nil {
		return Job{}, nil, err
	}
	if job.Status != StatusCompleted {
		return Job{}, nil, ErrJobNotReady
	}
	rc, err := q.objects.Get(ctx, job.ObjectKey)
	if err != nil {
		return Job{}, nil, err
	}
	return job, rc, nil
}

// Worker consumes export requests from the queue and runs them on a pool.
type Worker struct {
	svc      *Service
	profiles profile.Repository
	statuses StatusStore
	objects  ObjectStore
	notifier Notifier
	workers  int
	log      *logger.Logger
	now      func() time.Time
}

type WorkerDeps struct {
	Service  *Service
	Profiles profile.Repository
	Statuses StatusStore
	Objects  ObjectStore
	Notifier Notifier
	Workers  int
	Logger   *logger.Logger
}

func NewWorker(d WorkerDeps) *Worker {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{
		svc:      d.Service,
		profiles: d.Profiles,
		statuses: d.Statuses,
		objects:  d.Objects,
		notifier: d.Notifier,
		workers:  d.Workers,
		log:      log.Named("export-worker"),
		now:      time.Now,
	}
}

// Run subscribes to the export channel and blocks until ctx is done.
// Queued jobs finish before it returns.
func (w *Worker) Run(ctx context.Context, sub Subscriber) error {
	pool := workerpool.New(w.workers, w.workers*2)
	results := pool.Run(context.WithoutCancel(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			if r.Err != nil {
				w.log.Warn("export failed", "job_id", r.Key, "error", r.Err)
			}
		}
	}()

	err := sub.Subscribe(ctx, Channel, func(ctx context.Context, msg mq.Message) error {
		var req Request
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			// Redelivery would not fix a bad payload.
			w.log.Error("drop malformed export message", "message_id", msg.ID, "error", err)
			return nil
		}
		return pool.Submit(ctx, req.JobID.String(), func(taskCtx context.Context) error {
			return w.Process(taskCtx, req)
		})
	})
	pool.Close()
	<-done

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Process renders one export, stores the file and notifies the owner.
func (w *Worker) Process(ctx context.Context, req Request) error {
	job, err := w.statuses.Get(ctx, req.JobID)
	if err != nil {
		if !errors.Is(err, ErrJobNotFound) {
			return err
		}
		job = Job{ID: req.JobID, ProfileID: req.ProfileID, UserID: req.UserID, CreatedAt: w.now().UTC()}
	}
	if job.Status == StatusCompleted {
		return nil
	}
	job.Status = StatusProcessing
	w.save(ctx, &job)

	if err := w.process(ctx, &job); err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		w.save(ctx, &job)
		w.notify(job, EventFailed)
		return err
	}

	job.Status = StatusCompleted
	job.Error = ""
	w.save(ctx, &job)
	w.notify(job, EventCompleted)
	w.log.Info("export completed", "job_id", job.ID, "profile_id", job.ProfileID, "bytes", job.Size)
	return nil
}

func (w *Worker) process(ctx context.Context, job *Job) error {
	p, err := w.profiles.GetByIDAndUser(ctx, job.ProfileID, job.UserID)
	if err != nil {
		return err
	}
	f, err := w.svc.Export(ctx, p)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("exports/%s/%s.pdf", job.ProfileID, job.ID)
	if err := w.objects.Put(ctx, key, bytes.NewReader(f.Data), int64(len(f.Data)), "application/pdf"); err != nil {
		return fmt.Errorf("upload export: %w", err)
	}
	job.Filename = f.Filename
	job.ObjectKey = key
	job.Size = len(f.Data)
	return nil
}

func (w *Worker) save(ctx context.Context, job *Job) {
	job.UpdatedAt = w.now().UTC()
	if err := w.statuses.Put(ctx, *job); err != nil {
		w.log.Warn("store export status failed", "job_id", job.ID, "status", job.Status, "error", err)
	}
}

func (w *Worker) notify(job Job, event string) {
	if w.notifier == nil {
		return
	}
	w.notifier.NotifyUser(job.UserID, event, job)
}
