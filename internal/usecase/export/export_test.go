package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/infrastructure/mq"
	"cv-builder/internal/infrastructure/storage"
	"cv-builder/internal/repository/memory"
	sectionuc "cv-builder/internal/usecase/section"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
	html  []byte
}

func (f *fakeRenderer) Render(_ context.Context, html []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type event struct {
	user uuid.UUID
	name string
	job  Job
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) NotifyUser(userID uuid.UUID, name string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{user: userID, name: name, job: payload.(Job)})
}

func (n *recordingNotifier) snapshot() []event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event(nil), n.events...)
}

type fixture struct {
	store    *memory.Store
	renderer *fakeRenderer
	svc      *Service
	profile  profile.Profile
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	p, err := store.Profiles().Create(context.Background(), profile.Profile{
		UserID:        uuid.New(),
		Name:          "Backend Engineer",
		TemplateID:    "modern",
		ColorSchemeID: "ocean-blue",
		Language:      "en",
		Personal:      profile.Personal{FirstName: "Ada", LastName: "Lovelace"},
	})
	require.NoError(t, err)

	loader := sectionuc.Repositories{
		Experience:     store.Experiences(),
		Education:      store.Educations(),
		Skills:         store.Skills(),
		Languages:      store.Languages(),
		Certifications: store.Certifications(),
		SocialNetworks: store.SocialNetworks(),
	}
	r := &fakeRenderer{}
	return fixture{
		store:    store,
		renderer: r,
		svc:      NewService(store.Profiles(), loader, r, nil),
		profile:  p,
	}
}

func TestService_ExportCountsDownloads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.Skills().Create(ctx, f.profile.ID, section.Skill{Name: "Go"})
	require.NoError(t, err)
	hidden, err := f.store.Skills().Create(ctx, f.profile.ID, section.Skill{Name: "Cobol"})
	require.NoError(t, err)
	_, err = f.store.Skills().ToggleVisibility(ctx, f.profile.ID, hidden.ID)
	require.NoError(t, err)

	file, err := f.svc.Export(ctx, f.profile)
	require.NoError(t, err)
	assert.Equal(t, "backend-engineer.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
	assert.Contains(t, string(f.renderer.html), "Go")
	assert.NotContains(t, string(f.renderer.html), "Cobol")

	_, err = f.svc.Preview(ctx, f.profile)
	require.NoError(t, err)

	stored, err := f.store.Profiles().GetByID(ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DownloadCount, "preview must not count")
}

func TestService_ExportRendererFailure(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errors.New("chrome crashed")

	_, err := f.svc.Export(context.Background(), f.profile)
	require.Error(t, err)

	stored, err := f.store.Profiles().GetByID(context.Background(), f.profile.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.DownloadCount)
}

func TestService_Validate(t *testing.T) {
	f := newFixture(t)
	f.profile.TemplateID = "nope"

	report, err := f.svc.Validate(context.Background(), f.profile)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "unknown template nope")
}

func TestWorker_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := newFixture(t)

	broker := mq.NewMemory()
	defer broker.Close()
	objects := storage.NewMemory("exports")
	statuses := NewMemoryStatusStore()
	notifier := &recordingNotifier{}

	worker := NewWorker(WorkerDeps{
		Service:  f.svc,
		Profiles: f.store.Profiles(),
		Statuses: statuses,
		Objects:  objects,
		Notifier: notifier,
		Workers:  2,
	})
	runCtx, stop := context.WithCancel(ctx)
	stopped := make(chan error, 1)
	go func() { stopped <- worker.Run(runCtx, broker) }()

	queue := NewQueue(broker, statuses, objects)
	job, err := queue.Enqueue(ctx, f.profile)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)

	require.Eventually(t, func() bool {
		got, err := queue.Status(ctx, f.profile.ID, job.ID)
		return err == nil && got.Status == StatusCompleted
	}, 3*time.Second, 10*time.Millisecond)

	got, rc, err := queue.Open(ctx, f.profile.ID, job.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Equal(t, "backend-engineer.pdf", got.Filename)

	events := notifier.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, EventCompleted, events[0].name)
	assert.Equal(t, f.profile.UserID, events[0].user)

	_, err = queue.Status(ctx, uuid.New(), job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound, "job is scoped to its profile")

	stop()
	require.NoError(t, <-stopped)
}

func TestWorker_ProcessFailureMarksJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.renderer.err = errors.New("timeout")
	statuses := NewMemoryStatusStore()
	notifier := &recordingNotifier{}

	queue := NewQueue(mq.NewMemory(), statuses, storage.NewMemory("exports"))
	job, err := queue.Enqueue(ctx, f.profile)
	require.NoError(t, err)

	worker := NewWorker(WorkerDeps{Service: f.svc, Profiles: f.store.Profiles(), Statuses: statuses, Objects: storage.NewMemory("exports"), Notifier: notifier})
	err = worker.Process(ctx, Request{JobID: job.ID, ProfileID: f.profile.ID, UserID: f.profile.UserID})
	require.Error(t, err)

	got, err := statuses.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "timeout")

	_, _, err = queue.Open(ctx, f.profile.ID, job.ID)
	assert.ErrorIs(t, err, ErrJobNotReady)

	events := notifier.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].name)
}
