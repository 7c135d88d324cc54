package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/mobility/internal/app/auth"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/repositories"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/webhook"
)

var testLogger = zerolog.Nop()

// ---- profiles ----

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*models.Profile
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[uuid.UUID]*models.Profile{}}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	for _, existing := range r.profiles {
		if existing.Email == p.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if p, ok := r.profiles[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewResourceNotFoundError("profile not found")
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("profile not found")
}

func (r *fakeProfileRepo) ListByRole(_ context.Context, role models.RoleType, majorID *uuid.UUID) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, p := range r.profiles {
		if p.Role != role {
			continue
		}
		if majorID != nil && (p.MajorID == nil || *p.MajorID != *majorID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// ---- reference data ----

type fakeReferenceRepo struct {
	year   *models.AcademicYear
	majors []*models.Major
}

func (r *fakeReferenceRepo) ListMajors(context.Context) ([]*models.Major, error) { return r.majors, nil }

func (r *fakeReferenceRepo) GetMajorByID(_ context.Context, id uuid.UUID) (*models.Major, error) {
	for _, m := range r.majors {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("major not found")
}

func (r *fakeReferenceRepo) GetCurrentAcademicYear(context.Context) (*models.AcademicYear, error) {
	if r.year == nil {
		return nil, apperrors.ErrNoCurrentAcademicYear
	}
	return r.year, nil
}

// ---- applications ----

type fakeApplicationRepo struct {
	apps       map[uuid.UUID]*models.Application
	updateErr  error
	getCalls   int
	lastFilter repositories.ApplicationFilter
	statsRows  []repositories.StatsRow
	statsCalls int
}

func newFakeApplicationRepo(apps ...*models.Application) *fakeApplicationRepo {
	r := &fakeApplicationRepo{apps: map[uuid.UUID]*models.Application{}}
	for _, a := range apps {
		r.apps[a.ID] = a
	}
	return r
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *models.Application) error {
	for _, a := range r.apps {
		if a.StudentID == app.StudentID && a.AcademicYearID == app.AcademicYearID {
			return apperrors.NewCustomError(apperrors.ErrDuplicateApplication, "Vous avez déjà un dossier pour cette année")
		}
	}
	app.ID = uuid.New()
	app.CreatedAt, app.UpdatedAt = time.Now(), time.Now()
	stored := *app
	r.apps[app.ID] = &stored
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	r.getCalls++
	a, ok := r.apps[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	c := *a
	return &c, nil
}

func (r *fakeApplicationRepo) ExistsForStudentYear(_ context.Context, studentID, yearID uuid.UUID) (bool, error) {
	for _, a := range r.apps {
		if a.StudentID == studentID && a.AcademicYearID == yearID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) matches(a *models.Application, f repositories.ApplicationFilter) bool {
	if f.StudentID != nil && a.StudentID != *f.StudentID {
		return false
	}
	if f.MajorHeadID != nil && a.MajorHeadID != *f.MajorHeadID {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	return true
}

func (r *fakeApplicationRepo) List(_ context.Context, f repositories.ApplicationFilter) ([]*models.Application, int64, error) {
	r.lastFilter = f
	var out []*models.Application
	for _, a := range r.apps {
		if r.matches(a, f) {
			c := *a
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeApplicationRepo) CountByStatus(_ context.Context, f repositories.ApplicationFilter) (map[models.ApplicationStatus]int, error) {
	f.Status = nil
	counts := map[models.ApplicationStatus]int{}
	for _, a := range r.apps {
		if r.matches(a, f) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, app *models.Application, status models.ApplicationStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.apps[app.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	stored.Status = status
	stored.UpdatedAt = time.Now()
	app.Status, app.UpdatedAt = status, stored.UpdatedAt
	return nil
}

func (r *fakeApplicationRepo) StatsRows(context.Context) ([]repositories.StatsRow, error) {
	r.statsCalls++
	return r.statsRows, nil
}

// ---- courses ----

type fakeCourseRepo struct {
	courses map[uuid.UUID]*models.Course
}

func newFakeCourseRepo(courses ...*models.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: map[uuid.UUID]*models.Course{}}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) Create(_ context.Context, c *models.Course) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	r.courses[c.ID] = c
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	if c, ok := r.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, apperrors.NewResourceNotFoundError("course not found")
}

func (r *fakeCourseRepo) ListByApplication(_ context.Context, appID uuid.UUID) ([]*models.Course, error) {
	out := []*models.Course{}
	for _, c := range r.courses {
		if c.ApplicationID == appID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.courses[id]; !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) UpdateValidation(_ context.Context, id uuid.UUID, v *bool, reason *string) error {
	c, ok := r.courses[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	c.IsValidated, c.RejectionReason = v, reason
	return nil
}

// ---- files ----

type fakeFileRepo struct {
	files     map[uuid.UUID]*models.File
	createErr error
	deleteErr error
}

func newFakeFileRepo(files ...*models.File) *fakeFileRepo {
	r := &fakeFileRepo{files: map[uuid.UUID]*models.File{}}
	for _, f := range files {
		r.files[f.ID] = f
	}
	return r
}

func (r *fakeFileRepo) Create(_ context.Context, f *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	r.files[f.ID] = f
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.File, error) {
	if f, ok := r.files[id]; ok {
		return f, nil
	}
	return nil, apperrors.NewResourceNotFoundError("file not found")
}

func (r *fakeFileRepo) ListByApplication(_ context.Context, appID uuid.UUID) ([]*models.File, error) {
	out := []*models.File{}
	for _, f := range r.files {
		if f.ApplicationID == appID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) CountByApplication(ctx context.Context, appID uuid.UUID) (int, error) {
	files, _ := r.ListByApplication(ctx, appID)
	return len(files), nil
}

func (r *fakeFileRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.files, id)
	return nil
}

// ---- messages ----

type fakeMessageRepo struct {
	messages  []*models.Message
	createErr error
}

func (r *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeMessageRepo) ListByApplication(_ context.Context, appID uuid.UUID) ([]*models.Message, error) {
	out := []*models.Message{}
	for _, m := range r.messages {
		if m.ApplicationID == appID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---- notifications ----

type fakeNotificationRepo struct {
	rows []*models.Notification
}

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, rows []*models.Notification) error {
	for _, n := range rows {
		n.ID = uuid.New()
		n.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	out := []*models.Notification{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		n := r.rows[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) find(userID, id uuid.UUID) (int, bool) {
	for i, row := range r.rows {
		if row.ID == id && row.UserID == userID {
			return i, true
		}
	}
	return 0, false
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	i, ok := r.find(userID, id)
	if !ok {
		return apperrors.NewResourceNotFoundError("notification not found")
	}
	r.rows[i].IsRead = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.UserID == userID && !row.IsRead {
			row.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	i, ok := r.find(userID, id)
	if !ok {
		return apperrors.NewResourceNotFoundError("notification not found")
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

// ---- collaborators ----

type dispatched struct {
	event   workflow.Event
	appID   uuid.UUID
	status  models.ApplicationStatus
	sender  uuid.UUID
	preview string
}

type fakeEvents struct {
	calls []dispatched
}

func (f *fakeEvents) Dispatch(_ context.Context, event workflow.Event, app *models.Application, sender uuid.UUID, preview string) {
	f.calls = append(f.calls, dispatched{event: event, appID: app.ID, status: app.Status, sender: sender, preview: preview})
}

func (f *fakeEvents) Trigger(context.Context, workflow.Actor, *dto.TriggerWebhookRequest) (*dto.TriggerWebhookResponse, error) {
	return nil, nil
}

func (f *fakeEvents) Status() *dto.WebhookStatusResponse { return &dto.WebhookStatusResponse{} }

func (f *fakeEvents) events() []workflow.Event {
	out := make([]workflow.Event, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.event)
	}
	return out
}

type fakeStats struct {
	invalidations int
}

func (f *fakeStats) Get(context.Context) (*dto.StatsResponse, error) { return &dto.StatsResponse{}, nil }

func (f *fakeStats) Invalidate(context.Context) { f.invalidations++ }

type fakeStorage struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	putErr    error
	deleteErr error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{blobs: map[string][]byte{}} }

func (s *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = buf.Bytes()
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *fakeStorage) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://files.test/" + key + "?ttl=" + ttl.String(), nil
}

type fakeWebhook struct {
	configured bool
	payloads   []webhook.Payload
}

func (f *fakeWebhook) Configured() bool { return f.configured }

func (f *fakeWebhook) Send(_ context.Context, p webhook.Payload) bool {
	f.payloads = append(f.payloads, p)
	return true
}

// ---- fixture ----

type fixture struct {
	student       *models.Profile
	otherStudent  *models.Profile
	head          *models.Profile
	otherHead     *models.Profile
	international *models.Profile
	year          *models.AcademicYear

	profiles      *fakeProfileRepo
	reference     *fakeReferenceRepo
	applications  *fakeApplicationRepo
	courses       *fakeCourseRepo
	files         *fakeFileRepo
	messages      *fakeMessageRepo
	notifications *fakeNotificationRepo
	events        *fakeEvents
	stats         *fakeStats
	storage       *fakeStorage
	authz         *auth.AuthorizationService
}

func newFixture() *fixture {
	f := &fixture{
		student:       &models.Profile{ID: uuid.New(), Email: "jane@edu.ece.fr", FullName: "Jane Student", Role: models.RoleStudent},
		otherStudent:  &models.Profile{ID: uuid.New(), Email: "bob@edu.ece.fr", FullName: "Bob Student", Role: models.RoleStudent},
		head:          &models.Profile{ID: uuid.New(), Email: "head@ece.fr", FullName: "Hugo Head", Role: models.RoleMajorHead},
		otherHead:     &models.Profile{ID: uuid.New(), Email: "other.head@ece.fr", FullName: "Olga Head", Role: models.RoleMajorHead},
		international: &models.Profile{ID: uuid.New(), Email: "intl@ece.fr", FullName: "Ines International", Role: models.RoleInternational},
		year:          &models.AcademicYear{ID: uuid.New(), Year: "2025-2026", IsCurrent: true},
	}
	f.profiles = newFakeProfileRepo(f.student, f.otherStudent, f.head, f.otherHead, f.international)
	f.reference = &fakeReferenceRepo{year: f.year}
	f.applications = newFakeApplicationRepo()
	f.courses = newFakeCourseRepo()
	f.files = newFakeFileRepo()
	f.messages = &fakeMessageRepo{}
	f.notifications = &fakeNotificationRepo{}
	f.events = &fakeEvents{}
	f.stats = &fakeStats{}
	f.storage = newFakeStorage()
	f.authz = auth.NewAuthorizationService(f.applications, testLogger)
	return f
}

func actorOf(p *models.Profile) workflow.Actor {
	return workflow.Actor{ID: p.ID, Role: p.Role}
}

// addApplication stores a dossier of the fixture student in status
func (f *fixture) addApplication(status models.ApplicationStatus) *models.Application {
	app := &models.Application{
		ID:                uuid.New(),
		StudentID:         f.student.ID,
		MajorHeadID:       f.head.ID,
		AcademicYearID:    f.year.ID,
		Status:            status,
		UniversityName:    "Politecnico di Milano",
		UniversityCity:    "Milan",
		UniversityCountry: "Italy",
		Student:           f.student,
		MajorHead:         f.head,
		AcademicYear:      f.year,
	}
	f.applications.apps[app.ID] = app
	return app
}

func (f *fixture) addFile(app *models.Application, uploader *models.Profile) *models.File {
	file := &models.File{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		UploaderID:    uploader.ID,
		FileName:      "agreement.pdf",
		FilePath:      app.ID.String() + "/1700000000000_agreement.pdf",
		FileSize:      1024,
	}
	f.files.files[file.ID] = file
	f.storage.blobs[file.FilePath] = []byte("%PDF-1.4")
	return file
}

func (f *fixture) applicationService() ApplicationService {
	return NewApplicationService(ApplicationDeps{
		Applications: f.applications,
		Profiles:     f.profiles,
		Reference:    f.reference,
		Courses:      f.courses,
		Files:        f.files,
		Messages:     f.messages,
		Authz:        f.authz,
		Events:       f.events,
		Stats:        f.stats,
	}, testLogger)
}
