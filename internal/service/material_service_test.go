package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeMaterialStore struct {
	materials map[uuid.UUID]*model.Material
	// statusOverride lets a test simulate a concurrent moderator winning the
	// compare-and-set between the service's read and its write.
	statusOverride func()
}

func newFakeMaterialStore() *fakeMaterialStore {
	return &fakeMaterialStore{materials: make(map[uuid.UUID]*model.Material)}
}

func (f *fakeMaterialStore) Create(_ context.Context, m *model.Material) error {
	m.ID = uuid.New()
	cp := *m
	f.materials[m.ID] = &cp
	return nil
}

func (f *fakeMaterialStore) GetByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	m, ok := f.materials[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMaterialStore) ListByCourseAndStatus(_ context.Context, courseID uuid.UUID, status model.MaterialStatus) ([]model.Material, error) {
	var out []model.Material
	for _, m := range f.materials {
		if m.CourseID == courseID && m.Status == status {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMaterialStore) ListByOwner(_ context.Context, ownerID int) ([]model.Material, error) {
	var out []model.Material
	for _, m := range f.materials {
		if m.OwnerID == ownerID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMaterialStore) UpdateMetadata(_ context.Context, id uuid.UUID, title, description string) error {
	if m, ok := f.materials[id]; ok {
		m.Title = title
		m.Description = description
	}
	return nil
}

func (f *fakeMaterialStore) UpdateStatusIfPending(_ context.Context, id uuid.UUID, status model.MaterialStatus) (bool, error) {
	if f.statusOverride != nil {
		f.statusOverride()
		f.statusOverride = nil
	}
	m, ok := f.materials[id]
	if !ok || m.Status != model.MaterialStatusPending {
		return false, nil
	}
	m.Status = status
	return true, nil
}

func (f *fakeMaterialStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.materials, id)
	return nil
}

type fakeCourseStore struct {
	courses map[uuid.UUID]*model.Course
}

func (f *fakeCourseStore) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

type fakeCache struct {
	invalidated []string
	events      []model.ModerationEvent
	downloads   []string
}

func (f *fakeCache) GetCourseListing(context.Context, string) ([]model.Material, bool) {
	return nil, false
}
func (f *fakeCache) SetCourseListing(context.Context, string, []model.Material) {}
func (f *fakeCache) InvalidateCourseListing(_ context.Context, courseID string) {
	f.invalidated = append(f.invalidated, courseID)
}
func (f *fakeCache) PublishModerationEvent(_ context.Context, e model.ModerationEvent) {
	f.events = append(f.events, e)
}
func (f *fakeCache) QueueDownload(_ context.Context, id string) {
	f.downloads = append(f.downloads, id)
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

const (
	courseOwnerID  = 100
	uploaderID     = 200
	otherTeacherID = 300
	adminID        = 1
)

func testActor(id int, caps ...model.Capability) *model.User {
	return &model.User{
		ID: id,
		Roles: []model.RoleWithCapabilities{
			{Role: &model.Role{ID: 1, Name: "test"}, Capabilities: caps},
		},
	}
}

func newTestService(t *testing.T) (*MaterialService, *fakeMaterialStore, *fakeCourseStore, *fakeCache, uuid.UUID) {
	t.Helper()

	courseID := uuid.New()
	courses := &fakeCourseStore{courses: map[uuid.UUID]*model.Course{
		courseID: {ID: courseID, OwnerID: courseOwnerID, Title: "Kalkulus I"},
	}}
	materials := newFakeMaterialStore()
	cache := &fakeCache{}
	perms := authz.NewPermissionService(authz.NopObserver{}, zerolog.Nop())

	svc := NewMaterialService(materials, courses, cache, perms, zerolog.Nop())
	return svc, materials, courses, cache, courseID
}

func submitPending(t *testing.T, svc *MaterialService, courseID uuid.UUID) *model.Material {
	t.Helper()
	uploader := testActor(uploaderID, model.CapabilityMaterialsUpload)
	m, err := svc.Submit(context.Background(), uploader, SubmitMaterialInput{
		CourseID: courseID,
		Title:    "Ringkasan Bab 1",
		FilePath: "/uploads/x.pdf",
		MimeType: "application/pdf",
	})
	require.NoError(t, err)
	require.Equal(t, model.MaterialStatusPending, m.Status)
	return m
}

// ─── Submission ─────────────────────────────────────────────────────────────

func TestSubmitStartsPending(t *testing.T) {
	svc, _, _, cache, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)

	assert.Equal(t, uploaderID, m.OwnerID)
	assert.Equal(t, courseOwnerID, m.CourseOwnerID)

	// The course owner is notified about the pending submission.
	require.Len(t, cache.events, 1)
	assert.Equal(t, model.MaterialStatusPending, cache.events[0].Status)
}

func TestSubmitIntoOwnCourseAutoApproves(t *testing.T) {
	svc, _, _, cache, courseID := newTestService(t)

	owner := testActor(courseOwnerID, model.CapabilityMaterialsUpload)
	m, err := svc.Submit(context.Background(), owner, SubmitMaterialInput{
		CourseID: courseID,
		Title:    "Silabus",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MaterialStatusApproved, m.Status)
	assert.Contains(t, cache.invalidated, courseID.String())
}

func TestSubmitWithoutCapabilityForbidden(t *testing.T) {
	svc, _, _, _, courseID := newTestService(t)

	nobody := testActor(uploaderID) // zero capabilities beyond universal read
	_, err := svc.Submit(context.Background(), nobody, SubmitMaterialInput{CourseID: courseID})
	assert.True(t, authz.IsForbidden(err))

	_, err = svc.Submit(context.Background(), nil, SubmitMaterialInput{CourseID: courseID})
	assert.True(t, authz.IsForbidden(err))
}

func TestSubmitUnknownCourse(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	uploader := testActor(uploaderID, model.CapabilityMaterialsUpload)
	_, err := svc.Submit(context.Background(), uploader, SubmitMaterialInput{CourseID: uuid.New()})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

// ─── Moderation transitions ─────────────────────────────────────────────────

func TestApproveByCourseOwner(t *testing.T) {
	svc, materials, _, cache, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)

	owner := testActor(courseOwnerID, model.CapabilityMaterialsModerate)
	decided, err := svc.Approve(context.Background(), owner, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MaterialStatusApproved, decided.Status)

	stored, _ := materials.GetByID(context.Background(), m.ID)
	assert.Equal(t, model.MaterialStatusApproved, stored.Status)
	assert.Contains(t, cache.invalidated, courseID.String())

	// A second decision on the same material is an invalid transition, not a
	// silent success and not a permission error.
	_, err = svc.Approve(context.Background(), owner, m.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = svc.Reject(context.Background(), owner, m.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestRejectByCourseOwner(t *testing.T) {
	svc, materials, _, _, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)

	owner := testActor(courseOwnerID, model.CapabilityMaterialsModerate)
	decided, err := svc.Reject(context.Background(), owner, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MaterialStatusRejected, decided.Status)

	stored, _ := materials.GetByID(context.Background(), m.ID)
	assert.Equal(t, model.MaterialStatusRejected, stored.Status)
}

func TestApproveDeniedForNonCourseOwner(t *testing.T) {
	svc, materials, _, _, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)

	// Holds the moderate capability but owns a different course.
	other := testActor(otherTeacherID, model.CapabilityMaterialsModerate)
	_, err := svc.Approve(context.Background(), other, m.ID)
	assert.True(t, authz.IsForbidden(err))

	// The uploader cannot approve their own submission either.
	uploader := testActor(uploaderID, model.CapabilityMaterialsUpload)
	_, err = svc.Approve(context.Background(), uploader, m.ID)
	assert.True(t, authz.IsForbidden(err))

	// Status untouched by denied attempts.
	stored, _ := materials.GetByID(context.Background(), m.ID)
	assert.Equal(t, model.MaterialStatusPending, stored.Status)
}

func TestApproveByAdministratorOverride(t *testing.T) {
	svc, _, _, _, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)

	admin := testActor(adminID, model.CapabilityMaterialsModerateAny)
	decided, err := svc.Approve(context.Background(), admin, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MaterialStatusApproved, decided.Status)
}

func TestApproveLosesCompareAndSetRace(t *testing.T) {
	svc, materials, _, _, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)

	// Another moderator decides between our read and our write.
	materials.statusOverride = func() {
		materials.materials[m.ID].Status = model.MaterialStatusRejected
	}

	owner := testActor(courseOwnerID, model.CapabilityMaterialsModerate)
	_, err := svc.Approve(context.Background(), owner, m.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	stored, _ := materials.GetByID(context.Background(), m.ID)
	assert.Equal(t, model.MaterialStatusRejected, stored.Status)
}

func TestApproveUnknownMaterial(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	owner := testActor(courseOwnerID, model.CapabilityMaterialsModerate)
	_, err := svc.Approve(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

// ─── Visibility ─────────────────────────────────────────────────────────────

func TestGetPendingMaterialVisibility(t *testing.T) {
	svc, _, _, _, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)
	ctx := context.Background()

	// Uploader and course owner see the pending material.
	uploader := testActor(uploaderID, model.CapabilityMaterialsUpload)
	_, err := svc.Get(ctx, uploader, m.ID)
	require.NoError(t, err)

	owner := testActor(courseOwnerID, model.CapabilityMaterialsModerate)
	_, err = svc.Get(ctx, owner, m.ID)
	require.NoError(t, err)

	// Anonymous and unrelated users do not.
	_, err = svc.Get(ctx, nil, m.ID)
	assert.ErrorIs(t, err, ErrMaterialNotVisible)
	_, err = svc.Get(ctx, testActor(otherTeacherID), m.ID)
	assert.ErrorIs(t, err, ErrMaterialNotVisible)
}

func TestListPendingRequiresModerationRights(t *testing.T) {
	svc, _, _, _, courseID := newTestService(t)
	submitPending(t, svc, courseID)
	ctx := context.Background()

	owner := testActor(courseOwnerID, model.CapabilityMaterialsModerate)
	queue, err := svc.ListPending(ctx, owner, courseID)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	other := testActor(otherTeacherID, model.CapabilityMaterialsModerate)
	_, err = svc.ListPending(ctx, other, courseID)
	assert.True(t, authz.IsForbidden(err))
}

// ─── Own-or-any edits ───────────────────────────────────────────────────────

func TestUpdateMetadataOwnOrAny(t *testing.T) {
	svc, _, _, _, courseID := newTestService(t)
	m := submitPending(t, svc, courseID)
	ctx := context.Background()

	uploader := testActor(uploaderID, model.CapabilityMaterialsUpdateOwn)
	updated, err := svc.UpdateMetadata(ctx, uploader, m.ID, "Revisi", "desc")
	require.NoError(t, err)
	assert.Equal(t, "Revisi", updated.Title)

	// Same capability, different owner: denied.
	other := testActor(otherTeacherID, model.CapabilityMaterialsUpdateOwn)
	_, err = svc.UpdateMetadata(ctx, other, m.ID, "X", "Y")
	assert.True(t, authz.IsForbidden(err))

	// The any-variant bypasses ownership.
	admin := testActor(adminID, model.CapabilityMaterialsUpdateAny)
	_, err = svc.UpdateMetadata(ctx, admin, m.ID, "Dirapikan", "desc")
	require.NoError(t, err)
}

func TestDeleteOwnOrAny(t *testing.T) {
	svc, materials, _, _, courseID := newTestService(t)
	ctx := context.Background()

	m1 := submitPending(t, svc, courseID)
	other := testActor(otherTeacherID, model.CapabilityMaterialsDeleteOwn)
	err := svc.Delete(ctx, other, m1.ID)
	assert.True(t, authz.IsForbidden(err))

	uploader := testActor(uploaderID, model.CapabilityMaterialsDeleteOwn)
	require.NoError(t, svc.Delete(ctx, uploader, m1.ID))
	_, err = materials.GetByID(ctx, m1.ID)
	assert.Error(t, err)

	m2 := submitPending(t, svc, courseID)
	admin := testActor(adminID, model.CapabilityMaterialsDeleteAny)
	require.NoError(t, svc.Delete(ctx, admin, m2.ID))
}

// ─── Downloads ──────────────────────────────────────────────────────────────

func TestRegisterDownloadOnlyForApproved(t *testing.T) {
	svc, _, _, cache, courseID := newTestService(t)
	ctx := context.Background()

	m := submitPending(t, svc, courseID)
	owner := testActor(courseOwnerID, model.CapabilityMaterialsModerate)

	// Pending material cannot be downloaded, even by its uploader.
	uploader := testActor(uploaderID, model.CapabilityMaterialsUpload)
	_, err := svc.RegisterDownload(ctx, uploader, m.ID)
	assert.ErrorIs(t, err, ErrMaterialNotVisible)

	_, err = svc.Approve(ctx, owner, m.ID)
	require.NoError(t, err)

	// Approved material downloads anonymously; the hit is queued.
	_, err = svc.RegisterDownload(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{m.ID.String()}, cache.downloads)
}
