package service

import (
	"context"
	"errors"
	"sync"

	"caregame/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

var errStoreDown = errors.New("store down")

type fakeLocalCache struct {
	mu        sync.Mutex
	records   []models.SessionRecord
	loadErr   error
	appendErr error
}

func (f *fakeLocalCache) LoadAll() ([]models.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]models.SessionRecord(nil), f.records...), nil
}

func (f *fakeLocalCache) AppendOne(record models.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, record)
	return nil
}

type fakeRemoteStore struct {
	mu        sync.Mutex
	records   map[string][]models.SessionRecord
	revision  int64
	loadErr   error
	appendErr error
}

func newFakeRemoteStore() *fakeRemoteStore {
	return &fakeRemoteStore{records: make(map[string][]models.SessionRecord)}
}

func (f *fakeRemoteStore) LoadAll(ctx context.Context, childID string) ([]models.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]models.SessionRecord(nil), f.records[childID]...), nil
}

func (f *fakeRemoteStore) AppendOne(ctx context.Context, childID string, record models.SessionRecord) (models.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return record, f.appendErr
	}
	f.revision++
	record.Revision = f.revision
	f.records[childID] = append(f.records[childID], record)
	return record, nil
}

func (f *fakeRemoteStore) ListChildIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRemoteStore) Import(ctx context.Context, rec models.SessionRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	child := models.NormalizeChildID(rec.ChildID)
	for _, existing := range f.records[child] {
		if existing.ID == rec.ID {
			return false, nil
		}
	}
	f.revision++
	rec.Revision = f.revision
	f.records[child] = append(f.records[child], rec)
	return true, nil
}

type fakeProfileStore struct {
	profiles map[string]models.ChildProfile
	err      error
}

func (f *fakeProfileStore) Get(ctx context.Context, name string) (*models.ChildProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[models.NormalizeChildID(name)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProfileStore) List(ctx context.Context) ([]models.ChildProfile, error) {
	out := []models.ChildProfile{}
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfileStore) Import(ctx context.Context, child models.ChildProfile) (bool, error) {
	name := models.NormalizeChildID(child.Name)
	if _, ok := f.profiles[name]; ok {
		return false, nil
	}
	child.Name = name
	f.profiles[name] = child
	return true, nil
}

type fakeCaregiverStore struct {
	byID   map[int64]*models.Caregiver
	nextID int64
}

func newFakeCaregiverStore() *fakeCaregiverStore {
	return &fakeCaregiverStore{byID: make(map[int64]*models.Caregiver)}
}

func (f *fakeCaregiverStore) Create(ctx context.Context, email, passwordHash, name string) (*models.Caregiver, error) {
	f.nextID++
	c := &models.Caregiver{ID: f.nextID, Email: email, PasswordHash: passwordHash, Name: name}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCaregiverStore) GetByEmail(ctx context.Context, email string) (*models.Caregiver, error) {
	for _, c := range f.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCaregiverStore) GetByID(ctx context.Context, id int64) (*models.Caregiver, error) {
	return f.byID[id], nil
}

type fakeNotifier struct {
	published []string
}

func (f *fakeNotifier) Publish(childID string) {
	f.published = append(f.published, childID)
}

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{}, nil
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
