package importer

import (
	"context"
	"testing"

	"keycabinet/db"
	"keycabinet/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 内存版 store，行为对齐 db.Repo 的约定

type fakePersonStore struct {
	byExternalID map[string]*models.Person
}

func newFakePersonStore() *fakePersonStore {
	return &fakePersonStore{byExternalID: map[string]*models.Person{}}
}

func (f *fakePersonStore) FindPersonByExternalID(_ context.Context, externalID string) (*models.Person, error) {
	p, ok := f.byExternalID[externalID]
	if !ok {
		return nil, db.ErrPersonNotFound
	}
	return p, nil
}

func (f *fakePersonStore) RegisterPerson(_ context.Context, in db.RegisterPersonInput) (*models.Person, error) {
	if !models.ValidPIN(in.RawPIN) {
		return nil, db.ErrPINFormat
	}
	if _, ok := f.byExternalID[in.ExternalID]; ok {
		return nil, db.ErrDuplicateExternalID
	}
	p := &models.Person{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Company:    in.Company,
		ExternalID: in.ExternalID,
		Active:     true,
	}
	f.byExternalID[in.ExternalID] = p
	return p, nil
}

type fakeKeyStore struct {
	keys      map[string]bool // description -> exists
	locations map[string]*models.Location
}

func newFakeKeyStore() *fakeKeyStore {
	return &fakeKeyStore{keys: map[string]bool{}, locations: map[string]*models.Location{}}
}

func (f *fakeKeyStore) KeyExistsByDescription(_ context.Context, description string) (bool, error) {
	return f.keys[description], nil
}

func (f *fakeKeyStore) FindOrCreateLocation(_ context.Context, name string) (*models.Location, error) {
	if l, ok := f.locations[name]; ok {
		return l, nil
	}
	l := &models.Location{ID: uuid.NewString(), Name: name, Active: true}
	f.locations[name] = l
	return l, nil
}

func (f *fakeKeyStore) CreateKey(_ context.Context, description, _ string) (*models.Key, error) {
	if f.keys[description] {
		return nil, db.ErrDuplicateName
	}
	f.keys[description] = true
	return &models.Key{ID: uuid.NewString(), Description: description}, nil
}

func TestImportPersons(t *testing.T) {
	ctx := context.Background()
	store := newFakePersonStore()
	_, err := store.RegisterPerson(ctx, db.RegisterPersonInput{
		Name: "Maria Silva", ExternalID: "12345", RawPIN: "1234",
	})
	require.NoError(t, err)

	rows := []PersonRow{
		{Name: "João Souza", Company: "ACME", ExternalID: "67890", PIN: "4321"}, // 新建
		{Name: "Maria Silva", ExternalID: "12345", PIN: "1234"},                 // 同号同名,跳过
		{Name: "Maria S.", ExternalID: "12345", PIN: "1234"},                    // 同号不同名,冲突
		{Name: "Pedro Lima", ExternalID: "11111", PIN: "12ab"},                  // PIN 不合规,冲突
		{Name: "", ExternalID: "22222", PIN: "1234"},                            // 缺名字,忽略
	}

	res, err := ImportPersons(ctx, store, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.Conflicts, 2)
	assert.Contains(t, res.Conflicts[0], "12345")
	assert.Contains(t, res.Conflicts[0], "nothing changed")

	// 冲突行不能改库里的名字
	p, err := store.FindPersonByExternalID(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", p.Name)
}

func TestImportPersonsEmptyResultShape(t *testing.T) {
	res, err := ImportPersons(context.Background(), newFakePersonStore(), nil)
	require.NoError(t, err)
	// Conflicts 要序列化成 [] 而不是 null
	assert.NotNil(t, res.Conflicts)
	assert.Zero(t, res.Created)
	assert.Zero(t, res.Skipped)
}

func TestImportKeys(t *testing.T) {
	ctx := context.Background()
	store := newFakeKeyStore()
	_, err := store.CreateKey(ctx, "Server room", "")
	require.NoError(t, err)

	rows := []KeyRow{
		{Description: "Lab 2", LocationName: "Building A"},
		{Description: "Lab 3", LocationName: "Building A"}, // 同一个地点,复用
		{Description: "Server room", LocationName: "Building B"}, // 已存在,跳过
		{Description: "", LocationName: "Building C"},            // 缺描述,忽略
	}

	res, err := ImportKeys(ctx, store, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Conflicts)
	assert.Len(t, store.locations, 1, "Building A should be reused")
}

func TestImportRowsAreTrimmed(t *testing.T) {
	ctx := context.Background()
	store := newFakePersonStore()
	rows := []PersonRow{
		{Name: "  Ana Costa  ", ExternalID: " 33333 ", PIN: " 9999 "},
	}

	res, err := ImportPersons(ctx, store, rows)
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)

	p, err := store.FindPersonByExternalID(ctx, "33333")
	require.NoError(t, err)
	assert.Equal(t, "Ana Costa", p.Name)
}
