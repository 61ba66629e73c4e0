package memorial

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/wieldyrabbit783/cherished-memories/internal/db"
)

func setupRepository(t *testing.T) *GormRepository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "memorials.db")

	gormDB, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: path})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}

	logger := silentLogger()

	if err := Migrate(context.Background(), gormDB, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	repo, err := NewRepository(gormDB, logger)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(gormDB); err != nil {
			t.Fatalf("closing database failed: %v", err)
		}
	})

	return repo
}

func sampleMemorial(ownerID, slug string) *Memorial {
	return &Memorial{
		OwnerID:       ownerID,
		FullName:      "Jane Doe",
		BirthDate:     "1940-03-12",
		DeathDate:     "2023-11-02",
		Location:      "Portland, Oregon",
		Biography:     "A life well lived.",
		CoverImageURL: "https://cdn.test/memorial-images/" + ownerID + "/" + slug + "/cover-1.jpg",
		CoverImagePath: ownerID + "/" + slug + "/cover-1.jpg",
		Slug:          slug,
	}
}

func TestNewRepositoryRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestInsertAssignsID(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	m := sampleMemorial("owner-1", "jane-doe")
	if err := repo.Insert(ctx, m); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if m.ID == "" {
		t.Fatalf("expected id assigned on insert")
	}
}

func TestInsertReportsSlugConflict(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, sampleMemorial("owner-1", "jane-doe")); err != nil {
		t.Fatalf("first Insert returned error: %v", err)
	}

	err := repo.Insert(ctx, sampleMemorial("owner-2", "jane-doe"))
	if !eris.Is(err, errSlugTaken) {
		t.Fatalf("expected errSlugTaken for duplicate slug, got %v", err)
	}
}

func TestGetOwnedScopesToOwner(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	m := sampleMemorial("owner-1", "jane-doe")
	if err := repo.Insert(ctx, m); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	owned, err := repo.GetOwned(ctx, "owner-1", m.ID)
	if err != nil {
		t.Fatalf("GetOwned returned error: %v", err)
	}
	if owned == nil {
		t.Fatalf("expected owned memorial to be found")
	}

	foreign, err := repo.GetOwned(ctx, "owner-2", m.ID)
	if err != nil {
		t.Fatalf("GetOwned returned error: %v", err)
	}
	if foreign != nil {
		t.Fatalf("expected nil for foreign owner, got %+v", foreign)
	}
}

func TestGetBySlugReturnsNilForMissing(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	m, err := repo.GetBySlug(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetBySlug returned error: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil for missing slug, got %+v", m)
	}
}

func TestListSlugsByPrefix(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	for _, slug := range []string{"jane-doe", "jane-doe-1", "janet-smith"} {
		if err := repo.Insert(ctx, sampleMemorial("owner-1", slug)); err != nil {
			t.Fatalf("Insert returned error: %v", err)
		}
	}

	slugs, err := repo.ListSlugsByPrefix(ctx, "jane-doe")
	if err != nil {
		t.Fatalf("ListSlugsByPrefix returned error: %v", err)
	}

	if len(slugs) != 2 {
		t.Fatalf("expected 2 matching slugs, got %v", slugs)
	}
}

func TestListByOwnerOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	first := sampleMemorial("owner-1", "first-person")
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	second := sampleMemorial("owner-1", "second-person")
	second.CreatedAt = first.CreatedAt.Add(1)
	if err := repo.Insert(ctx, second); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if err := repo.Insert(ctx, sampleMemorial("owner-2", "other-person")); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	memorials, err := repo.ListByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}

	if len(memorials) != 2 {
		t.Fatalf("expected 2 memorials for owner-1, got %d", len(memorials))
	}

	if memorials[0].Slug != "second-person" {
		t.Fatalf("expected newest memorial first, got %q", memorials[0].Slug)
	}
}

func TestPhotoLifecycle(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	m := sampleMemorial("owner-1", "jane-doe")
	if err := repo.Insert(ctx, m); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	photo := &Photo{
		MemorialID: m.ID,
		PhotoURL:   "https://cdn.test/memorial-images/owner-1/jane-doe/photo-1-x.jpg",
		PhotoPath:  "owner-1/jane-doe/photo-1-x.jpg",
	}
	if err := repo.InsertPhoto(ctx, photo); err != nil {
		t.Fatalf("InsertPhoto returned error: %v", err)
	}

	photos, err := repo.ListPhotos(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListPhotos returned error: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(photos))
	}

	fetched, err := repo.GetPhoto(ctx, m.ID, photo.ID)
	if err != nil {
		t.Fatalf("GetPhoto returned error: %v", err)
	}
	if fetched == nil {
		t.Fatalf("expected photo to be found")
	}

	foreign, err := repo.GetPhoto(ctx, "other-memorial", photo.ID)
	if err != nil {
		t.Fatalf("GetPhoto returned error: %v", err)
	}
	if foreign != nil {
		t.Fatalf("expected nil for wrong memorial scope")
	}

	if err := repo.DeletePhoto(ctx, photo.ID); err != nil {
		t.Fatalf("DeletePhoto returned error: %v", err)
	}

	photos, err = repo.ListPhotos(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListPhotos returned error: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected photo deleted, got %d", len(photos))
	}
}

func TestDeletePhotosByMemorial(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	m := sampleMemorial("owner-1", "jane-doe")
	if err := repo.Insert(ctx, m); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		photo := &Photo{MemorialID: m.ID, PhotoURL: "https://cdn.test/p.jpg"}
		if err := repo.InsertPhoto(ctx, photo); err != nil {
			t.Fatalf("InsertPhoto returned error: %v", err)
		}
	}

	if err := repo.DeletePhotosByMemorial(ctx, m.ID); err != nil {
		t.Fatalf("DeletePhotosByMemorial returned error: %v", err)
	}

	photos, err := repo.ListPhotos(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListPhotos returned error: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected all photos deleted, got %d", len(photos))
	}

	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	gone, err := repo.GetOwned(ctx, "owner-1", m.ID)
	if err != nil {
		t.Fatalf("GetOwned returned error: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected memorial deleted")
	}
}
