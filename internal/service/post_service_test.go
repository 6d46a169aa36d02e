package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/mdblog/internal/model"
	"github.com/d60-Lab/mdblog/internal/repository"
	"github.com/d60-Lab/mdblog/internal/util"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (PostService, *gorm.DB, *util.StubClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Post{}))

	clock := util.NewStubClock(t0)
	return NewPostService(repository.NewPostRepository(db), clock), db, clock
}

func boolPtr(b bool) *bool { return &b }

func validInput(published bool) CreatePostInput {
	return CreatePostInput{
		Title:     gofakeit.Adjective() + " " + gofakeit.Noun(),
		Content:   "# Heading\n\n" + gofakeit.Paragraph(2, 4, 10, "\n\n"),
		Author:    AuthorInput{Name: gofakeit.Name(), Avatar: gofakeit.URL()},
		Tags:      []string{"go", "markdown"},
		Published: boolPtr(published),
	}
}

func countPosts(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&model.Post{}).Count(&n).Error)
	return n
}

func TestCreate_DerivesFields(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	content := "# Hello\n\n**Go** is " + strings.Repeat("fun ", 250)

	id, err := svc.Create(ctx, CreatePostInput{
		Title:     "  Hello Go  ",
		Content:   content,
		Author:    AuthorInput{Name: " Ada "},
		Tags:      []string{" go ", "", "web", "go"},
		Published: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	post, err := svc.GetPublished(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, post.ID)
	assert.Equal(t, "Hello Go", post.Title)
	assert.Equal(t, content, post.Content)
	assert.Equal(t, "Ada", post.Author.Name)
	assert.Equal(t, model.StringList{"go", "web", "go"}, post.Tags)
	assert.Equal(t, 2, post.ReadingTime)
	assert.True(t, strings.HasPrefix(post.Excerpt, "Hello Go is fun"))
	assert.True(t, strings.HasSuffix(post.Excerpt, "..."))
	assert.True(t, post.CreatedAt.Equal(t0))
	assert.True(t, post.UpdatedAt.Equal(post.CreatedAt))
}

func TestCreate_DefaultsTagsToEmpty(t *testing.T) {
	svc, _, _ := setupService(t)
	in := validInput(true)
	in.Tags = nil

	id, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	post, err := svc.GetPublished(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, post.Tags)
	assert.Empty(t, post.Tags)
}

func TestCreate_ValidationPersistsNothing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreatePostInput)
		field  string
	}{
		{"empty title", func(in *CreatePostInput) { in.Title = "" }, "title"},
		{"blank title", func(in *CreatePostInput) { in.Title = "   " }, "title"},
		{"empty content", func(in *CreatePostInput) { in.Content = "" }, "content"},
		{"blank content", func(in *CreatePostInput) { in.Content = "\n\t" }, "content"},
		{"empty author", func(in *CreatePostInput) { in.Author.Name = "" }, "author.name"},
		{"missing published", func(in *CreatePostInput) { in.Published = nil }, "published"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, db, _ := setupService(t)
			in := validInput(true)
			tc.mutate(&in)

			id, err := svc.Create(context.Background(), in)
			assert.Empty(t, id)
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)
			assert.Equal(t, int64(0), countPosts(t, db))
		})
	}
}

func TestCreate_ReportsAllMissingFields(t *testing.T) {
	svc, _, _ := setupService(t)
	_, err := svc.Create(context.Background(), CreatePostInput{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"title", "content", "author.name", "published"}, verr.Fields)
	assert.Contains(t, err.Error(), "missing required fields")
}

func TestUnpublishedIsInvisible(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, validInput(false))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, int64(1), countPosts(t, db))

	posts, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = svc.GetPublished(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingAndUnpublishedAreIndistinguishable(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	draftID, err := svc.Create(ctx, validInput(false))
	require.NoError(t, err)

	_, errDraft := svc.GetPublished(ctx, draftID)
	_, errMissing := svc.GetPublished(ctx, "a3bb189e-8bf9-3888-9912-ace4e6543002")
	require.ErrorIs(t, errDraft, ErrNotFound)
	require.ErrorIs(t, errMissing, ErrNotFound)
	assert.Equal(t, errDraft.Error(), errMissing.Error())
}

func TestGetPublished_InvalidID(t *testing.T) {
	svc, _, _ := setupService(t)
	_, err := svc.GetPublished(context.Background(), "not-a-valid-id")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestListPublished_NewestFirst(t *testing.T) {
	svc, _, clock := setupService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := svc.Create(ctx, validInput(true))
		require.NoError(t, err)
		ids = append(ids, id)
		clock.Advance(time.Minute)
	}

	posts, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, ids[2], posts[0].ID)
	assert.Equal(t, ids[1], posts[1].ID)
	assert.Equal(t, ids[0], posts[2].ID)
}

type brokenRepo struct{ repository.PostRepository }

var errDown = errors.New("connection refused")

func (brokenRepo) Create(context.Context, *model.Post) (model.PostID, error) { return nil, errDown }

func (brokenRepo) ListPublished(context.Context) ([]*model.Post, error) { return nil, errDown }

func (brokenRepo) GetPublished(context.Context, model.PostID) (*model.Post, error) {
	return nil, errDown
}

func TestStorageErrors(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	svc := NewPostService(brokenRepo{repository.NewPostRepository(db)}, nil)
	ctx := context.Background()

	_, err = svc.ListPublished(ctx)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errDown)

	_, err = svc.GetPublished(ctx, "a3bb189e-8bf9-3888-9912-ace4e6543002")
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, validInput(true))
	assert.ErrorIs(t, err, ErrStorage)
}
