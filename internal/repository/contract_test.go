package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/mdblog/internal/model"
)

var baseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func fakePost(published bool, createdAt time.Time) *model.Post {
	return &model.Post{
		Title:       gofakeit.Adjective() + " " + gofakeit.Noun(),
		Content:     gofakeit.Paragraph(1, 4, 10, " "),
		Excerpt:     "excerpt",
		Author:      model.Author{Name: gofakeit.Name(), Avatar: gofakeit.URL()},
		Tags:        model.StringList{"go", gofakeit.Word()},
		ReadingTime: 1,
		Published:   published,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// runPostRepositoryContract 所有后端共享的行为约束
func runPostRepositoryContract(t *testing.T, newRepo func(t *testing.T) PostRepository) {
	t.Run("CreateAssignsID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		post := fakePost(true, baseTime)

		id, err := repo.Create(ctx, post)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.NotEmpty(t, id.String())
		assert.Equal(t, id.String(), post.ID)

		parsed, err := repo.ParseID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id.String(), parsed.String())

		got, err := repo.GetPublished(ctx, parsed)
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
		assert.Equal(t, post.Title, got.Title)
		assert.Equal(t, post.Content, got.Content)
		assert.Equal(t, post.Author, got.Author)
		assert.Equal(t, post.Tags, got.Tags)
		assert.WithinDuration(t, post.CreatedAt, got.CreatedAt, time.Millisecond)
		assert.WithinDuration(t, post.UpdatedAt, got.UpdatedAt, time.Millisecond)
		assert.True(t, got.Published)
	})

	t.Run("IDsAreUnique", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seen := map[string]bool{}
		for i := 0; i < 10; i++ {
			id, err := repo.Create(ctx, fakePost(true, baseTime.Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
			assert.False(t, seen[id.String()])
			seen[id.String()] = true
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		repo := newRepo(t)
		posts, err := repo.ListPublished(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("ListPublishedNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		var ids []string
		for i := 0; i < 3; i++ {
			p := fakePost(true, baseTime.Add(time.Duration(i)*time.Minute))
			_, err := repo.Create(ctx, p)
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}
		_, err := repo.Create(ctx, fakePost(false, baseTime.Add(time.Hour)))
		require.NoError(t, err)

		posts, err := repo.ListPublished(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	})

	t.Run("UnpublishedInvisible", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		draft := fakePost(false, baseTime)
		id, err := repo.Create(ctx, draft)
		require.NoError(t, err)

		_, err = repo.GetPublished(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)

		posts, err := repo.ListPublished(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seed := fakePost(true, baseTime)
		id, err := repo.Create(ctx, seed)
		require.NoError(t, err)

		other := newRepo(t)
		_, err = other.GetPublished(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ParseIDRejectsGarbage", func(t *testing.T) {
		repo := newRepo(t)
		for _, raw := range []string{"", "abc", "not-an-id", "12345"} {
			_, err := repo.ParseID(raw)
			assert.ErrorIs(t, err, ErrInvalidID, "raw=%q", raw)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}
