package repository

import (
	"context"
	"testing"
	"time"

	"github.com/d60-Lab/mdblog/internal/model"
)

func BenchmarkPostCreate(b *testing.B) {
	repo := NewPostRepository(setupPostTestDB(b))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = repo.Create(ctx, fakePost(i%4 != 0, baseTime.Add(time.Duration(i)*time.Second)))
	}
}

func BenchmarkListAndGetPublished(b *testing.B) {
	repo := NewPostRepository(setupPostTestDB(b))
	ctx := context.Background()

	// 预置 N 篇文章，其中四分之一为草稿
	const N = 2000
	ids := make([]model.PostID, 0, N)
	for i := 0; i < N; i++ {
		id, err := repo.Create(ctx, fakePost(i%4 != 0, baseTime.Add(time.Duration(i)*time.Second)))
		if err != nil {
			b.Fatalf("seed posts: %v", err)
		}
		ids = append(ids, id)
	}

	b.ResetTimer()
	b.Run("ListPublished", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.ListPublished(ctx)
		}
	})

	b.Run("GetPublished", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.GetPublished(ctx, ids[i%N])
		}
	})
}
