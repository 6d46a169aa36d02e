package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/mdblog/internal/model"
)

var (
	ErrInvalidID = errors.New("invalid post id")
	ErrNotFound  = errors.New("post not found")
)

// PostRepository 文章存储接口，可由任意文档存储实现
type PostRepository interface {
	// ParseID 把文本解析为后端标识；格式非法时返回 ErrInvalidID
	ParseID(raw string) (model.PostID, error)
	// Create 插入一篇文章，分配标识并回写到 post.ID
	Create(ctx context.Context, post *model.Post) (model.PostID, error)
	// ListPublished 按创建时间倒序返回所有已发布文章
	ListPublished(ctx context.Context) ([]*model.Post, error)
	// GetPublished 查询已发布文章；不存在或未发布均返回 ErrNotFound
	GetPublished(ctx context.Context, id model.PostID) (*model.Post, error)
	Ping(ctx context.Context) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository 基于 gorm（postgres / sqlite）的实现
func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) ParseID(raw string) (model.PostID, error) {
	return parseUUID(raw)
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) (model.PostID, error) {
	id := uuid.New()
	post.ID = id.String()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		post.ID = ""
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (r *postRepository) ListPublished(ctx context.Context) ([]*model.Post, error) {
	res := make([]*model.Post, 0)
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return res, nil
}

func (r *postRepository) GetPublished(ctx context.Context, id model.PostID) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND published = ?", id.String(), true).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return &post, nil
}

func (r *postRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func parseUUID(raw string) (model.PostID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}
