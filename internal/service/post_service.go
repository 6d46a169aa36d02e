package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/d60-Lab/mdblog/internal/model"
	"github.com/d60-Lab/mdblog/internal/repository"
	"github.com/d60-Lab/mdblog/internal/textutil"
	"github.com/d60-Lab/mdblog/internal/util"
	"github.com/d60-Lab/mdblog/pkg/logger"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrStorage    = errors.New("storage failure")
	ErrInvalidID  = repository.ErrInvalidID
	ErrNotFound   = repository.ErrNotFound
)

// ValidationError 列出缺失或为空的必填字段（JSON 路径）
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthorInput 作者信息
type AuthorInput struct {
	Name   string `json:"name" validate:"notblank"`
	Avatar string `json:"avatar,omitempty"`
}

// CreatePostInput 创建文章请求；Published 必须显式给出
type CreatePostInput struct {
	Title     string      `json:"title" validate:"notblank"`
	Content   string      `json:"content" validate:"notblank"`
	Author    AuthorInput `json:"author"`
	Tags      []string    `json:"tags"`
	Published *bool       `json:"published" validate:"required"`
}

// PostService 文章服务
type PostService interface {
	ListPublished(ctx context.Context) ([]*model.Post, error)
	GetPublished(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, in CreatePostInput) (string, error)
}

type postService struct {
	repo     repository.PostRepository
	clock    util.Clock
	validate *validator.Validate
}

func NewPostService(repo repository.PostRepository, clock util.Clock) PostService {
	if clock == nil {
		clock = util.NewRealClock()
	}
	return &postService{repo: repo, clock: clock, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *postService) ListPublished(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, storageError("list posts", err)
	}
	return posts, nil
}

func (s *postService) GetPublished(ctx context.Context, rawID string) (*model.Post, error) {
	id, err := s.repo.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	post, err := s.repo.GetPublished(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageError("get post", err)
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, in CreatePostInput) (string, error) {
	if err := s.validateInput(in); err != nil {
		return "", err
	}

	now := s.clock.NowUtc()
	post := &model.Post{
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		Excerpt: textutil.Excerpt(in.Content, textutil.DefaultExcerptLength),
		Author: model.Author{
			Name:   strings.TrimSpace(in.Author.Name),
			Avatar: strings.TrimSpace(in.Author.Avatar),
		},
		Tags:        normalizeTags(in.Tags),
		ReadingTime: textutil.ReadingTime(in.Content),
		Published:   *in.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.repo.Create(ctx, post)
	if err != nil {
		return "", storageError("create post", err)
	}
	logger.Info("post created",
		zap.String("post_id", id.String()),
		zap.Bool("published", post.Published),
		zap.Int("reading_time", post.ReadingTime))
	return id.String(), nil
}

func (s *postService) validateInput(in CreatePostInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields = append(fields, ns)
	}
	return &ValidationError{Fields: fields}
}

// normalizeTags 去除首尾空白并丢弃空标签；保留顺序，不去重
func normalizeTags(tags []string) model.StringList {
	out := make(model.StringList, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func storageError(op string, err error) error {
	logger.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
