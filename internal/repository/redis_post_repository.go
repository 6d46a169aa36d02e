package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/mdblog/internal/model"
)

// redisPostRepository 以 JSON 文档保存文章，已发布文章的 ID 维护在按创建时间打分的有序集合中
type redisPostRepository struct {
	client *redis.Client
	prefix string
	newID  func() uuid.UUID
}

// errIDConflict 生成的 ID 已被占用，文档未写入
var errIDConflict = errors.New("post id already exists")

func NewRedisPostRepository(client *redis.Client, keyPrefix string) PostRepository {
	return &redisPostRepository{client: client, prefix: keyPrefix, newID: uuid.New}
}

func (r *redisPostRepository) postKey(id string) string { return r.prefix + "post:" + id }

func (r *redisPostRepository) publishedKey() string { return r.prefix + "posts:published" }

func (r *redisPostRepository) ParseID(raw string) (model.PostID, error) {
	return parseUUID(raw)
}

func (r *redisPostRepository) Create(ctx context.Context, post *model.Post) (model.PostID, error) {
	id := r.newID()
	post.ID = id.String()
	payload, err := json.Marshal(post)
	if err != nil {
		post.ID = ""
		return nil, fmt.Errorf("encode post: %w", err)
	}

	key := r.postKey(post.ID)
	// WATCH + MULTI/EXEC：文档与索引要么都写入，要么都不写；已存在的 ID 不会被索引覆盖
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return errIDConflict
		}
		var set *redis.BoolCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			set = pipe.SetNX(ctx, key, payload, 0)
			if post.Published {
				pipe.ZAdd(ctx, r.publishedKey(), redis.Z{
					Score:  float64(post.CreatedAt.UnixMicro()),
					Member: post.ID,
				})
			}
			return nil
		})
		if err != nil {
			return err
		}
		if !set.Val() {
			return errIDConflict
		}
		return nil
	}, key)
	if err != nil {
		post.ID = ""
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (r *redisPostRepository) ListPublished(ctx context.Context) ([]*model.Post, error) {
	ids, err := r.client.ZRevRange(ctx, r.publishedKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	res := make([]*model.Post, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.postKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var post model.Post
		if err := json.Unmarshal([]byte(str), &post); err != nil {
			return nil, fmt.Errorf("decode post %s: %w", ids[i], err)
		}
		if !post.Published {
			continue
		}
		res = append(res, normalize(&post))
	}
	return res, nil
}

func (r *redisPostRepository) GetPublished(ctx context.Context, id model.PostID) (*model.Post, error) {
	data, err := r.client.Get(ctx, r.postKey(id.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}
	if !post.Published {
		return nil, ErrNotFound
	}
	return normalize(&post), nil
}

func (r *redisPostRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func normalize(post *model.Post) *model.Post {
	if post.Tags == nil {
		post.Tags = model.StringList{}
	}
	return post
}
