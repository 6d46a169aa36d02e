package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/d60-Lab/mdblog/internal/model"
)

// objectID 以十六进制文本呈现的 MongoDB ObjectID
type objectID primitive.ObjectID

func (id objectID) String() string { return primitive.ObjectID(id).Hex() }

type postDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Content     string             `bson:"content"`
	Excerpt     string             `bson:"excerpt"`
	Author      model.Author       `bson:"author"`
	Tags        []string           `bson:"tags"`
	ReadingTime int                `bson:"readingTime"`
	Published   bool               `bson:"published"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *postDocument) toModel() *model.Post {
	return normalize(&model.Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Content:     d.Content,
		Excerpt:     d.Excerpt,
		Author:      d.Author,
		Tags:        d.Tags,
		ReadingTime: d.ReadingTime,
		Published:   d.Published,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	})
}

type mongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(coll *mongo.Collection) PostRepository {
	return &mongoPostRepository{coll: coll}
}

// EnsureMongoIndexes 创建 (published, createdAt desc) 复合索引
func EnsureMongoIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "published", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}
	return nil
}

func (r *mongoPostRepository) ParseID(raw string) (model.PostID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return objectID(oid), nil
}

func (r *mongoPostRepository) Create(ctx context.Context, post *model.Post) (model.PostID, error) {
	tags := []string(post.Tags)
	if tags == nil {
		tags = []string{}
	}
	doc := postDocument{
		Title:       post.Title,
		Content:     post.Content,
		Excerpt:     post.Excerpt,
		Author:      post.Author,
		Tags:        tags,
		ReadingTime: post.ReadingTime,
		Published:   post.Published,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert post: unexpected id type %T", res.InsertedID)
	}
	post.ID = oid.Hex()
	return objectID(oid), nil
}

func (r *mongoPostRepository) ListPublished(ctx context.Context) ([]*model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	res := make([]*model.Post, 0, len(docs))
	for i := range docs {
		res = append(res, docs[i].toModel())
	}
	return res, nil
}

func (r *mongoPostRepository) GetPublished(ctx context.Context, id model.PostID) (*model.Post, error) {
	oid, ok := id.(objectID)
	if !ok {
		parsed, err := r.ParseID(id.String())
		if err != nil {
			return nil, err
		}
		oid = parsed.(objectID)
	}
	var doc postDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": primitive.ObjectID(oid), "published": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return doc.toModel(), nil
}

func (r *mongoPostRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
