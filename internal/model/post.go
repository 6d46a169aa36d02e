package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PostID 存储层分配的不透明文章标识，可与文本互转
type PostID interface {
	String() string
}

// Author 作者信息
type Author struct {
	Name   string `json:"name" gorm:"type:varchar(128);not null" bson:"name"`
	Avatar string `json:"avatar,omitempty" gorm:"type:varchar(512)" bson:"avatar,omitempty"`
}

// Post 博客文章；Excerpt 与 ReadingTime 在创建时由 Content 派生
type Post struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"-"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null" bson:"title"`
	Content     string     `json:"content" gorm:"type:text;not null" bson:"content"`
	Excerpt     string     `json:"excerpt" gorm:"type:text" bson:"excerpt"`
	Author      Author     `json:"author" gorm:"embedded;embeddedPrefix:author_" bson:"author"`
	Tags        StringList `json:"tags" gorm:"type:text" bson:"tags"`
	ReadingTime int        `json:"reading_time" gorm:"not null" bson:"readingTime"`
	Published   bool       `json:"published" gorm:"index:idx_post_published_created,priority:1;not null" bson:"published"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_post_published_created,priority:2" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// StringList 有序字符串列表，SQL 中以 JSON 文本存储
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan StringList: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan StringList: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}
