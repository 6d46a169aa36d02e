package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/mdblog/internal/service"
	"github.com/d60-Lab/mdblog/pkg/response"
)

type createPostResponse struct {
	Message string `json:"message"`
	PostID  string `json:"post_id"`
}

// ListPosts 已发布文章列表
// @Summary 查询已发布文章（按创建时间倒序）
// @Tags 文章
// @Produce json
// @Success 200 {array} model.Post
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPublished(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch posts")
		return
	}
	response.Success(c, posts)
}

// GetPost 文章详情
// @Summary 查询单篇已发布文章
// @Description 不存在与未发布的文章同样返回 404
// @Tags 文章
// @Produce json
// @Param id path string true "文章ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch post")
		return
	}
	response.Success(c, post)
}

// CreatePost 创建文章
// @Summary 创建文章（自动生成摘要与阅读时长）
// @Tags 文章
// @Accept json
// @Produce json
// @Param request body service.CreatePostInput true "文章内容"
// @Success 201 {object} createPostResponse
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req service.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	id, err := h.postService.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to create post")
		return
	}
	response.Created(c, createPostResponse{Message: "Post created successfully", PostID: id})
}
