// Package web 服务端渲染的文章列表、详情与编辑页面
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/mdblog/internal/render"
	"github.com/d60-Lab/mdblog/internal/service"
	"github.com/d60-Lab/mdblog/internal/textutil"
	"github.com/d60-Lab/mdblog/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

const siteTitle = "Markdown Blog"

// Templates 解析内嵌模板，供 engine.SetHTMLTemplate 使用
func Templates() *template.Template {
	funcs := template.FuncMap{
		"formatDate":   textutil.FormatDate,
		"highlightCSS": render.HighlightCSS,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

// Pages 页面处理器
type Pages struct {
	posts    service.PostService
	renderer *render.Renderer
}

func NewPages(posts service.PostService, renderer *render.Renderer) *Pages {
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	return &Pages{posts: posts, renderer: renderer}
}

// editorForm 编辑器表单回填值
type editorForm struct {
	Title        string
	Content      string
	AuthorName   string
	AuthorAvatar string
	Tags         string
	Published    bool
}

// Index 首页文章列表
func (p *Pages) Index(c *gin.Context) {
	posts, err := p.posts.ListPublished(c.Request.Context())
	if err != nil {
		p.serverError(c, "Failed to fetch posts", err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title": siteTitle,
		"Posts": posts,
		"Saved": c.Query("saved") == "draft",
	})
}

// Show 文章详情，正文经 Markdown 渲染
func (p *Pages) Show(c *gin.Context) {
	post, err := p.posts.GetPublished(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, service.ErrInvalidID):
		p.errorPage(c, http.StatusBadRequest, "Invalid post ID")
		return
	case errors.Is(err, service.ErrNotFound):
		p.errorPage(c, http.StatusNotFound, "Post not found")
		return
	case err != nil:
		p.serverError(c, "Failed to fetch post", err)
		return
	}

	body, err := p.renderer.RenderHTML(post.Content)
	if err != nil {
		p.serverError(c, "Failed to render post", err)
		return
	}
	c.HTML(http.StatusOK, "post.html", gin.H{
		"Title": post.Title + " | " + siteTitle,
		"Post":  post,
		"Body":  body,
	})
}

// Editor 空白编辑表单
func (p *Pages) Editor(c *gin.Context) {
	p.editor(c, http.StatusOK, editorForm{Published: true}, "")
}

func readForm(c *gin.Context) editorForm {
	return editorForm{
		Title:        c.PostForm("title"),
		Content:      c.PostForm("content"),
		AuthorName:   c.PostForm("author_name"),
		AuthorAvatar: c.PostForm("author_avatar"),
		Tags:         c.PostForm("tags"),
		Published:    c.PostForm("published") != "",
	}
}

// Preview 渲染表单中的 Markdown 并回填表单，不写入任何数据
func (p *Pages) Preview(c *gin.Context) {
	form := readForm(c)
	body, err := p.renderer.RenderHTML(form.Content)
	if err != nil {
		p.serverError(c, "Failed to render preview", err)
		return
	}
	c.HTML(http.StatusOK, "editor.html", gin.H{
		"Title":       "Preview | " + siteTitle,
		"Form":        form,
		"Preview":     body,
		"PreviewTags": ParseTags(form.Tags),
	})
}

// Submit 处理编辑器提交；发布的文章跳转到详情页，草稿回到首页
func (p *Pages) Submit(c *gin.Context) {
	form := readForm(c)

	published := form.Published
	id, err := p.posts.Create(c.Request.Context(), service.CreatePostInput{
		Title:   form.Title,
		Content: form.Content,
		Author: service.AuthorInput{
			Name:   form.AuthorName,
			Avatar: form.AuthorAvatar,
		},
		Tags:      ParseTags(form.Tags),
		Published: &published,
	})
	if errors.Is(err, service.ErrValidation) {
		p.editor(c, http.StatusBadRequest, form, err.Error())
		return
	}
	if err != nil {
		p.serverError(c, "Failed to create post", err)
		return
	}

	if published {
		c.Redirect(http.StatusSeeOther, "/posts/"+id)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?saved=draft")
}

// ParseTags 逗号分隔，去空白、去空项，重复标签只保留第一次出现
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

func (p *Pages) editor(c *gin.Context, status int, form editorForm, msg string) {
	c.HTML(status, "editor.html", gin.H{
		"Title": "Write a post | " + siteTitle,
		"Form":  form,
		"Error": msg,
	})
}

func (p *Pages) errorPage(c *gin.Context, status int, msg string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   msg + " | " + siteTitle,
		"Message": msg,
	})
}

func (p *Pages) serverError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	logger.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	p.errorPage(c, http.StatusInternalServerError, msg)
}
