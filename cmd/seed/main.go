// seed 通过文章服务批量写入假数据，并输出写入/列表延迟分布。
//
//	POSTS=500 DRAFT_RATIO=0.2 WORKERS=4 BLOG_CONFIG=config/config.yaml go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/d60-Lab/mdblog/config"
	"github.com/d60-Lab/mdblog/internal/bootstrap"
	"github.com/d60-Lab/mdblog/internal/service"
	"github.com/d60-Lab/mdblog/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range vs {
		sum += d
	}
	return sum / time.Duration(len(vs))
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v <= 1 {
			return v
		}
	}
	return def
}

// fakePost 生成一篇带标题、段落、代码块与标签的 Markdown 文章
func fakePost(f *gofakeit.Faker, published bool) service.CreatePostInput {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", f.Sentence(5))
	fmt.Fprintf(&b, "%s\n\n", f.Paragraph(2, 4, 12, "\n\n"))
	fmt.Fprintf(&b, "## %s\n\n", f.Sentence(3))
	fmt.Fprintf(&b, "> %s\n\n", f.Quote())
	fmt.Fprintf(&b, "```go\nfmt.Println(%q)\n```\n\n", f.Word())
	fmt.Fprintf(&b, "%s\n", f.Paragraph(1, 3, 10, "\n\n"))

	tags := make([]string, f.Number(0, 4))
	for i := range tags {
		tags[i] = f.Word()
	}
	return service.CreatePostInput{
		Title:     f.Adjective() + " " + f.Noun(),
		Content:   b.String(),
		Author:    service.AuthorInput{Name: f.Name(), Avatar: f.URL()},
		Tags:      tags,
		Published: &published,
	}
}

func main() {
	cfg := must(config.LoadFrom(os.Getenv(config.PathEnv)))
	_ = logger.Init(logger.Options{Level: "warn", Format: cfg.Log.Format})
	defer logger.Sync()

	POSTS := envInt("POSTS", 200)
	WORKERS := envInt("WORKERS", 4)
	DRAFT_RATIO := envFloat("DRAFT_RATIO", 0.2)
	SEED := int64(envInt("SEED", 42))

	ctx := context.Background()
	repo, closeStore := must2(bootstrap.OpenPostRepository(ctx, cfg))
	defer closeStore(ctx)
	svc := service.NewPostService(repo, nil)

	// 先在单个 goroutine 中生成输入，保证同一 SEED 下数据可复现
	faker := gofakeit.New(uint64(SEED))
	inputs := make([]service.CreatePostInput, POSTS)
	drafts := 0
	for i := range inputs {
		published := faker.Float64Range(0, 1) >= DRAFT_RATIO
		if !published {
			drafts++
		}
		inputs[i] = fakePost(faker, published)
	}

	jobs := make(chan service.CreatePostInput)
	var (
		mu       sync.Mutex
		create   = make([]time.Duration, 0, POSTS)
		failures int
		wg       sync.WaitGroup
	)
	start := time.Now()
	for w := 0; w < WORKERS; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range jobs {
				st := time.Now()
				_, err := svc.Create(ctx, in)
				d := time.Since(st)
				mu.Lock()
				if err != nil {
					failures++
				} else {
					create = append(create, d)
				}
				mu.Unlock()
			}
		}()
	}
	for _, in := range inputs {
		jobs <- in
	}
	close(jobs)
	wg.Wait()
	total := time.Since(start)

	list := make([]time.Duration, 0, 20)
	visible := 0
	for i := 0; i < 20; i++ {
		st := time.Now()
		posts, err := svc.ListPublished(ctx)
		if err != nil {
			panic(err)
		}
		list = append(list, time.Since(st))
		visible = len(posts)
	}

	fmt.Printf("driver=%s POSTS=%d WORKERS=%d DRAFT_RATIO=%.2f drafts=%d failures=%d\n",
		cfg.Database.Driver, POSTS, WORKERS, DRAFT_RATIO, drafts, failures)
	fmt.Printf("Create latency: total=%v avg=%v p50=%v p95=%v p99=%v\n",
		total, avg(create), pct(create, 0.50), pct(create, 0.95), pct(create, 0.99))
	fmt.Printf("List published (rows=%d): avg=%v p95=%v\n", visible, avg(list), pct(list, 0.95))
}

func must2[A, B any](a A, b B, err error) (A, B) {
	if err != nil {
		panic(err)
	}
	return a, b
}
