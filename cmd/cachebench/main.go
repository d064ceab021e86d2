package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/d60-Lab/poster-threads/internal/cache"
	"github.com/d60-Lab/poster-threads/internal/model"
	"github.com/d60-Lab/poster-threads/internal/repository"
	"github.com/d60-Lab/poster-threads/internal/service"
	"github.com/d60-Lab/poster-threads/pkg/database"
)

// 模拟线上读多写少：大部分请求拉主题列表，少量追加消息使缓存失效
type op struct {
	userID string
	write  bool
}

func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=postgres port=5434 sslmode=disable"
	}
	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{}))

	mustDo(db.Exec("DROP TABLE IF EXISTS conversations CASCADE").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS conversation_threads CASCADE").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS posters CASCADE").Error)
	mustDo(repository.AutoMigrate(ctx, db))

	const (
		userCount        = 200
		threadsPerUser   = 40
		messagesPerTheme = 15
		opCount          = 9000
		writeRatio       = 0.05
		ttl              = 10 * time.Minute
	)

	fmt.Println("Setting up test data...")
	users := seed(db, userCount, threadsPerUser, messagesPerTheme)
	fmt.Printf("Test data ready: %d users, %d threads, %d conversations\n",
		userCount, userCount*threadsPerUser, userCount*threadsPerUser*messagesPerTheme)

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	gw := database.NewGateway(db)
	ops := makeOps(users, opCount, writeRatio)

	noCache := runScenario(ctx, gw, db, nil, users, ops, client)
	cached := runScenario(ctx, gw, db, cache.NewThreadSummaryCache(client, ttl), users, ops, client)

	fmt.Printf("\nThread list latency (%d ops, %.0f%% appends, PostgreSQL + Redis)\n", opCount, writeRatio*100)
	for _, r := range []struct {
		name string
		res  scenarioResult
	}{{"No cache", noCache}, {"Summary cache", cached}} {
		fmt.Printf("%-14s avg=%v p95=%v p99=%v hits=%d misses=%d cache_keys=%d\n",
			r.name, avg(r.res.durations), pct(r.res.durations, 0.95), pct(r.res.durations, 0.99),
			r.res.hits, r.res.misses, r.res.cacheKeys,
		)
	}
}

func seed(db *gorm.DB, users, threadsPerUser, messages int) []string {
	ids := make([]string, users)
	base := time.Now().Add(-24 * time.Hour)
	threads := make([]model.Thread, 0, users*threadsPerUser)
	convs := make([]model.Conversation, 0, users*threadsPerUser*messages)
	for u := 0; u < users; u++ {
		ids[u] = fmt.Sprintf("user_%d", u)
		for t := 0; t < threadsPerUser; t++ {
			at := base.Add(time.Duration(u*threadsPerUser+t) * time.Second)
			th := model.Thread{ID: uuid.NewString(), UserID: ids[u], Title: fmt.Sprintf("thread %d", t), CreatedAt: at, UpdatedAt: at}
			threads = append(threads, th)
			for m := 0; m < messages; m++ {
				convs = append(convs, model.Conversation{
					ID:        uuid.NewString(),
					UserID:    ids[u],
					ThreadID:  th.ID,
					Message:   fmt.Sprintf("message %d", m),
					CreatedAt: at,
				})
			}
		}
	}
	mustDo(db.CreateInBatches(&threads, 1000).Error)
	mustDo(db.CreateInBatches(&convs, 1000).Error)
	return ids
}

type scenarioResult struct {
	durations    []time.Duration
	hits, misses int64
	cacheKeys    int
}

func runScenario(ctx context.Context, gw *database.Gateway, db *gorm.DB, summaries *cache.ThreadSummaryCache, users []string, ops []op, client *redis.Client) scenarioResult {
	client.FlushAll(ctx)

	threadRepo := repository.NewThreadRepository(db)
	convRepo := repository.NewConversationRepository(db)
	threads := service.NewThreadService(gw, threadRepo, convRepo, repository.NewPosterRepository(db), summaries)
	conversations := service.NewConversationService(gw, threadRepo, convRepo, summaries)

	// 每个用户取一个主题用于追加
	target := make(map[string]string, len(users))
	for _, u := range users {
		list := must(threads.List(ctx, u))
		target[u] = list[0].ID
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(ops))
	for _, o := range ops {
		if o.write {
			must(conversations.Append(ctx, o.userID, target[o.userID], "bench"))
			continue
		}
		start := time.Now()
		must(threads.List(ctx, o.userID))
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "threads:summary:*:v*").Result()
	hits, misses := summaries.Counters()
	return scenarioResult{durations: out, hits: hits, misses: misses, cacheKeys: len(keys)}
}

func makeOps(users []string, n int, writeRatio float64) []op {
	rnd := rand.New(rand.NewSource(42))
	out := make([]op, n)
	for i := range out {
		// 热点用户：前 10% 用户占一半流量
		var u string
		if rnd.Float64() < 0.5 {
			u = users[rnd.Intn(len(users)/10+1)]
		} else {
			u = users[rnd.Intn(len(users))]
		}
		out[i] = op{userID: u, write: rnd.Float64() < writeRatio}
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
