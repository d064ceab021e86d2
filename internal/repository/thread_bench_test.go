package repository

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// 构造：一个用户 200 个主题，每个主题 20 条对话
func BenchmarkListSummaries(b *testing.B) {
	db := setupTestDB(b)
	threads := NewThreadRepository(db)
	convs := NewConversationRepository(db)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		th := newThread("u0", fmt.Sprintf("thread-%03d", i), at)
		if err := threads.Create(ctx, th, nil); err != nil {
			b.Fatalf("seed thread: %v", err)
		}
		for j := 0; j < 20; j++ {
			if err := convs.Create(ctx, newConversation("u0", th.ID, "msg", at.Add(time.Duration(j)*time.Second))); err != nil {
				b.Fatalf("seed conversation: %v", err)
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = threads.ListSummaries(ctx, "u0")
	}
}
