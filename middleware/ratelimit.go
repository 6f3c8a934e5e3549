package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter 按 IP 的滑动窗口限流器
type rateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	max      int
	attempts map[string][]time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		window:   window,
		max:      max,
		attempts: make(map[string][]time.Time),
	}
	// 定期清理过期记录，避免 map 无限增长
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for ip, ts := range rl.attempts {
				kept := prune(ts, cutoff)
				if len(kept) == 0 {
					delete(rl.attempts, ip)
				} else {
					rl.attempts[ip] = kept
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

// allow 记录一次访问并判断是否放行
func (rl *rateLimiter) allow(ip string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	kept := prune(rl.attempts[ip], now.Add(-rl.window))
	if len(kept) >= rl.max {
		rl.attempts[ip] = kept
		return false
	}
	rl.attempts[ip] = append(kept, now)
	return true
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// AuthRateLimit 认证接口限流中间件
// 每 IP 在 window 内最多 maxAttempts 次尝试，超过返回 429。
// 用于登录、注册与密码重置入口，缓解暴力破解与邮箱轰炸
func AuthRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	rl := newRateLimiter(maxAttempts, window)
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "操作过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
