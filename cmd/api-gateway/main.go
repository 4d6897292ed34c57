package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/middleware"
)

// 说明：
// 规划里提到 “Kong/Nginx + gRPC-Gateway”。
// 当前仓库还没有业务 proto（只有 health），因此这里先提供一个最小可运行的 HTTP 入口骨架：
// - /healthz: 网关自身健康检查
// - 全局令牌桶限流 + 后端探测的熔断器
// 后续接入 grpc-gateway 时：
// 1) 在 internal/api/proto 下补齐业务 proto，并添加 google.api.http 注解
// 2) 用 protoc 生成 gateway handlers
// 3) 在这里初始化 grpc-gateway mux，把 HTTP 映射到后端 gRPC（并可配合 Consul 解析）

var (
	listenAddr  = flag.String("listen", ":8080", "HTTP listen address")
	rateAlgo    = flag.String("rate-algo", "bucket", "限流算法：bucket / window")
	rateCap     = flag.Int64("rate-capacity", 200, "令牌桶容量 / 窗口内最大请求数")
	rateRefill  = flag.Int64("rate-refill", 100, "每秒补充令牌数（bucket）")
	rateWindow  = flag.Duration("rate-window", time.Second, "滑动窗口长度（window）")
	backendAddr = flag.String("backend", "", "后端健康探测地址（可选）")
)

func main() {
	flag.Parse()

	var limiter middleware.RateLimiter
	if *rateAlgo == "window" {
		limiter = middleware.NewSlidingWindow(*rateWindow, int(*rateCap))
	} else {
		limiter = middleware.NewTokenBucket(*rateCap, *rateRefill)
	}
	breaker := middleware.NewCircuitBreaker("backend", 5, 30*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if *backendAddr == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		err := breaker.Call(r.Context(), func() error {
			client := http.Client{Timeout: 2 * time.Second}
			resp, err := client.Get("http://" + *backendAddr + "/healthz")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("backend returned %d", resp.StatusCode)
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           middleware.RateLimitHandler(limiter, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Printf("api-gateway listening on %s\n", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(err)
	}
}
