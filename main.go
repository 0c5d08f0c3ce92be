package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hordearena/game"
	"hordearena/protocol"
	"hordearena/server"
)

// HordeArena 入口：读取配置，启动 HTTP + WebSocket 服务与 Tick 调度
func main() {
	cfg, err := server.LoadConfig(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// 命令行覆盖环境变量
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	flag.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "static asset directory, empty to disable")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug/info/warn/error")
	flag.BoolVar(&cfg.LogStderr, "log-stderr", cfg.LogStderr, "also log to stderr")
	flag.IntVar(&cfg.SimHz, "sim-hz", cfg.SimHz, "simulation tick rate")
	flag.IntVar(&cfg.BroadcastHz, "broadcast-hz", cfg.BroadcastHz, "snapshot broadcast rate")
	flag.StringVar(&cfg.Codec, "codec", cfg.Codec, "snapshot codec: json or msgpack")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "simulation seed, 0 for time based")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel, cfg.LogStderr); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	codec, _ := protocol.ParseCodec(cfg.Codec)
	registry := server.NewRegistry(server.RoomOptions{
		Tuning: game.DefaultTuning(),
		Codec:  codec,
		Seed:   cfg.Seed,
	})
	handler := server.NewHandler(registry, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := server.NewScheduler(registry, cfg.SimHz, cfg.BroadcastHz, cfg.MaxDelta)
	go scheduler.Run(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: server.NewRouter(handler)}

	go func() {
		server.Log.Infof("HordeArena listening on %s (sim %dHz, broadcast %dHz, codec %s)",
			cfg.Addr, cfg.SimHz, cfg.BroadcastHz, cfg.Codec)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）：先停止接入，再停调度，最后关闭所有房间并等待发送队列写完
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	cancel()
	<-scheduler.Done()
	registry.CloseAll()
	if err := handler.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnw("connections not flushed before deadline", "err", err)
	}
}
