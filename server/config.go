package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"hordearena/protocol"
)

// Config 进程级配置。优先级：命令行 > 环境变量 > .env > 默认值
type Config struct {
	Addr      string
	StaticDir string
	LogFile   string
	LogLevel  string
	LogStderr bool

	SimHz       int           // 模拟频率
	BroadcastHz int           // 广播频率，独立于模拟
	MaxDelta    time.Duration // 单帧 deltaTime 上限，防止调度停顿导致的大跳变

	RateWindow time.Duration
	RateMax    int // 每窗口最多消息数

	SendQueue int // 每连接发送队列长度
	Codec     string
	Seed      int64 // 0 表示按时间取种子
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		StaticDir:   "web",
		LogFile:     "arena.log",
		LogLevel:    "info",
		SimHz:       60,
		BroadcastHz: 30,
		MaxDelta:    100 * time.Millisecond,
		RateWindow:  time.Second,
		RateMax:     60,
		SendQueue:   64,
		Codec:       string(protocol.CodecJSON),
	}
}

// LoadConfig 读取 .env（可缺省）与 ARENA_* 环境变量
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	c := DefaultConfig()
	var err error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			n, e := strconv.Atoi(v)
			if e != nil {
				err = fmt.Errorf("%s: %w", key, e)
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			d, e := time.ParseDuration(v)
			if e != nil {
				err = fmt.Errorf("%s: %w", key, e)
				return
			}
			*dst = d
		}
	}
	str("ARENA_ADDR", &c.Addr)
	str("ARENA_STATIC_DIR", &c.StaticDir)
	str("ARENA_LOG_FILE", &c.LogFile)
	str("ARENA_LOG_LEVEL", &c.LogLevel)
	str("ARENA_CODEC", &c.Codec)
	num("ARENA_SIM_HZ", &c.SimHz)
	num("ARENA_BROADCAST_HZ", &c.BroadcastHz)
	num("ARENA_RATE_MAX", &c.RateMax)
	num("ARENA_SEND_QUEUE", &c.SendQueue)
	dur("ARENA_MAX_DELTA", &c.MaxDelta)
	dur("ARENA_RATE_WINDOW", &c.RateWindow)
	if v, ok := os.LookupEnv("ARENA_LOG_STDERR"); ok && err == nil {
		c.LogStderr, err = strconv.ParseBool(v)
	}
	if v, ok := os.LookupEnv("ARENA_SEED"); ok && err == nil {
		c.Seed, err = strconv.ParseInt(v, 10, 64)
	}
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate 检查配置取值
func (c Config) Validate() error {
	switch {
	case c.SimHz <= 0 || c.SimHz > 1000:
		return fmt.Errorf("sim hz %d out of range", c.SimHz)
	case c.BroadcastHz <= 0 || c.BroadcastHz > c.SimHz:
		return fmt.Errorf("broadcast hz %d must be in (0, sim hz]", c.BroadcastHz)
	case c.MaxDelta <= 0:
		return fmt.Errorf("max delta must be positive")
	case c.RateWindow <= 0 || c.RateMax <= 0:
		return fmt.Errorf("rate limit window/max must be positive")
	case c.SendQueue <= 0:
		return fmt.Errorf("send queue must be positive")
	}
	if _, err := protocol.ParseCodec(c.Codec); err != nil {
		return err
	}
	return nil
}
