// Package redis 缓存层初始化
package redis

import (
	"strconv"

	"buddies_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
)

var cacheService AsyncCacheService

// Init 初始化 Redis 连接和缓存服务实例
func Init() {
	conf := config.GetConfig()
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,

		// 连接池配置
		PoolSize:     50, // 最大连接数
		MinIdleConns: 15, // 最小空闲连接，与 Worker 数量匹配
	})

	// 15 个 Worker，缓冲区 3000，多 Service 共享
	cacheService = NewRedisCache(client, 15, 3000)
}

// GetCacheService 返回缓存服务实例，供依赖注入使用
func GetCacheService() AsyncCacheService {
	return cacheService
}
