package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buddies_chat_server/internal/config"
	dao "buddies_chat_server/internal/dao/mysql"
	myredis "buddies_chat_server/internal/dao/redis"
	"buddies_chat_server/internal/handler"
	"buddies_chat_server/internal/https_server"
	"buddies_chat_server/internal/infrastructure/logger"
	"buddies_chat_server/internal/infrastructure/mq"
	"buddies_chat_server/internal/service"
	"buddies_chat_server/internal/service/chat"
	"buddies_chat_server/pkg/util/jwt"
	"buddies_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// 预置兴趣标签，首次启动时幂等写入
var defaultInterests = []string{
	"篮球", "足球", "羽毛球", "健身", "跑步",
	"电影", "音乐", "摄影", "旅行", "美食",
	"编程", "读书", "游戏", "绘画", "桌游",
}

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花 ID
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	zap.L().Info("JWT、雪花 ID 初始化成功")

	// 6. 初始化连接注册表和事件队列
	// eventMode 为 kafka 时广播信封经由 Kafka 中转，多实例部署共享一份事件流
	registry := chat.NewRegistry()
	var queue mq.EventQueue
	if conf.KafkaConfig.EventMode == "kafka" {
		kafkaQueue := mq.NewKafkaQueue()
		if err := kafkaQueue.CreateTopic(); err != nil {
			zap.L().Fatal("Kafka 主题创建失败", zap.Error(err))
		}
		queue = kafkaQueue
	} else {
		queue = mq.NewChannelQueue()
	}
	broadcaster := chat.NewQueuedBroadcaster(queue, registry)
	zap.L().Info("事件队列初始化成功", zap.String("eventMode", conf.KafkaConfig.EventMode))

	// 7. 初始化 Service 层 (依赖注入)
	service.InitServices(repos, myredis.GetCacheService(), broadcaster)
	zap.L().Info("Service 层初始化成功")

	// 8. 预置兴趣标签（幂等）
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := service.Svc.Interest.SeedInterests(seedCtx, defaultInterests); err != nil {
		zap.L().Warn("预置兴趣标签失败", zap.Error(err))
	}
	cancel()

	// 9. 初始化 HTTP 服务器
	auth := chat.NewStoreAuthorizer(repos)
	handlers := handler.NewHandlers(service.Svc, registry, auth)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("参数校验翻译器初始化失败", zap.Error(err))
	}
	engine := https_server.Init(handlers)
	zap.L().Info("HTTP 服务器初始化成功")

	// 10. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port

	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	zap.L().Info("关闭服务器...")

	if err := queue.Close(); err != nil {
		zap.L().Error("事件队列关闭失败", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
}
