package constants

const (
	CHANNEL_SIZE               = 100 // 通道大小（ws 发送缓冲 / 事件队列缓冲）
	REDIS_TIMEOUT              = 1   // redis timeout (分钟)
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
)

// 频道命名约定，前端和其他客户端依赖这些格式，不可改动
const (
	UserChannelPrefix    = "user:"    // 每个在线连接自动加入 user:<用户uuid>
	GroupChannelPrefix   = "group:"   // 建群时把成员在线连接加入 group:<群uuid>
	PrivateChannelPrefix = "private:" // 打开私聊时加入 private:<会话uuid>
)

// 实时事件名，同样属于对外契约
const (
	EventNewFriendshipRequest = "new friendship request"
	EventNewPrivateChat       = "new private chat"
	EventNewPrivateMessage    = "new private chat message"
	EventNewGroup             = "new group"
	EventNewGroupMessage      = "new group message"
)
