package random

import (
	"crypto/rand"
	"math/big"
	"time"
)

// GetNowAndLenRandomString 生成带时间戳前缀的随机字符串（用于实体 UUID）
// 格式: YYMMDD + 字母数字混合
// 示例: 241230AbCdE1234567
func GetNowAndLenRandomString(length int) string {
	result := make([]byte, length)
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return time.Now().Format("060102") + string(result)
}

// UserUuid 生成用户 UUID，U + 时间戳随机串
func UserUuid() string { return "U" + GetNowAndLenRandomString(11) }

// InterestUuid 生成兴趣标签 UUID
func InterestUuid() string { return "I" + GetNowAndLenRandomString(11) }

// FriendshipRequestUuid 生成好友申请 UUID
func FriendshipRequestUuid() string { return "F" + GetNowAndLenRandomString(11) }

// PrivateChatUuid 生成私聊会话 UUID
func PrivateChatUuid() string { return "C" + GetNowAndLenRandomString(11) }

// GroupUuid 生成群组 UUID
func GroupUuid() string { return "G" + GetNowAndLenRandomString(11) }
