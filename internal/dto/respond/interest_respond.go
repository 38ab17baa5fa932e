package respond

// InterestRespond 兴趣标签
// 使用位置:
//   - internal/service/interest/service.go: ListInterests
//   - internal/service/user/service.go: Register, GetUserInfo
type InterestRespond struct {
	Uuid string `json:"uuid"`
	Name string `json:"name"`
}
