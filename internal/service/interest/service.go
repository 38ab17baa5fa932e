// Package interest 兴趣标签的业务逻辑，全局参照数据
package interest

import (
	"context"

	"buddies_chat_server/internal/dao/mysql"
	"buddies_chat_server/internal/dto/respond"
	"buddies_chat_server/internal/model"
	"buddies_chat_server/pkg/util/random"
)

type interestService struct {
	store mysql.Store
}

// NewInterestService 构造函数
func NewInterestService(store mysql.Store) *interestService {
	return &interestService{store: store}
}

// ListInterests 返回全部兴趣标签，注册页选择用
func (s *interestService) ListInterests(ctx context.Context) ([]respond.InterestRespond, error) {
	interests, err := s.store.Interests().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]respond.InterestRespond, 0, len(interests))
	for i := range interests {
		out = append(out, respond.InterestRespond{Uuid: interests[i].Uuid, Name: interests[i].Name})
	}
	return out, nil
}

// SeedInterests 幂等写入预置标签，启动时调用
// 只补缺失的名称，已有标签不动
func (s *interestService) SeedInterests(ctx context.Context, names []string) error {
	existing, err := s.store.Interests().FindAll(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]struct{}, len(existing))
	for i := range existing {
		have[existing[i].Name] = struct{}{}
	}
	for _, name := range names {
		if _, ok := have[name]; ok {
			continue
		}
		err := s.store.Interests().Create(ctx, &model.Interest{
			Uuid: random.InterestUuid(),
			Name: name,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
