// Package user 用户账号、认证、主页与评分的业务逻辑
package user

import (
	"context"
	"database/sql"
	"time"

	"buddies_chat_server/internal/config"
	"buddies_chat_server/internal/dao/mysql"
	myredis "buddies_chat_server/internal/dao/redis"
	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/dto/respond"
	"buddies_chat_server/internal/model"
	"buddies_chat_server/internal/service/friendship"
	"buddies_chat_server/pkg/errorx"
	"buddies_chat_server/pkg/util/jwt"
	"buddies_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// refreshTokenKey refresh token 在 redis 里的键
func refreshTokenKey(tokenID string) string {
	return "refresh_token_" + tokenID
}

type userService struct {
	store mysql.Store
	cache myredis.AsyncCacheService
}

// NewUserService 构造函数
func NewUserService(store mysql.Store, cache myredis.AsyncCacheService) *userService {
	return &userService{store: store, cache: cache}
}

// Register 用户注册
// 注册时拍下兴趣快照，成功即视为登录，直接下发令牌
func (s *userService) Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error) {
	// 邮箱查重
	if _, err := s.store.Users().FindByEmail(ctx, req.Email); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "邮箱已被注册")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	// 校验兴趣标签都存在
	interestUuids := dedupe(req.InterestUuids)
	interests, err := s.store.Interests().FindByUuids(ctx, interestUuids)
	if err != nil {
		return nil, err
	}
	if len(interests) != len(interestUuids) {
		return nil, errorx.New(errorx.CodeInvalidParam, "兴趣标签不存在")
	}

	user := &model.UserInfo{
		Uuid:        random.UserUuid(),
		Nickname:    req.Nickname,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Signature:   req.Signature,
		RawPassword: req.Password, // BeforeSave hook 负责哈希
	}
	userInterests := make([]model.UserInterest, 0, len(interests))
	for i := range interests {
		userInterests = append(userInterests, model.UserInterest{
			UserUuid:     user.Uuid,
			InterestUuid: interests[i].Uuid,
			InterestName: interests[i].Name,
		})
	}

	err = s.store.Transaction(ctx, func(tx mysql.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Interests().CreateUserInterests(ctx, userInterests)
	})
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user.Uuid)
	if err != nil {
		return nil, err
	}

	rsp := &respond.RegisterRespond{
		Uuid:         user.Uuid,
		Nickname:     user.Nickname,
		Email:        user.Email,
		Avatar:       user.Avatar,
		Signature:    user.Signature,
		Interests:    toInterestResponds(userInterests),
		CreatedAt:    user.CreatedAt.Format(timeLayout),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	return rsp, nil
}

// Login 密码登录
// 邮箱不存在和密码错误返回同一个错误，不暴露账号是否存在
func (s *userService) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.store.Users().FindByEmail(ctx, req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "邮箱或密码错误")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeUnauthorized, "邮箱或密码错误")
	}
	if user.Status != 0 {
		return nil, errorx.New(errorx.CodeForbidden, "账号已被禁用")
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user.Uuid)
	if err != nil {
		return nil, err
	}

	return &respond.LoginRespond{
		Uuid:         user.Uuid,
		Nickname:     user.Nickname,
		Email:        user.Email,
		Avatar:       user.Avatar,
		Signature:    user.Signature,
		AvgRating:    nullToPtr(user.AvgRating),
		RaterCnt:     user.RaterCnt,
		IsAdmin:      user.IsAdmin,
		Status:       user.Status,
		CreatedAt:    user.CreatedAt.Format(timeLayout),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken 刷新令牌，旧 refresh token 作废（轮换）
func (s *userService) RefreshToken(ctx context.Context, req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error) {
	claims, err := jwt.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "refresh token 无效")
	}
	if claims.Subject != "refresh_token" || claims.TokenID == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "refresh token 无效")
	}

	// redis 里必须有对应记录，登出或轮换后的旧令牌在这里被拒
	userId, err := s.cache.GetOrError(ctx, refreshTokenKey(claims.TokenID))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "refresh token 已失效")
		}
		return nil, err
	}
	if userId != claims.UserID {
		return nil, errorx.New(errorx.CodeUnauthorized, "refresh token 无效")
	}

	if err := s.cache.Delete(ctx, refreshTokenKey(claims.TokenID)); err != nil {
		zap.L().Warn("delete rotated refresh token failed", zap.Error(err))
	}
	accessToken, refreshToken, err := s.issueTokens(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &respond.RefreshTokenRespond{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetUserInfo 用户主页
// Relationship 按查看者视角由两人的全部申请边推导，看自己时全为零值
func (s *userService) GetUserInfo(ctx context.Context, viewerId, targetUuid string) (*respond.GetUserInfoRespond, error) {
	user, err := s.store.Users().FindByUuid(ctx, targetUuid)
	if err != nil {
		return nil, err
	}
	userInterests, err := s.store.Interests().FindByUser(ctx, targetUuid)
	if err != nil {
		return nil, err
	}

	var rel friendship.Relationship
	if viewerId != targetUuid {
		rows, err := s.store.Friendships().FindBetween(ctx, viewerId, targetUuid)
		if err != nil {
			return nil, err
		}
		rel = friendship.Resolve(viewerId, rows)
	}

	return &respond.GetUserInfoRespond{
		Uuid:      user.Uuid,
		Nickname:  user.Nickname,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Signature: user.Signature,
		AvgRating: nullToPtr(user.AvgRating),
		RaterCnt:  user.RaterCnt,
		Interests: toInterestResponds(userInterests),
		CreatedAt: user.CreatedAt.Format(timeLayout),
		Relationship: respond.RelationshipRespond{
			CanSend:          rel.CanSend,
			HasSentPending:   rel.HasSentPending,
			CanRespond:       rel.CanRespond,
			HasResponded:     rel.HasResponded,
			AreFriends:       rel.AreFriends,
			PendingRequestId: rel.PendingRequestId,
		},
	}, nil
}

// GetSuggestedUsers 好友推荐：共同兴趣至少一个的用户，按共同数倒序
func (s *userService) GetSuggestedUsers(ctx context.Context, userId string) ([]respond.SuggestedUserRespond, error) {
	userInterests, err := s.store.Interests().FindByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	interestUuids := make([]string, 0, len(userInterests))
	for i := range userInterests {
		interestUuids = append(interestUuids, userInterests[i].InterestUuid)
	}

	rows, err := s.store.Users().FindSuggested(ctx, userId, interestUuids)
	if err != nil {
		return nil, err
	}
	out := make([]respond.SuggestedUserRespond, 0, len(rows))
	for i := range rows {
		out = append(out, respond.SuggestedUserRespond{
			Uuid:        rows[i].Uuid,
			Nickname:    rows[i].Nickname,
			Avatar:      rows[i].Avatar,
			AvgRating:   nullToPtr(rows[i].AvgRating),
			MatchingCnt: rows[i].MatchingCnt,
		})
	}
	return out, nil
}

// RateUser 好友评分
// 同一打分人重复评分是覆盖；评分行写入、聚合重算、
// 用户缓存列回写和申请边上的评分快照刷新在同一事务里完成
func (s *userService) RateUser(ctx context.Context, raterId string, req request.RateUserRequest) (*respond.RateUserRespond, error) {
	if raterId == req.RatedId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能给自己评分")
	}
	if _, err := s.store.Users().FindByUuid(ctx, req.RatedId); err != nil {
		return nil, err
	}

	// 只能给好友评分
	edge, err := s.store.Friendships().FindAcceptedBetween(ctx, raterId, req.RatedId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "只能给好友评分")
		}
		return nil, err
	}

	var avg float64
	var cnt int64
	err = s.store.Transaction(ctx, func(tx mysql.Store) error {
		existing, err := tx.Ratings().FindByRaterAndRated(ctx, raterId, req.RatedId)
		if err != nil {
			if !errorx.IsNotFound(err) {
				return err
			}
			err = tx.Ratings().Create(ctx, &model.Rating{
				RaterId: raterId,
				RatedId: req.RatedId,
				Value:   req.Value,
			})
			if err != nil {
				return err
			}
		} else {
			existing.Value = req.Value
			if err := tx.Ratings().Update(ctx, existing); err != nil {
				return err
			}
		}

		avg, cnt, err = tx.Ratings().AggregateByRated(ctx, req.RatedId)
		if err != nil {
			return err
		}
		err = tx.Users().UpdateRating(ctx, req.RatedId,
			sql.NullFloat64{Float64: avg, Valid: cnt > 0}, int(cnt))
		if err != nil {
			return err
		}

		// 被评人是这条边的发起人时，刷新边上的评分快照
		if edge.SenderId == req.RatedId {
			edge.SenderAvgRating = sql.NullFloat64{Float64: avg, Valid: cnt > 0}
			return tx.Friendships().Update(ctx, edge)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &respond.RateUserRespond{
		RatedId:   req.RatedId,
		AvgRating: avg,
		RaterCnt:  int(cnt),
	}, nil
}

// issueTokens 签发一对令牌并登记 refresh token
func (s *userService) issueTokens(ctx context.Context, userId string) (string, string, error) {
	accessToken, err := jwt.GenerateAccessToken(userId)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "签发 access token")
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(userId)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "签发 refresh token")
	}

	ttl := time.Duration(config.GetConfig().JWTConfig.RefreshTokenExpiry) * time.Hour
	if err := s.cache.Set(ctx, refreshTokenKey(tokenID), userId, ttl); err != nil {
		// 登记失败只影响后续刷新，本次登录仍然有效
		zap.L().Warn("store refresh token failed", zap.String("user", userId), zap.Error(err))
	}
	return accessToken, refreshToken, nil
}

func toInterestResponds(rows []model.UserInterest) []respond.InterestRespond {
	out := make([]respond.InterestRespond, 0, len(rows))
	for i := range rows {
		out = append(out, respond.InterestRespond{Uuid: rows[i].InterestUuid, Name: rows[i].InterestName})
	}
	return out
}

func nullToPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
