package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront-next/internal/models"
)

const cartCacheTTL = 30 * time.Minute

// CartSnapshot 购物车缓存快照。
// 数据库是事实来源，缓存仅加速读取；任意写操作后必须失效。
type CartSnapshot struct {
	UserID    uint              `json:"user_id"`
	Items     []models.CartItem `json:"items"`
	UpdatedAt int64             `json:"updated_at"`
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

// GetCartSnapshot 读取购物车缓存
func GetCartSnapshot(ctx context.Context, userID uint) (*CartSnapshot, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var snapshot CartSnapshot
	hit, err := GetJSON(ctx, cartKey(userID), &snapshot)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snapshot, true, nil
}

// SetCartSnapshot 写入购物车缓存
func SetCartSnapshot(ctx context.Context, userID uint, items []models.CartItem) error {
	if userID == 0 {
		return nil
	}
	snapshot := CartSnapshot{
		UserID:    userID,
		Items:     items,
		UpdatedAt: time.Now().Unix(),
	}
	return SetJSON(ctx, cartKey(userID), snapshot, cartCacheTTL)
}

// DelCartSnapshot 失效购物车缓存
func DelCartSnapshot(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, cartKey(userID))
}
