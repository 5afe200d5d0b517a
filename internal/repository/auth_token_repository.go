package repository

import (
	"errors"
	"time"

	"github.com/toranj-shop/internal/models"

	"gorm.io/gorm"
)

// RefreshTokenRepository 刷新令牌数据访问接口
type RefreshTokenRepository interface {
	Create(token *models.RefreshToken) error
	GetByToken(token string) (*models.RefreshToken, error)
	DeleteByToken(token string) error
	DeleteByUser(userID uint) error
	DeleteExpired(before time.Time) error
	WithTx(tx *gorm.DB) *GormRefreshTokenRepository
}

// GormRefreshTokenRepository GORM 实现
type GormRefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository 创建刷新令牌仓库
func NewRefreshTokenRepository(db *gorm.DB) *GormRefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRefreshTokenRepository) WithTx(tx *gorm.DB) *GormRefreshTokenRepository {
	if tx == nil {
		return r
	}
	return &GormRefreshTokenRepository{db: tx}
}

// Create 创建刷新令牌记录
func (r *GormRefreshTokenRepository) Create(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

// GetByToken 根据令牌标识获取记录
func (r *GormRefreshTokenRepository) GetByToken(token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := r.db.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// DeleteByToken 删除指定令牌记录
func (r *GormRefreshTokenRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

// DeleteByUser 删除用户全部刷新令牌（强制重新登录）
func (r *GormRefreshTokenRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

// DeleteExpired 删除已过期令牌
func (r *GormRefreshTokenRepository) DeleteExpired(before time.Time) error {
	return r.db.Where("expires_at < ?", before).Delete(&models.RefreshToken{}).Error
}

// PasswordResetTokenRepository 密码重置令牌数据访问接口
type PasswordResetTokenRepository interface {
	Create(token *models.PasswordResetToken) error
	GetByToken(token string) (*models.PasswordResetToken, error)
	DeleteByID(id uint) error
	DeleteByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormPasswordResetTokenRepository
}

// GormPasswordResetTokenRepository GORM 实现
type GormPasswordResetTokenRepository struct {
	db *gorm.DB
}

// NewPasswordResetTokenRepository 创建密码重置令牌仓库
func NewPasswordResetTokenRepository(db *gorm.DB) *GormPasswordResetTokenRepository {
	return &GormPasswordResetTokenRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPasswordResetTokenRepository) WithTx(tx *gorm.DB) *GormPasswordResetTokenRepository {
	if tx == nil {
		return r
	}
	return &GormPasswordResetTokenRepository{db: tx}
}

// Create 创建重置令牌记录
func (r *GormPasswordResetTokenRepository) Create(token *models.PasswordResetToken) error {
	return r.db.Create(token).Error
}

// GetByToken 根据令牌获取记录
func (r *GormPasswordResetTokenRepository) GetByToken(token string) (*models.PasswordResetToken, error) {
	var record models.PasswordResetToken
	if err := r.db.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// DeleteByID 删除指定记录（令牌一次性使用）
func (r *GormPasswordResetTokenRepository) DeleteByID(id uint) error {
	return r.db.Delete(&models.PasswordResetToken{}, id).Error
}

// DeleteByUser 删除用户全部重置令牌
func (r *GormPasswordResetTokenRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error
}

// OtpCodeRepository 一次性验证码数据访问接口
type OtpCodeRepository interface {
	Create(code *models.OtpCode) error
	GetLatestByEmail(email string) (*models.OtpCode, error)
	DeleteByID(id uint) error
	DeleteByEmail(email string) error
	DeleteExpiredByEmail(email string, before time.Time) error
	WithTx(tx *gorm.DB) *GormOtpCodeRepository
}

// GormOtpCodeRepository GORM 实现
type GormOtpCodeRepository struct {
	db *gorm.DB
}

// NewOtpCodeRepository 创建验证码仓库
func NewOtpCodeRepository(db *gorm.DB) *GormOtpCodeRepository {
	return &GormOtpCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOtpCodeRepository) WithTx(tx *gorm.DB) *GormOtpCodeRepository {
	if tx == nil {
		return r
	}
	return &GormOtpCodeRepository{db: tx}
}

// Create 创建验证码记录
func (r *GormOtpCodeRepository) Create(code *models.OtpCode) error {
	return r.db.Create(code).Error
}

// GetLatestByEmail 获取邮箱最新验证码
func (r *GormOtpCodeRepository) GetLatestByEmail(email string) (*models.OtpCode, error) {
	var record models.OtpCode
	err := r.db.Where("email = ?", email).Order("created_at DESC, id DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// DeleteByID 删除指定验证码（消费后）
func (r *GormOtpCodeRepository) DeleteByID(id uint) error {
	return r.db.Delete(&models.OtpCode{}, id).Error
}

// DeleteByEmail 删除邮箱全部验证码
func (r *GormOtpCodeRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.OtpCode{}).Error
}

// DeleteExpiredByEmail 删除邮箱已过期验证码
func (r *GormOtpCodeRepository) DeleteExpiredByEmail(email string, before time.Time) error {
	return r.db.Where("email = ? AND expires_at < ?", email, before).Delete(&models.OtpCode{}).Error
}
