package repository

import (
	"context"
	"errors"

	"github.com/user/streambox/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrDuplicateEmail 邮箱已存在（唯一索引冲突）
var ErrDuplicateEmail = errors.New("email already exists")

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create 创建账号，密码在这里哈希，明文不落库
func (r *AccountRepository) Create(ctx context.Context, email, password string) (*model.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return account, nil
}

// FindByEmail 根据邮箱查找账号（区分大小写），不存在返回 nil
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// FindByID 根据 ID 查找账号，不存在返回 nil
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// CheckPassword 验证密码
func (r *AccountRepository) CheckPassword(account *model.Account, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	return err == nil
}

// SetAdmin 设置管理员标记，返回受影响行数
func (r *AccountRepository) SetAdmin(ctx context.Context, email string, isAdmin bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("email = ?", email).Update("is_admin", isAdmin)
	return res.RowsAffected, res.Error
}
