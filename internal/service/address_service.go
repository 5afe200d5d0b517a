package service

import (
	"strings"

	"gorm.io/gorm"

	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"
)

// AddressService 收货地址业务服务
type AddressService struct {
	repo repository.AddressRepository
}

// NewAddressService 创建地址服务
func NewAddressService(repo repository.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// List 获取用户地址列表，默认地址排在最前
func (s *AddressService) List(userID uint) ([]models.Address, error) {
	return s.repo.ListByUser(userID)
}

// Get 获取用户的单条地址
func (s *AddressService) Get(userID, addressID uint) (*models.Address, error) {
	address, err := s.repo.GetByIDAndUser(addressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// AddressInput 创建/更新地址输入
type AddressInput struct {
	Title        string
	ReceiverName string
	Phone        string
	Province     string
	City         string
	PostalCode   string
	AddressLine  string
	IsDefault    bool
}

// Create 创建地址
// 设为默认时取消该用户其余默认地址
func (s *AddressService) Create(userID uint, input AddressInput) (*models.Address, error) {
	if err := validateAddressInput(&input); err != nil {
		return nil, err
	}

	address := &models.Address{
		UserID:       userID,
		Title:        input.Title,
		ReceiverName: input.ReceiverName,
		Phone:        input.Phone,
		Province:     input.Province,
		City:         input.City,
		PostalCode:   input.PostalCode,
		AddressLine:  input.AddressLine,
		IsDefault:    input.IsDefault,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(address); err != nil {
			return err
		}
		if address.IsDefault {
			return repo.UnsetDefaultByUser(userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Update 更新地址
func (s *AddressService) Update(userID, addressID uint, input AddressInput) (*models.Address, error) {
	address, err := s.Get(userID, addressID)
	if err != nil {
		return nil, err
	}
	if err := validateAddressInput(&input); err != nil {
		return nil, err
	}

	address.Title = input.Title
	address.ReceiverName = input.ReceiverName
	address.Phone = input.Phone
	address.Province = input.Province
	address.City = input.City
	address.PostalCode = input.PostalCode
	address.AddressLine = input.AddressLine
	address.IsDefault = input.IsDefault

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(address); err != nil {
			return err
		}
		if address.IsDefault {
			return repo.UnsetDefaultByUser(userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Delete 删除地址
func (s *AddressService) Delete(userID, addressID uint) error {
	address, err := s.Get(userID, addressID)
	if err != nil {
		return err
	}
	return s.repo.Delete(address.ID)
}

func validateAddressInput(input *AddressInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.ReceiverName = strings.TrimSpace(input.ReceiverName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Province = strings.TrimSpace(input.Province)
	input.City = strings.TrimSpace(input.City)
	input.PostalCode = strings.TrimSpace(input.PostalCode)
	input.AddressLine = strings.TrimSpace(input.AddressLine)

	if input.ReceiverName == "" || input.Phone == "" || input.Province == "" ||
		input.City == "" || input.AddressLine == "" {
		return ErrAddressInvalid
	}
	return nil
}
