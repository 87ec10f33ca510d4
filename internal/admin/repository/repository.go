package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 管理模块仓库集合
type Repositories struct {
	Tenant       *TenantRepository
	Company      *CompanyRepository
	User         *UserRepository
	Role         *RoleRepository
	Veterinarian *VeterinarianRepository
}

// NewRepositories 创建管理模块仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenant:       NewTenantRepository(db),
		Company:      NewCompanyRepository(db),
		User:         NewUserRepository(db),
		Role:         NewRoleRepository(db),
		Veterinarian: NewVeterinarianRepository(db),
	}
}
