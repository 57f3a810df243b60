package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sinkrona/internal/models"

	"gorm.io/gorm"
)

// UserService 用户服务
type UserService struct {
	db *gorm.DB
}

// UserStats 用户统计信息
type UserStats struct {
	TotalUsers    int64            `json:"totalUsers"`
	ActiveUsers   int64            `json:"activeUsers"`
	InactiveUsers int64            `json:"inactiveUsers"`
	ByRole        map[string]int64 `json:"byRole"`
}

// UserFilter 用户列表筛选条件
type UserFilter struct {
	Search string
	Role   string
	Status *bool
	Sort   string
	Order  string
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// 列表排序字段白名单
var userSortColumns = map[string]bool{
	"created_at":    true,
	"username":      true,
	"nama_lengkap":  true,
	"role":          true,
	"last_login_at": true,
}

// Create 创建用户
func (s *UserService) Create(username, password, namaLengkap, email, role string, jabatan, instansi *string) (*models.User, error) {
	if err := s.validateCreateParams(username, password, namaLengkap, role); err != nil {
		return nil, err
	}

	// 检查用户名是否重复
	var count int64
	s.db.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("Username sudah digunakan")
	}

	user := &models.User{
		Username:    username,
		NamaLengkap: namaLengkap,
		Email:       email,
		Role:        strings.ToLower(role),
		Jabatan:     jabatan,
		Instansi:    instansi,
		StatusAktif: true,
	}

	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("gagal mengenkripsi password: %v", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// validateCreateParams 参数校验
func (s *UserService) validateCreateParams(username, password, namaLengkap, role string) error {
	if utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(username) > 50 {
		return fmt.Errorf("Username harus 3-50 karakter")
	}
	if len(password) < 6 {
		return fmt.Errorf("Password minimal 6 karakter")
	}
	if namaLengkap == "" {
		return fmt.Errorf("Nama lengkap wajib diisi")
	}
	// masyarakat只通过公开注册产生，其余角色由管理员分配
	if !models.IsValidRole(role) && !strings.EqualFold(role, models.RoleMasyarakat) {
		return fmt.Errorf("Role tidak valid")
	}
	return nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id_user = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWithFiltersAndPage 组合筛选分页查询
func (s *UserService) GetWithFiltersAndPage(filter UserFilter, page, pageSize int) ([]*models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR nama_lengkap ILIKE ? OR email ILIKE ?", like, like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", strings.ToLower(filter.Role))
	}
	if filter.Status != nil {
		query = query.Where("status_aktif = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := query.Order(orderClause(filter.Sort, filter.Order, userSortColumns)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	return users, total, err
}

// Update 更新用户资料
func (s *UserService) Update(id uint, namaLengkap, email, role string, jabatan, instansi *string, statusAktif *bool) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if role != "" && !models.IsValidRole(role) {
		return nil, fmt.Errorf("Role tidak valid")
	}

	if namaLengkap != "" {
		user.NamaLengkap = namaLengkap
	}
	if email != "" {
		user.Email = email
	}
	if role != "" {
		user.Role = strings.ToLower(role)
	}
	if jabatan != nil {
		user.Jabatan = jabatan
	}
	if instansi != nil {
		user.Instansi = instansi
	}
	if statusAktif != nil {
		user.StatusAktif = *statusAktif
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(id uint, newPassword string) (*models.User, error) {
	if len(newPassword) < 6 {
		return nil, fmt.Errorf("Password minimal 6 karakter")
	}

	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return nil, err
	}
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleStatus 切换激活状态
func (s *UserService) ToggleStatus(id uint) (*models.User, bool, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, false, err
	}

	oldStatus := user.StatusAktif
	user.StatusAktif = !user.StatusAktif
	if err := s.db.Save(user).Error; err != nil {
		return nil, oldStatus, err
	}
	return user, oldStatus, nil
}

// Delete 删除用户
func (s *UserService) Delete(id uint) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(&models.User{}, "id_user = ?", id).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).
		Where("id_user = ?", id).
		Update("last_login_at", &now).Error
}

// IsActive 用户是否处于激活状态
func (s *UserService) IsActive(user *models.User) bool {
	return user.StatusAktif
}

// GetStats 用户统计
func (s *UserService) GetStats() (*UserStats, error) {
	stats := &UserStats{ByRole: make(map[string]int64)}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("status_aktif = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	stats.InactiveUsers = stats.TotalUsers - stats.ActiveUsers

	var byRole []struct {
		Role  string
		Count int64
	}
	err := s.db.Model(&models.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Scan(&byRole).Error
	if err != nil {
		return nil, err
	}
	for _, item := range byRole {
		stats.ByRole[item.Role] = item.Count
	}

	return stats, nil
}

// orderClause 拼接排序子句，列名过白名单，方向只允许ASC/DESC
func orderClause(sort, order string, allowed map[string]bool) string {
	if !allowed[sort] {
		sort = "created_at"
	}
	if strings.ToUpper(order) != "ASC" {
		order = "DESC"
	}
	return sort + " " + strings.ToUpper(order)
}
