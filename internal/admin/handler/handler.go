package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/admin/service"
)

// Handlers 管理域处理器集合
type Handlers struct {
	Auth         *AuthHandler
	Tenant       *TenantHandler
	User         *UserHandler
	Role         *RoleHandler
	Company      *CompanyHandler
	Veterinarian *VeterinarianHandler
}

// NewHandlers 创建管理域处理器集合
func NewHandlers(
	authSvc *service.AuthService,
	tenantSvc *service.TenantService,
	userSvc *service.UserService,
	roleSvc *service.RoleService,
	companySvc *service.CompanyService,
	vetSvc *service.VeterinarianService,
) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(authSvc),
		Tenant:       NewTenantHandler(tenantSvc),
		User:         NewUserHandler(userSvc),
		Role:         NewRoleHandler(roleSvc),
		Company:      NewCompanyHandler(companySvc),
		Veterinarian: NewVeterinarianHandler(vetSvc),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetUserName(c *gin.Context) string {
	name, _ := c.Get("user_name")
	if n, ok := name.(string); ok {
		return n
	}
	return ""
}

func GetTenantID(c *gin.Context) string {
	tenant, _ := c.Get("tenant")
	if t, ok := tenant.(string); ok {
		return t
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func TotalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
