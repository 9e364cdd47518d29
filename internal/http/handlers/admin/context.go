package admin

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminUserHeader identifies the acting administrator
const AdminUserHeader = "X-Admin-User"

func getAdminUser(c *gin.Context) string {
	admin := strings.TrimSpace(c.GetHeader(AdminUserHeader))
	if admin == "" {
		return "admin"
	}
	return admin
}
