package branch

import (
	"context"

	"github.com/gin-gonic/gin"
)

// branchIDKey é a chave usada para armazenar o branch_id no contexto
type branchIDKey struct{}

// BranchMiddleware cria um middleware para capturar o cabeçalho branch-id
func BranchMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		branchID := c.GetHeader("branch-id")
		if branchID != "" {
			c.Set("branch_id", branchID)
			ctx := context.WithValue(c.Request.Context(), branchIDKey{}, branchID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// GetBranchID recupera o branch_id do contexto, se existir
func GetBranchID(ctx context.Context) string {
	if branchID, ok := ctx.Value(branchIDKey{}).(string); ok {
		return branchID
	}
	return ""
}
