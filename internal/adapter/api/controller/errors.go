package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/api/dto"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/branch"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/tenant"
)

// respondDomainError traduz erros de domínio para o código HTTP adequado:
// não encontrado 404, conflito de estado 409, estoque insuficiente 422 e
// validação 400. Erros desconhecidos viram 500.
func respondDomainError(ctx *gin.Context, message string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrStockNotFound),
		errors.Is(err, cashier.ErrSessionNotFound),
		errors.Is(err, cashier.ErrReportNotFound),
		errors.Is(err, sale.ErrNotFound),
		errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, reservation.ErrDepositNotFound),
		errors.Is(err, tenant.ErrNotFound),
		errors.Is(err, branch.ErrNotFound):
		status = http.StatusNotFound

	case errors.Is(err, cashier.ErrSessionAlreadyOpen),
		errors.Is(err, cashier.ErrSessionClosed),
		errors.Is(err, reservation.ErrInvalidState):
		status = http.StatusConflict

	case errors.Is(err, product.ErrInsufficientStock):
		status = http.StatusUnprocessableEntity

	case errors.Is(err, product.ErrInvalidQuantity),
		errors.Is(err, cashier.ErrInvalidAmount),
		errors.Is(err, cashier.ErrEmptyReason),
		errors.Is(err, sale.ErrNoItems),
		errors.Is(err, sale.ErrInvalidQuantity),
		errors.Is(err, sale.ErrInvalidPayment),
		errors.Is(err, sale.ErrNegativePrice),
		errors.Is(err, reservation.ErrNoItems),
		errors.Is(err, reservation.ErrInvalidQuantity),
		errors.Is(err, reservation.ErrInvalidExpiry),
		errors.Is(err, reservation.ErrInvalidDeposit),
		errors.Is(err, product.ErrEmptyTenantID),
		errors.Is(err, product.ErrEmptySKU),
		errors.Is(err, product.ErrEmptyName),
		errors.Is(err, tenant.ErrEmptyName),
		errors.Is(err, tenant.ErrEmptyDocument),
		errors.Is(err, branch.ErrEmptyName),
		errors.Is(err, branch.ErrEmptyTenantID):
		status = http.StatusBadRequest
	}

	ctx.JSON(status, dto.NewErrorResponse(status, message, err.Error()))
}
