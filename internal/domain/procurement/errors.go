package procurement

import "github.com/sahelbuild/backend/internal/domain/shared"

// Procurement specific errors
var (
	ErrReceptionAlreadyRecorded = shared.NewDomainError("RECEPTION_ALREADY_RECORDED", "A reception has already been recorded for this shipment")
	ErrExpenseNotFound          = shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense not found on this shipment")
	ErrInvalidTransition        = shared.NewDomainError("INVALID_TRANSITION", "Status transition is not allowed")
	ErrNotSellable              = shared.NewDomainError("NOT_SELLABLE", "Shipment is not available for sale")
)
