package domain

import "errors"

var (
	ErrAccountNotFound        = errors.New("conta não encontrada")
	ErrCustomerNotFound       = errors.New("cliente não encontrado")
	ErrVersionConflict        = errors.New("conta alterada por outra requisição")
	ErrLimitExceeded          = errors.New("pagamento excede o limite")
	ErrInsufficientBalance    = errors.New("saldo insuficiente")
	ErrDuplicateRequest       = errors.New("requisição duplicada")
	ErrOperationNotSupported  = errors.New("operação não suportada para o produto")
	ErrDirectoryUnavailable   = errors.New("serviço de clientes indisponível")
	ErrLedgerUnavailable      = errors.New("serviço de transações indisponível")
	ErrIdempotencyUnavailable = errors.New("controle de idempotência indisponível")
)

// Erros de validação de entrada
var (
	ErrInvalidAmount      = errors.New("o valor deve ser maior que zero")
	ErrNegativeLimit      = errors.New("o limite não pode ser negativo")
	ErrCustomerIDRequired = errors.New("o ID do cliente é obrigatório")
	ErrCardNumberRequired = errors.New("o número do cartão é obrigatório")
	ErrUnknownProductType = errors.New("tipo de produto desconhecido")
)

// IsValidationError indica erros causados pela entrada do cliente
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeLimit) ||
		errors.Is(err, ErrCustomerIDRequired) ||
		errors.Is(err, ErrCardNumberRequired) ||
		errors.Is(err, ErrUnknownProductType) ||
		errors.Is(err, ErrOperationNotSupported)
}
