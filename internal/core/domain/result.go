package domain

// Mensagens devolvidas ao cliente da API
const (
	MsgClientNotFound        = "Client does not exist"
	MsgDuplicatePersonal     = "Personal client already has a personal credit: " + LabelPersonalCredit
	MsgCreditCreated         = "Credit created successfully"
	MsgCreditNotFound        = "Credit does not exist"
	MsgCreditDeleted         = "Credit deleted successfully"
	MsgCreditCardCreated     = "CreditCard created successfully"
	MsgCreditCardNotFound    = "CreditCard does not exist"
	MsgCreditCardDeleted     = "CreditCard deleted successfully"
	MsgPaymentExceedsLimit   = "Payment exceeds the limit"
	MsgInsufficientBalance   = "You don't have enough balance"
	MsgSuccessfulTransaction = "Successful transaction"
	MsgDuplicateRequest      = "Duplicate request"
	MsgConcurrentUpdate      = "Account was modified concurrently, try again"
)

// Outcome classifica o resultado de uma operação para a camada de transporte
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNotFound Outcome = "not_found"
	OutcomeRejected Outcome = "rejected"
	OutcomeConflict Outcome = "conflict"
)

// Result é o envelope de resposta das operações que alteram contas.
// Rejeições de negócio chegam aqui com Account nil, nunca como erro.
type Result struct {
	Account *Account
	Message string
	Outcome Outcome
}

func Succeeded(account *Account, message string) *Result {
	return &Result{Account: account, Message: message, Outcome: OutcomeOK}
}

func NotFound(message string) *Result {
	return &Result{Message: message, Outcome: OutcomeNotFound}
}

func Rejected(message string) *Result {
	return &Result{Message: message, Outcome: OutcomeRejected}
}

func Conflict(message string) *Result {
	return &Result{Message: message, Outcome: OutcomeConflict}
}

// OK indica se a operação foi aceita
func (r *Result) OK() bool {
	return r != nil && r.Outcome == OutcomeOK
}
