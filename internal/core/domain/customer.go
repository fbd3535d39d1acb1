package domain

// CustomerKind distingue pessoa física de empresa no diretório de clientes
type CustomerKind string

const (
	CustomerPerson  CustomerKind = "person"
	CustomerCompany CustomerKind = "company"
)

// Customer é o perfil retornado pelo diretório de clientes
type Customer struct {
	ID           string
	Kind         CustomerKind
	DisplayName  string
	Document     string
	Email        string
	CustomerType string
}
