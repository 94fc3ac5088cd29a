package enums

import "fmt"

// PaymentMethod describes how a check is settled at the register.
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "dinheiro"
	PaymentMethodCredit     PaymentMethod = "cartao_credito"
	PaymentMethodDebit      PaymentMethod = "cartao_debito"
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodMealTicket PaymentMethod = "vr"
	PaymentMethodFoodTicket PaymentMethod = "alimentacao"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCredit,
	PaymentMethodDebit,
	PaymentMethodPix,
	PaymentMethodMealTicket,
	PaymentMethodFoodTicket,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
