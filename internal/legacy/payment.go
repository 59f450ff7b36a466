package legacy

import "strings"

// PaymentMethod is the destination payment method code.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodCard        PaymentMethod = "card"
	MethodCheck       PaymentMethod = "check"
	MethodContactless PaymentMethod = "contactless"
	MethodGiftCard    PaymentMethod = "gift_card"
	MethodOther       PaymentMethod = "other"
)

// paymentMethods maps legacy mode_id values to destination methods.
var paymentMethods = map[string]PaymentMethod{
	"1": MethodCash,        // Espèces
	"2": MethodCard,        // CB
	"3": MethodOther,       // Gratuit
	"4": MethodCheck,       // Chèque
	"5": MethodCard,        // Amex
	"6": MethodContactless, // Sans contact
	"7": MethodGiftCard,    // Chèques cadeau
	"8": MethodOther,       // Bons ArtiCom
}

// MethodFor maps a legacy payment mode code. Unknown codes fall into
// MethodOther.
func MethodFor(code string) PaymentMethod {
	if m, ok := paymentMethods[strings.TrimSpace(code)]; ok {
		return m
	}
	return MethodOther
}
