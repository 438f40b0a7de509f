package model

// InvoiceType selects which VAT invoice layout the OCR service recognizes.
type InvoiceType string

const (
	// InvoiceTypeNormal covers ordinary, special and electronic VAT invoices.
	InvoiceTypeNormal InvoiceType = "normal"
	// InvoiceTypeRoll covers roll (till receipt) VAT invoices.
	InvoiceTypeRoll InvoiceType = "roll"
)

// Valid reports whether t is a known invoice type. The empty value is
// accepted and means InvoiceTypeNormal.
func (t InvoiceType) Valid() bool {
	switch t {
	case "", InvoiceTypeNormal, InvoiceTypeRoll:
		return true
	default:
		return false
	}
}

// OrDefault returns t, or InvoiceTypeNormal when t is empty.
func (t InvoiceType) OrDefault() InvoiceType {
	if t == "" {
		return InvoiceTypeNormal
	}
	return t
}
