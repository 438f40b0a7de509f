package model

import (
	"strings"
	"time"
)

// VatInvoiceParams selects the document to recognize. Exactly one source must
// be set: Image, URL, or a PDF given either inline (PDF) or by URL (PDFURL).
type VatInvoiceParams struct {
	Image  []byte
	URL    string
	PDF    []byte
	PDFURL string
	Type   InvoiceType
}

// Validate checks the single-source rule and the invoice type.
func (p VatInvoiceParams) Validate() error {
	sources := 0
	if len(p.Image) > 0 {
		sources++
	}
	if strings.TrimSpace(p.URL) != "" {
		sources++
	}
	if len(p.PDF) > 0 {
		sources++
	}
	if strings.TrimSpace(p.PDFURL) != "" {
		sources++
	}
	if sources != 1 {
		return ErrInvalidInvoiceSource
	}
	if !p.Type.Valid() {
		return ErrInvalidInvoiceType
	}
	return nil
}

// VatInvoice holds the fields extracted from a VAT invoice.
type VatInvoice struct {
	InvoiceType          string  `json:"invoiceType"`
	MachineCode          string  `json:"machineCode"`
	InvoiceCode          string  `json:"invoiceCode"`
	InvoiceNum           string  `json:"invoiceNum"`
	InvoiceDate          string  `json:"invoiceDate"` // YYYY-MM-DD
	CheckCode            string  `json:"checkCode"`
	Password             string  `json:"password"`
	PurchaserName        string  `json:"purchaserName"`
	PurchaserRegisterNum string  `json:"purchaserRegisterNum"`
	PurchaserAddress     string  `json:"purchaserAddress"`
	PurchaserBank        string  `json:"purchaserBank"`
	SellerName           string  `json:"sellerName"`
	SellerRegisterNum    string  `json:"sellerRegisterNum"`
	SellerAddress        string  `json:"sellerAddress"`
	SellerBank           string  `json:"sellerBank"`
	TotalAmount          string  `json:"totalAmount"`
	TotalTax             float64 `json:"totalTax"`
	TotalAmountAndTax    string  `json:"totalAmountAndTax"`
	AmountInWords        string  `json:"amountInWords"`
	Payee                string  `json:"payee"`
	Checker              string  `json:"checker"`
	NoteDrawer           string  `json:"noteDrawer"`
	CommodityName        string  `json:"commodityName"` // One line per commodity row.
	Remark               string  `json:"remark"`
}

// InvoiceResult is either a VatInvoice or an ErrorEnvelope, never both.
// Fields holds the normalized extracted-fields block on success.
type InvoiceResult struct {
	Invoice *VatInvoice
	LogID   int64
	Error   *ErrorEnvelope
	Fields  map[string]any
}

// Failed reports whether the service answered with an error envelope.
func (r InvoiceResult) Failed() bool {
	return r.Error != nil
}

// Err returns the error envelope as an error, or nil on success.
func (r InvoiceResult) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// InvoiceRecord is a recognized invoice kept in the local history.
type InvoiceRecord struct {
	ID                int64
	InvoiceCode       string
	InvoiceNum        string
	InvoiceType       string
	InvoiceDate       string
	SellerName        string
	PurchaserName     string
	TotalAmount       string
	TotalTax          float64
	TotalAmountAndTax string
	LogID             int64
	Fields            map[string]any
	RecognizedAt      time.Time
}
