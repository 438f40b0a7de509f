package aip

import (
	"encoding/json"
	"strconv"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

// mapErrorEnvelope returns the error envelope carried by a normalized
// response, or nil when errorCode is absent or zero.
func mapErrorEnvelope(fields map[string]any) *model.ErrorEnvelope {
	code := int(int64Value(fields["errorCode"]))
	if code == 0 {
		return nil
	}
	return &model.ErrorEnvelope{
		LogID:     int64Value(fields["logId"]),
		ErrorMsg:  stringValue(fields["errorMsg"]),
		ErrorCode: code,
	}
}

// mapLexer converts a normalized lexer response to a domain model Lexer.
func mapLexer(fields map[string]any) *model.Lexer {
	lexer := &model.Lexer{
		LogID: int64Value(fields["logId"]),
		Text:  stringValue(fields["text"]),
		Items: []model.LexerItem{},
	}

	items, _ := fields["items"].([]any)
	for _, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		lexer.Items = append(lexer.Items, model.LexerItem{
			ByteLength: int(int64Value(item["byteLength"])),
			ByteOffset: int(int64Value(item["byteOffset"])),
			Formal:     stringValue(item["formal"]),
			Item:       stringValue(item["item"]),
			NE:         stringValue(item["ne"]),
			POS:        stringValue(item["pos"]),
			URI:        stringValue(item["uri"]),
			LocDetails: stringSlice(item["locDetails"]),
			BasicWords: stringSlice(item["basicWords"]),
		})
	}

	return lexer
}

// mapVatInvoice converts the rule-processed words_result block to a domain
// model VatInvoice.
func mapVatInvoice(fields map[string]any) *model.VatInvoice {
	return &model.VatInvoice{
		InvoiceType:          stringValue(fields["invoiceType"]),
		MachineCode:          stringValue(fields["machineCode"]),
		InvoiceCode:          stringValue(fields["invoiceCode"]),
		InvoiceNum:           stringValue(fields["invoiceNum"]),
		InvoiceDate:          stringValue(fields["invoiceDate"]),
		CheckCode:            stringValue(fields["checkCode"]),
		Password:             stringValue(fields["password"]),
		PurchaserName:        stringValue(fields["purchaserName"]),
		PurchaserRegisterNum: stringValue(fields["purchaserRegisterNum"]),
		PurchaserAddress:     stringValue(fields["purchaserAddress"]),
		PurchaserBank:        stringValue(fields["purchaserBank"]),
		SellerName:           stringValue(fields["sellerName"]),
		SellerRegisterNum:    stringValue(fields["sellerRegisterNum"]),
		SellerAddress:        stringValue(fields["sellerAddress"]),
		SellerBank:           stringValue(fields["sellerBank"]),
		TotalAmount:          stringValue(fields["totalAmount"]),
		TotalTax:             floatValue(fields["totalTax"]),
		TotalAmountAndTax:    stringValue(fields["totalAmountAndTax"]),
		AmountInWords:        stringValue(fields["amountInWords"]),
		Payee:                stringValue(fields["payee"]),
		Checker:              stringValue(fields["checker"]),
		NoteDrawer:           stringValue(fields["noteDrawer"]),
		CommodityName:        stringValue(fields["commodityName"]),
		Remark:               stringValue(fields["remark"]),
	}
}

// stringValue renders scalars as strings; anything else becomes "".
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func int64Value(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, _ := n.Float64()
		return int64(f)
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, elem := range list {
		out = append(out, stringValue(elem))
	}
	return out
}
