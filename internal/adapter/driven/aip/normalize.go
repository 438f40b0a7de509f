package aip

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// Normalize returns a copy of raw with every key rewritten from the service's
// snake_case or PascalCase convention to lowerCamelCase. Objects nested in raw,
// including objects inside arrays, are normalized the same way. raw is never
// modified.
//
// When two source keys map to the same normalized key, the one already in
// normalized form wins; otherwise the lexically first source key wins.
func Normalize(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(raw))
	for _, k := range keys {
		if normalizeKey(k) == k {
			out[k] = normalizeValue(raw[k])
		}
	}
	for _, k := range keys {
		nk := normalizeKey(k)
		if nk == k {
			continue
		}
		if _, taken := out[nk]; taken {
			continue
		}
		out[nk] = normalizeValue(raw[k])
	}

	return out
}

func normalizeKey(k string) string {
	return strcase.ToLowerCamel(k)
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Normalize(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return v
	}
}

// fieldRule is one endpoint-specific rewrite applied to an already normalized
// block. Rules never fail; a malformed field degrades to a default.
type fieldRule struct {
	name  string
	apply func(fields map[string]any)
}

// invoiceRules run in order over the normalized words_result block.
var invoiceRules = []fieldRule{
	{name: "join commodity names", apply: joinCommodityNames},
	{name: "total amount and tax", apply: alias("totalAmountAndTax", "amountInFiguers")},
	{name: "invoice date", apply: normalizeInvoiceDate},
	{name: "remark", apply: alias("remark", "remarks")},
	{name: "total tax", apply: parseTotalTax},
}

// normalizeInvoiceFields normalizes the raw words_result block and applies
// invoiceRules to the copy.
func normalizeInvoiceFields(raw map[string]any) map[string]any {
	fields := Normalize(raw)
	if fields == nil {
		fields = map[string]any{}
	}
	for _, rule := range invoiceRules {
		rule.apply(fields)
	}
	return fields
}

// joinCommodityNames collapses the per-row [{row, word}] list into one
// newline-separated string. Any other shape is left alone.
func joinCommodityNames(fields map[string]any) {
	entries, ok := fields["commodityName"].([]any)
	if !ok {
		return
	}

	words := make([]string, 0, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			words = append(words, stringValue(e))
			continue
		}
		words = append(words, stringValue(entry["word"]))
	}
	fields["commodityName"] = strings.Join(words, "\n")
}

// alias copies src to dst when src is present. src is kept.
func alias(dst, src string) func(map[string]any) {
	return func(fields map[string]any) {
		if v, ok := fields[src]; ok {
			fields[dst] = v
		}
	}
}

var invoiceDateReplacer = strings.NewReplacer("年", "-", "月", "-", "日", "")

// normalizeInvoiceDate turns "2023年05月01日" into "2023-05-01".
func normalizeInvoiceDate(fields map[string]any) {
	if s, ok := fields["invoiceDate"].(string); ok {
		fields["invoiceDate"] = invoiceDateReplacer.Replace(s)
	}
}

// parseTotalTax stores totalTax as a float64, defaulting to 0 when the field
// is missing or not a finite number.
func parseTotalTax(fields map[string]any) {
	fields["totalTax"] = floatValue(fields["totalTax"])
}

// leadingNumber matches the decimal prefix of amounts such as "13.00元".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// floatValue reads a numeric field. Strings are parsed up to the first
// character that cannot continue a decimal number; anything without a
// numeric prefix, NaN or Inf yields 0.
func floatValue(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(leadingNumber.FindString(strings.TrimSpace(n)), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
