package core

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxClientLen   = 100
	maxServicesLen = 500
)

// FieldExtractor runs ordered, multi-strategy passes over decoded document
// text to populate the invoice fields. Classification is layered on top by
// the pipeline.
type FieldExtractor struct {
	dates *DateResolver
}

func NewFieldExtractor(dates *DateResolver) *FieldExtractor {
	return &FieldExtractor{dates: dates}
}

// Extract populates every field except invoice type and frequency. Dates are
// left as zero values when no token resolves; the pipeline applies defaults.
func (e *FieldExtractor) Extract(text, originalFilename string) InvoiceFields {
	f := InvoiceFields{
		InvoiceNumber: extractInvoiceNumber(text),
		Currency:      extractCurrency(text),
		AmountDue:     ResolveAmount(text),
	}

	f.Client = e.extractClient(text, originalFilename)
	f.Services = extractServices(text)
	f.CustomerContract = firstSubmatch(customerContractPattern, text)
	f.OracleContract = firstSubmatch(oracleContractPattern, text)
	f.PONumber = firstSubmatch(poNumberPattern, text)

	f.InvoiceDate, f.DueDate = e.extractDates(text, f.InvoiceNumber)
	return f
}

// ── invoice number ────────────────────────────────────────────────────────────

var invoiceNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)invoice\s*(?:#|no\.?|number)\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]*)`),
	regexp.MustCompile(`(?i)tax\s+invoice\s*:?\s*#?\s*([A-Za-z0-9][A-Za-z0-9-]*)`),
	regexp.MustCompile(`(?i)\binvoice\s+([A-Za-z0-9][A-Za-z0-9-]*)`),
}

var containsDigit = regexp.MustCompile(`\d`)

func extractInvoiceNumber(text string) string {
	for _, p := range invoiceNumberPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		token := strings.TrimSpace(m[1])
		// "Invoice Total: ..." would otherwise yield the token "Total".
		if !containsDigit.MatchString(token) || strings.EqualFold(token, "Total") {
			continue
		}
		return token
	}
	return ""
}

// ── dates ─────────────────────────────────────────────────────────────────────

var dateTokenPattern = regexp.MustCompile(`\b\d{1,2}[-/ ][A-Za-z]{3,9}\.?[-/ ]\d{2,4}\b|\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)

// extractDates resolves the first two date tokens in order of appearance.
// A single token serves as both invoice date and due date.
func (e *FieldExtractor) extractDates(text, invoiceNumber string) (invoiceDate, dueDate time.Time) {
	var resolved []time.Time
	for _, token := range dateTokenPattern.FindAllString(text, -1) {
		if d, ok := e.dates.Resolve(token, invoiceNumber); ok {
			resolved = append(resolved, d)
			if len(resolved) == 2 {
				break
			}
		}
	}
	switch len(resolved) {
	case 1:
		return resolved[0], resolved[0]
	case 2:
		return resolved[0], resolved[1]
	}
	return time.Time{}, time.Time{}
}

// ── client name ───────────────────────────────────────────────────────────────

var (
	billToBlockPattern = regexp.MustCompile(`(?is)bill\s*to:?\s*(.*?)(?:transaction\s+type|description|week\s+ending|\z)`)
	labeledClient      = regexp.MustCompile(`(?i)(?:customer|client|company)(?:\s+name)?\s*:\s*([^\r\n]+)`)
	afterToLabel       = regexp.MustCompile(`(?im)^to:\s*\n\s*([^\r\n]+)`)
	filenameClient     = regexp.MustCompile(`([A-Za-z][A-Za-z &]{5,})_`)

	corporateSuffix  = regexp.MustCompile(`(?i)^(?:pty\.?(?:\s+ltd\.?)?|ltd\.?|limited|inc\.?|llc|plc)$`)
	fieldNameLooking = regexp.MustCompile(`(?i)^(?:name|number|no\.?|id|code|address|date)\b\s*:?\s*$`)
	nonNameChars     = regexp.MustCompile(`[^a-zA-Z0-9 &]`)
)

// clientNoisePatterns filters address and routing lines inside a BILL TO
// block. Order does not matter; any match disqualifies the line.
var clientNoisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^attn\b`),
	regexp.MustCompile(`(?i)^p\.?o\.?\s*box`),
	regexp.MustCompile(`(?i)^c/o\b`),
	regexp.MustCompile(`^[A-Z]{2}$`),
	regexp.MustCompile(`(?i)^ship\s*to`),
	regexp.MustCompile(`^\d{4,5}$`),
	regexp.MustCompile(`(?i)^[a-z][a-z .'-]*,?\s+\d{4,5}$`),
	regexp.MustCompile(`(?i)^gpo\s*box`),
	regexp.MustCompile(`(?i)^(?:department|dept\.?)\s+of\b`),
	regexp.MustCompile(`(?i)\d+\s+\w+\s+(?:street|st|road|rd|avenue|ave|drive|dr|lane|ln|court|ct|boulevard|blvd|way|place|pl)\b`),
	regexp.MustCompile(`^\d`),
	regexp.MustCompile(`(?i)^(?:sydney|melbourne|brisbane|perth|adelaide|canberra|darwin|hobart|singapore|london|new york)\b`),
}

// extractClient runs the cascading client-name strategies; first success wins.
// The BILL TO strategy keeps its candidate as-is (names there legitimately
// contain punctuation); later strategies strip non-name characters.
func (e *FieldExtractor) extractClient(text, originalFilename string) string {
	if c := clientFromBillTo(text); c != "" {
		return truncate(c, maxClientLen)
	}
	if m := labeledClient.FindStringSubmatch(text); m != nil {
		c := cleanClientName(m[1])
		if len(c) >= 3 {
			return truncate(c, maxClientLen)
		}
	}
	if m := afterToLabel.FindStringSubmatch(text); m != nil {
		c := cleanClientName(m[1])
		if len(c) >= 3 {
			return truncate(c, maxClientLen)
		}
	}
	if m := filenameClient.FindStringSubmatch(originalFilename); m != nil {
		c := cleanClientName(m[1])
		if len(c) >= 3 {
			return truncate(c, maxClientLen)
		}
	}
	return UnknownClient
}

func clientFromBillTo(text string) string {
	m := billToBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	lines := strings.Split(m[1], "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, "Minister for Health"); idx >= 0 {
			// Legacy alias lines prefix the real entity; keep from the
			// entity name onward.
			name := line[idx:]
			return appendContinuation(name, lines, i+1)
		}
		if isClientNoise(line) || len(line) <= 3 {
			continue
		}
		return appendContinuation(line, lines, i+1)
	}
	return ""
}

// appendContinuation joins a follow-on line when it completes the entity name
// ("Health" after a department split, or a trailing corporate suffix).
func appendContinuation(name string, lines []string, next int) string {
	for ; next < len(lines); next++ {
		cont := strings.TrimSpace(lines[next])
		if cont == "" {
			continue
		}
		if strings.EqualFold(cont, "Health") || corporateSuffix.MatchString(cont) {
			return name + " " + cont
		}
		break
	}
	return name
}

func isClientNoise(line string) bool {
	for _, p := range clientNoisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// looksLikeFieldName rejects label captures such as "Customer: Name" where the
// "name" is really the next field header.
func cleanClientName(raw string) string {
	c := strings.TrimSpace(raw)
	if fieldNameLooking.MatchString(c) || strings.Contains(c, ":") {
		return ""
	}
	c = nonNameChars.ReplaceAllString(c, " ")
	c = strings.Join(strings.Fields(c), " ")
	return c
}

// truncate caps s at n bytes without splitting a multi-byte rune. Client
// names from the BILL TO strategy pass through unsanitized and can carry
// non-ASCII text.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}

// ── currency ──────────────────────────────────────────────────────────────────

var isoCurrencyPattern = regexp.MustCompile(`\b(` + strings.Join(SupportedCurrencies, "|") + `)\b`)

func extractCurrency(text string) string {
	if m := isoCurrencyPattern.FindString(text); m != "" {
		return m
	}
	switch {
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(text, "$") && strings.Contains(strings.ToUpper(text), "AUD"):
		return "AUD"
	}
	return DefaultCurrency
}

// ── contract / PO numbers ─────────────────────────────────────────────────────

var (
	customerContractPattern = regexp.MustCompile(`(?i)(?:customer\s+contract|contract\s*#)\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]*)`)
	oracleContractPattern   = regexp.MustCompile(`(?i)oracle\s+contract\s*(?:#|no\.?)?\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]*)`)
	poNumberPattern         = regexp.MustCompile(`(?i)(?:po\s+number\s*:?|\bpo\s*:)\s*([A-Za-z0-9][A-Za-z0-9-]*)`)
)

func firstSubmatch(p *regexp.Regexp, text string) string {
	if m := p.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ── service description ───────────────────────────────────────────────────────

// serviceCapturePatterns are tried in order: the full line-item table header
// first, then simple label captures, then the generic span between the
// transaction-type header and the subtotal.
var serviceCapturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)description.{0,120}?week\s+ending\s+date.{0,120}?qty.{0,120}?uom.{0,120}?unit\s+price.{0,120}?taxable.{0,120}?extended\s+price\s*(.{1,1000}?)(?:item\s+subtotal|special\s+instructions|page\s+\d+|\z)`),
	regexp.MustCompile(`(?is)(?:description|services)\s*:\s*(.{1,800}?)(?:\n\s*\n|\z)`),
	regexp.MustCompile(`(?is)transaction\s+type\s*(.{1,1000}?)(?:item\s+subtotal|\z)`),
}

var (
	serviceHeaderRemnants = regexp.MustCompile(`(?i)\b(?:week\s+ending\s+date|unit\s+price|extended\s+price|qty|uom|taxable)\b`)
	lineItemNoise         = regexp.MustCompile(`(?i)\b(?:yes|no)\s+\$\d[\d,]*(?:\.\d{2})?\b`)
	addressBoilerplate    = regexp.MustCompile(`(?i)bill\s*to|ship\s*to|attn:|gpo\s*box|department\s+of\s+health`)
	serviceKeyword        = regexp.MustCompile(`(?i)professional\s+services|subscription|maintenance|support|license|training|implementation|integration|annual|monthly`)
)

func extractServices(text string) string {
	for _, p := range serviceCapturePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		captured := cleanServices(m[1])
		if captured == "" {
			continue
		}
		if rejectServices(captured) {
			break
		}
		return truncate(captured, maxServicesLen)
	}
	return NoServiceDescription
}

func cleanServices(s string) string {
	s = serviceHeaderRemnants.ReplaceAllString(s, " ")
	s = lineItemNoise.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// rejectServices discards captures whose opening looks like address
// boilerplate unless a service keyword appears anywhere in the capture.
func rejectServices(s string) bool {
	head := s
	if len(head) > 200 {
		head = head[:200]
	}
	return addressBoilerplate.MatchString(head) && !serviceKeyword.MatchString(s)
}
