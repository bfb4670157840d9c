package services

import (
	"regexp"
	"strconv"
	"strings"

	"jeonseguard/internal/domain/models"
)

// Labeled value shapes as they appear in normalized OCR text, e.g.
// "보증금: 200,000,000" or "임대인 홍길동". OCR quality varies, so every
// extraction is best-effort: a miss is a nil field, never an error.
const (
	labelSep   = `\s*[:：]?\s*`
	amountExpr = `([0-9][0-9,]*)`
	nameExpr   = `([가-힣a-z][가-힣a-z()]*)`
	dateExpr   = `(\d{4}\s*[.\-/년]\s*\d{1,2}\s*[.\-/월]\s*\d{1,2}\s*일?)`
)

// FieldExtractor performs labeled-regex extraction of contract and
// registry fields from normalized text.
type FieldExtractor struct {
	deposit     *regexp.Regexp
	marketPrice *regexp.Regexp
	mortgage    *regexp.Regexp
	landlord    *regexp.Regexp
	tenant      *regexp.Regexp
	address     *regexp.Regexp
	period      *regexp.Regexp
}

// NewFieldExtractor creates a FieldExtractor with all patterns compiled
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{
		deposit:     regexp.MustCompile(`보증금` + labelSep + amountExpr),
		marketPrice: regexp.MustCompile(`(?:매매가|시세)` + labelSep + amountExpr),
		mortgage:    regexp.MustCompile(`(?:채권최고액|근저당)` + labelSep + amountExpr),
		landlord:    regexp.MustCompile(`임대인` + labelSep + nameExpr),
		tenant:      regexp.MustCompile(`임차인` + labelSep + nameExpr),
		address:     regexp.MustCompile(`(?:소재지|주소)` + labelSep + `([^,\n]{2,60})`),
		period:      regexp.MustCompile(`(?:임대차\s*기간|계약\s*기간)` + labelSep + dateExpr + `\s*[~부]\s*(?:터\s*)?` + dateExpr),
	}
}

// ExtractLabeled returns the first value following the given label, or
// nil when the label does not appear. Only the first mention is
// captured; later mentions with different values are ignored.
func (e *FieldExtractor) ExtractLabeled(text, label string) *string {
	if text == "" || label == "" {
		return nil
	}
	re, err := regexp.Compile(regexp.QuoteMeta(strings.ToLower(label)) + labelSep + `(\S+)`)
	if err != nil {
		return nil
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := m[1]
	return &v
}

// ExtractAmount returns the raw digit string (commas preserved) after a
// money label, or nil when absent. Parsing the amount is the caller's
// responsibility.
func (e *FieldExtractor) ExtractAmount(text, label string) *string {
	if text == "" || label == "" {
		return nil
	}
	re, err := regexp.Compile(regexp.QuoteMeta(strings.ToLower(label)) + labelSep + amountExpr)
	if err != nil {
		return nil
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := m[1]
	return &v
}

// Extract pulls all known fields from normalized document text
func (e *FieldExtractor) Extract(text string) *models.ExtractedFields {
	fields := &models.ExtractedFields{}
	if text == "" {
		return fields
	}

	fields.Landlord = firstMatch(e.landlord, text)
	fields.Tenant = firstMatch(e.tenant, text)
	fields.Address = firstMatch(e.address, text)

	if raw := firstMatch(e.deposit, text); raw != nil {
		fields.Deposit = ParseWon(*raw)
	}
	if raw := firstMatch(e.marketPrice, text); raw != nil {
		fields.MarketPrice = ParseWon(*raw)
	}
	if raw := firstMatch(e.mortgage, text); raw != nil {
		fields.MortgageAmount = ParseWon(*raw)
	}

	if m := e.period.FindStringSubmatch(text); len(m) >= 3 {
		start, end := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		fields.StartDate = &start
		fields.EndDate = &end
	}

	if strings.Contains(text, "보증보험") || strings.Contains(text, "반환보증") {
		t := true
		fields.HasInsurance = &t
	}
	if strings.Contains(text, "대리인") || strings.Contains(text, "위임장") {
		t := true
		fields.IsProxy = &t
	}

	return fields
}

// ParseWon parses a comma-grouped digit string into KRW won. Returns
// nil when the string is not a plain number.
func ParseWon(raw string) *int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return nil
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}
