package models

// FraudPattern is a static catalog entry describing a known jeonse
// fraud archetype. The catalog is pure configuration data; both
// analysis paths score against it.
type FraudPattern struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// defaultCatalog is versioned data: ids are stable keys that downstream
// checklist UIs map to remediation guidance, so entries are keyed by id,
// never by index. Keywords are matched against normalized (lowercased)
// text, so latin keywords must be lowercase here.
var defaultCatalog = []FraudPattern{
	{
		ID:          "excessive-jeonse-ratio",
		Name:        "깡통전세 (보증금 미반환 위험)",
		Description: "전세보증금이 매매가에 근접하거나 초과하여 경매 시 보증금 회수가 어려운 유형",
		Keywords:    []string{"깡통전세", "전세가율", "매매가 대비"},
		RiskLevel:   RiskLevelCritical,
	},
	{
		ID:          "owner-mismatch",
		Name:        "소유자·임대인 불일치",
		Description: "등기부등본상 소유자와 계약서상 임대인이 다른 경우",
		Keywords:    []string{"소유자 불일치", "실소유자", "명의자"},
		RiskLevel:   RiskLevelHigh,
	},
	{
		ID:          "missing-insurance",
		Name:        "보증보험 미가입",
		Description: "전세보증금 반환보증(HUG/SGI)에 가입할 수 없거나 가입하지 않은 경우",
		Keywords:    []string{"보증보험", "반환보증", "hug", "sgi"},
		RiskLevel:   RiskLevelHigh,
	},
	{
		ID:          "senior-liens",
		Name:        "과도한 선순위 담보",
		Description: "근저당 등 선순위 채권이 많아 임차인의 보증금 회수 순위가 밀리는 경우",
		Keywords:    []string{"근저당", "선순위", "채권최고액"},
		RiskLevel:   RiskLevelCritical,
	},
	{
		ID:          "forged-poa",
		Name:        "위임장 위조·대리인 계약",
		Description: "위조된 위임장을 이용해 소유자 동의 없이 대리인이 계약을 체결하는 유형",
		Keywords:    []string{"위임장", "대리인", "인감증명"},
		RiskLevel:   RiskLevelCritical,
	},
	{
		ID:          "double-contract",
		Name:        "이중계약",
		Description: "같은 집에 대해 복수의 임차인과 중복으로 계약을 체결하는 유형",
		Keywords:    []string{"이중계약", "중복계약"},
		RiskLevel:   RiskLevelCritical,
	},
	{
		ID:          "broker-collusion",
		Name:        "중개사·임대인 공모",
		Description: "공인중개사, 임대인, 명의자 등이 조직적으로 공모하는 기획 사기 유형",
		Keywords:    []string{"공인중개사", "중개보조원", "명의신탁"},
		RiskLevel:   RiskLevelHigh,
	},
	{
		ID:          "post-contract-lien",
		Name:        "계약 후 담보 설정",
		Description: "계약 직후 전입신고·확정일자 전에 대출을 받아 선순위 담보를 설정하는 유형",
		Keywords:    []string{"전입신고", "확정일자", "추가 대출"},
		RiskLevel:   RiskLevelMedium,
	},
}

// DefaultCatalog returns the fraud pattern catalog. Callers get a copy
// of the slice header; entries themselves are treated as immutable.
func DefaultCatalog() []FraudPattern {
	catalog := make([]FraudPattern, len(defaultCatalog))
	copy(catalog, defaultCatalog)
	return catalog
}

// CatalogSize is the number of archetypes in the catalog. Document
// analyses always produce exactly this many fraud checks.
func CatalogSize() int {
	return len(defaultCatalog)
}
