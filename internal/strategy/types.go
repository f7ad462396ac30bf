// Package strategy defines the context strategy documents exchanged
// between the observer and the tuner, and the arm decision rule applied
// to them. The JSON field names here are a wire contract with the
// orchestrator and must not drift.
package strategy

// Sentinel labels used when a session's bucket cannot be attributed.
const (
	UnknownModel  = "(unknown)"
	NoneTaskClass = "(none)"
)

// Arm names an operating strategy the orchestrator applies to a bucket.
type Arm string

const (
	// ArmPassthrough disables managed intervention entirely.
	ArmPassthrough Arm = "passthrough"
	// ArmHybrid keeps partial management in place.
	ArmHybrid Arm = "hybrid"
	// ArmManaged is the full-intervention default.
	ArmManaged Arm = "managed"
)

// Samples carries the raw event counts backing a bucket's rates.
type Samples struct {
	Plans        int `json:"plans"`
	Verification int `json:"verification"`
}

// BucketSummary is the derived per-(model, taskClass) metric record.
// All rate fields lie in [0, 1]; AvgInjectionTokens is unbounded.
type BucketSummary struct {
	Model                   string  `json:"model"`
	TaskClass               string  `json:"taskClass"`
	FloorUnmetRate          float64 `json:"floorUnmetRate"`
	InjectionDroppedRate    float64 `json:"injectionDroppedRate"`
	AvgInjectionTokens      float64 `json:"avgInjectionTokens"`
	ZoneAdaptationMoveRatio float64 `json:"zoneAdaptationMoveRatio"`
	VerificationPassRate    float64 `json:"verificationPassRate"`
	QualityProxy            float64 `json:"qualityProxy"`
	Samples                 Samples `json:"samples"`
}

// SummaryDocument is the observer's machine-readable output and the
// tuner's input.
type SummaryDocument struct {
	GeneratedAt  string          `json:"generatedAt"`
	LookbackDays int             `json:"lookbackDays"`
	Buckets      []BucketSummary `json:"buckets"`
}

// OverrideSource identifies this tool in emitted override entries.
const OverrideSource = "tuner"

// OverrideEntry is one time-bounded strategy override. Expiry enforcement
// belongs to the consuming orchestrator, not to this tool.
type OverrideEntry struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	TaskClass string `json:"taskClass"`
	Arm       Arm    `json:"arm"`
	ExpiresAt int64  `json:"expiresAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Source    string `json:"source"`
}

// OverridesVersion is the overrides document schema version.
const OverridesVersion = 1

// OverridesDocument is the tuner's output. Each run emits the complete
// override set; the file is replaced, never merged.
type OverridesDocument struct {
	Version     int             `json:"version"`
	GeneratedAt int64           `json:"generatedAt"`
	Entries     []OverrideEntry `json:"entries"`
}
