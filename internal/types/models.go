package types

// Speaker is the normalized party label for an utterance. Calls are modeled
// as exactly two parties.
type Speaker string

const (
	SpeakerAgent    Speaker = "AGENT"
	SpeakerCustomer Speaker = "CUSTOMER"
)

// RawFragment is one speaker-tagged, time-stamped piece of transcript as
// delivered by the diarization collaborator. SpeakerTag is an opaque cluster
// id (e.g. "SPEAKER_00") with no stability guarantee.
type RawFragment struct {
	SpeakerTag string  `json:"speaker_tag"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
}

// Utterance is one continuous speaker turn. Produced by the diarization
// reconciler; after PII redaction only Text is ever rewritten.
type Utterance struct {
	Speaker    Speaker `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Duration returns the spoken span of the utterance in seconds.
func (u Utterance) Duration() float64 { return u.End - u.Start }

// Audio quality enums carried through from the audio analysis collaborator.
const (
	NoiseLow    = "low"
	NoiseMedium = "medium"
	NoiseHigh   = "high"

	StabilityLow    = "low"
	StabilityMedium = "medium"
	StabilityHigh   = "high"

	NaturalnessNormal     = "normal"
	NaturalnessSuspicious = "suspicious"
)

// CallContext carries the detected language and coarse audio-quality
// indicators for one call, unchanged through the pipeline.
type CallContext struct {
	Language          string `json:"call_language"`
	NoiseLevel        string `json:"noise_level"`
	CallStability     string `json:"call_stability"`
	SpeechNaturalness string `json:"speech_naturalness"`

	// DetectionDegraded is set when language detection fell back to the
	// default backend; downstream confidence is dampened accordingly.
	DetectionDegraded bool `json:"-"`
}

// Intent label enum.
const (
	IntentRepaymentPromise = "repayment_promise"
	IntentRepaymentDelay   = "repayment_delay"
	IntentRefusal          = "refusal"
	IntentDeflection       = "deflection"
	IntentInfoSeeking      = "information_seeking"
	IntentDispute          = "dispute"
	IntentUnknown          = "unknown"
)

// Sentiment label enum.
const (
	SentimentCalm       = "calm"
	SentimentNeutral    = "neutral"
	SentimentStressed   = "stressed"
	SentimentAnxious    = "anxious"
	SentimentFrustrated = "frustrated"
	SentimentEvasive    = "evasive"
)

// Conditionality level enum.
const (
	ConditionalityLow    = "low"
	ConditionalityMedium = "medium"
	ConditionalityHigh   = "high"
)

// Obligation strength enum. Always derived locally, never delegated.
const (
	ObligationStrong      = "strong"
	ObligationWeak        = "weak"
	ObligationConditional = "conditional"
	ObligationNone        = "none"
)

// Intent is the classified customer intent with its conditionality.
type Intent struct {
	Label          string  `json:"label"`
	Confidence     float64 `json:"confidence"`
	Conditionality string  `json:"conditionality"`
}

// Sentiment is the classified customer sentiment.
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Entities holds the two structured entities extracted from customer speech.
// Both are genuinely optional and serialize as null when absent.
type Entities struct {
	PaymentCommitment *string  `json:"payment_commitment"`
	AmountMentioned   *float64 `json:"amount_mentioned"`
}

// SignalBundle is the per-call aggregate of classified behavioral signals,
// derived once from CUSTOMER utterances and never mutated afterwards.
type SignalBundle struct {
	Intent                 Intent    `json:"intent"`
	Sentiment              Sentiment `json:"sentiment"`
	ObligationStrength     string    `json:"obligation_strength"`
	ContradictionsDetected bool      `json:"contradictions_detected"`
	Entities               Entities  `json:"entities"`

	// DegradedDimensions names signal dimensions that fell back to their
	// neutral default because a collaborator failed or returned
	// out-of-domain output. Reduces scoring confidence downstream.
	DegradedDimensions []string `json:"-"`
}

// Fraud likelihood buckets.
const (
	LikelihoodLow    = "low"
	LikelihoodMedium = "medium"
	LikelihoodHigh   = "high"
)

// RiskAssessment is the reproducible scoring output, a pure function of
// SignalBundle + CallContext. KeyRiskFactors feeds flag and summary
// derivation; the output document carries only the first three fields (see
// InsightsRiskAssessment).
type RiskAssessment struct {
	RiskScore       int      `json:"risk_score"`
	FraudLikelihood string   `json:"fraud_likelihood"`
	Confidence      float64  `json:"confidence"`
	KeyRiskFactors  []string `json:"key_risk_factors"`
}
