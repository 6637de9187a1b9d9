package types

// CallInsights is the locked output document handed to downstream storage,
// retrieval, and reporting collaborators. Every key is always present;
// genuinely absent optional values serialize as null, never omitted. No raw
// or redacted transcript text appears anywhere in this structure.
type CallInsights struct {
	CallContext     InsightsCallContext    `json:"call_context"`
	SpeakerAnalysis SpeakerAnalysis        `json:"speaker_analysis"`
	NLPInsights     NLPInsights            `json:"nlp_insights"`
	RiskSignals     RiskSignals            `json:"risk_signals"`
	RiskAssessment  InsightsRiskAssessment `json:"risk_assessment"`
	SummaryForRAG   string                 `json:"summary_for_rag"`
}

type InsightsCallContext struct {
	CallLanguage string      `json:"call_language"`
	CallQuality  CallQuality `json:"call_quality"`
}

type CallQuality struct {
	NoiseLevel        string `json:"noise_level"`
	CallStability     string `json:"call_stability"`
	SpeechNaturalness string `json:"speech_naturalness"`
}

type SpeakerAnalysis struct {
	CustomerOnlyAnalysis   bool `json:"customer_only_analysis"`
	AgentInfluenceDetected bool `json:"agent_influence_detected"`
}

type NLPInsights struct {
	Intent                 Intent    `json:"intent"`
	Sentiment              Sentiment `json:"sentiment"`
	ObligationStrength     string    `json:"obligation_strength"`
	Entities               Entities  `json:"entities"`
	ContradictionsDetected bool      `json:"contradictions_detected"`
}

type RiskSignals struct {
	AudioTrustFlags []string `json:"audio_trust_flags"`
	BehavioralFlags []string `json:"behavioral_flags"`
}

// InsightsRiskAssessment is the risk_assessment object of the document,
// exactly these three keys. Key risk factors stay internal: they feed the
// behavioral flags and the summary, never the document.
type InsightsRiskAssessment struct {
	RiskScore       int     `json:"risk_score"`
	FraudLikelihood string  `json:"fraud_likelihood"`
	Confidence      float64 `json:"confidence"`
}
