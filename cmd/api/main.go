package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"voice-risk-go/internal/config"
	"voice-risk-go/internal/dataset"
	"voice-risk-go/internal/diarize"
	"voice-risk-go/internal/logger"
	"voice-risk-go/internal/pipeline"
	"voice-risk-go/internal/signals"
	"voice-risk-go/internal/summary"
	"voice-risk-go/internal/transcription"
)

// analyzeRequest accepts either pre-diarized fragments (inline Input) or an
// audio_url that is sent through the transcription collaborator first.
type analyzeRequest struct {
	pipeline.Input
	AudioURL string `json:"audio_url,omitempty"`
}

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "voice-risk-go").Info("starting service")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	deps := buildDeps(cfg)
	if deps.Classifier == nil {
		log.Warn("no classifier configured, signal dimensions will use neutral defaults")
	}

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	mux.Handle("/metrics", promhttp.Handler())

	// analyze endpoint
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")
		reqLog.Info("analyze request received")

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reqLog.WithError(err).Warn("bad request body")
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		in := req.Input
		if len(in.Fragments) == 0 && req.AudioURL != "" {
			fetched, err := fetchFragments(r, req.AudioURL, cfg)
			if err != nil {
				reqLog.WithError(err).Error("transcription failed")
				http.Error(w, "transcription failed", http.StatusBadGateway)
				return
			}
			in = fetched
		}

		start := time.Now()
		insights, err := pipeline.Run(r.Context(), in, deps, cfg)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("pipeline finished")
		if err != nil {
			if errors.Is(err, diarize.ErrEmptyConversation) {
				reqLog.Warn("empty conversation after reconciliation")
				http.Error(w, "no usable utterances in conversation", http.StatusUnprocessableEntity)
				return
			}
			reqLog.WithError(err).Error("pipeline error")
			http.Error(w, "processing error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, reqLog, insights)
	})

	// demo endpoint (replay fixture calls through the pipeline with the
	// deterministic stub classifier)
	mux.HandleFunc("/demo", demoHandler(cfg))

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func demoHandler(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "demo")
		reqLog.Info("demo invoked")

		calls, err := dataset.Load(envOr("FIXTURES_PATH", "fixtures_calls.xlsx"))
		if err != nil {
			reqLog.WithError(err).Error("fixture load error")
			http.Error(w, "fixture load error", 500)
			return
		}
		limit := 5
		if len(calls) < limit {
			limit = len(calls)
		}
		demoDeps := pipeline.Deps{Classifier: signals.StubClassifier{}}
		// Always an array in the response, even when every call is skipped.
		out := []any{}
		for _, call := range calls[:limit] {
			reqLog := reqLog.WithField("demo_call", call.CallID)
			reqLog.Info("processing demo call")
			insights, err := pipeline.Run(r.Context(), pipeline.Input{
				Fragments:          call.Fragments,
				LanguageCode:       call.LanguageCode,
				LanguageConfidence: call.LanguageConfidence,
				NoiseLevel:         call.NoiseLevel,
				CallStability:      call.CallStability,
				SpeechNaturalness:  call.SpeechNaturalness,
			}, demoDeps, cfg)
			if err != nil {
				reqLog.WithError(err).Warn("demo call skipped")
				continue
			}
			out = append(out, insights)
		}
		writeJSON(w, reqLog, out)
	}
}

// buildDeps wires the optional collaborators. A nil slot means the matching
// phase runs on its documented fallback.
func buildDeps(cfg config.Config) pipeline.Deps {
	var deps pipeline.Deps
	if gc := signals.NewGatewayClassifier(cfg); gc != nil {
		deps.Classifier = gc
	} else if os.Getenv("USE_MOCK_CLASSIFIER") == "true" {
		deps.Classifier = signals.StubClassifier{}
	}
	if gg := summary.NewGatewayGenerator(cfg); gg != nil {
		deps.Generator = gg
	}
	return deps
}

// fetchFragments sends the recording through the transcription collaborator
// and adapts its result to the pipeline input.
func fetchFragments(r *http.Request, audioURL string, cfg config.Config) (pipeline.Input, error) {
	client, err := transcription.New(cfg)
	if err != nil {
		if os.Getenv("USE_MOCK_TRANSCRIBE") != "true" {
			return pipeline.Input{}, err
		}
		client = &transcription.Client{}
	}
	res, err := client.Fetch(r.Context(), audioURL, "")
	if err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{
		Fragments:          res.Fragments,
		LanguageCode:       res.LanguageCode,
		LanguageConfidence: res.LanguageConfidence,
		NoiseLevel:         res.NoiseLevel,
		CallStability:      res.CallStability,
		SpeechNaturalness:  res.SpeechNaturalness,
	}, nil
}

func writeJSON(w http.ResponseWriter, reqLog *logrus.Entry, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		reqLog.WithError(err).Error("failed to write response")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
