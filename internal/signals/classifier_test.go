package signals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-risk-go/internal/config"
)

func gatewayFor(t *testing.T, handler http.HandlerFunc) *GatewayClassifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &GatewayClassifier{
		URL:     srv.URL,
		Client:  srv.Client(),
		MaxWait: 500 * time.Millisecond,
	}
}

func TestGatewayClassifierParsesWrappedJSON(t *testing.T) {
	g := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`Sure, here is the classification: {"label":"refusal","confidence":0.85,"conditionality":"low"}`))
	})
	res, err := g.Classify(context.Background(), ClassifyRequest{Task: TaskIntent, Utterances: []string{"no"}})
	require.NoError(t, err)
	assert.Equal(t, "refusal", res.Label)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
}

func TestGatewayClassifierClientErrorIsPermanent(t *testing.T) {
	hits := 0
	g := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "bad request", http.StatusBadRequest)
	})
	_, err := g.Classify(context.Background(), ClassifyRequest{Task: TaskIntent})
	require.Error(t, err)
	assert.Equal(t, 1, hits, "4xx responses must not be retried")
}

func TestGatewayClassifierRetriesServerErrors(t *testing.T) {
	hits := 0
	g := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 2 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"label":"neutral","confidence":0.6}`))
	})
	res, err := g.Classify(context.Background(), ClassifyRequest{Task: TaskSentiment})
	require.NoError(t, err)
	assert.Equal(t, "neutral", res.Label)
	assert.GreaterOrEqual(t, hits, 2)
}

func TestNewGatewayClassifierUnconfigured(t *testing.T) {
	assert.Nil(t, NewGatewayClassifier(config.Config{}))
}
