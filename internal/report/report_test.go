package report

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/geolens/internal/config"
	"github.com/AI2HU/geolens/internal/models"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		BrandName:          "Acme",
		TotalQueriesTested: 2,
		LLMModelsTested:    []string{"gpt-4o-mini"},
		ModelPerformance: map[string]*models.ModelPerformance{
			"gpt-4o-mini": {QueriesTested: 2, MentionRate: 50, AveragePosition: 1},
		},
		CompetitorAnalysis: map[string]*models.CompetitorSummary{
			"Zeta": {Mentions: 2, AveragePosition: 1.5},
		},
		OverallMetrics: models.OverallMetrics{
			MentionRate:            50,
			AverageMentionPosition: 1,
			PositivePositioning:    100,
			BrandVisibilityScore:   50,
		},
		OptimizationSuggestions: []string{"Do more of what works."},
	}
}

func TestBuildRendersBothBodies(t *testing.T) {
	rep, err := Build(sampleResult())
	require.NoError(t, err)

	assert.Equal(t, "Your AI Search Analysis Report for Acme", rep.Subject)

	assert.Contains(t, rep.Text, "GEO Analysis Report for Acme")
	assert.Contains(t, rep.Text, "Mention rate:        50.0%")
	assert.Contains(t, rep.Text, "Zeta: 2 mentions")
	assert.Contains(t, rep.Text, "Do more of what works.")

	assert.Contains(t, rep.HTML, "<h1>GEO Analysis Report for Acme</h1>")
	assert.Contains(t, rep.HTML, "gpt-4o-mini")
	assert.Contains(t, rep.HTML, "Zeta")
}

func TestBuildEscapesHTML(t *testing.T) {
	result := sampleResult()
	result.BrandName = "<script>alert(1)</script>"

	rep, err := Build(result)
	require.NoError(t, err)
	assert.NotContains(t, rep.HTML, "<script>alert(1)</script>")
}

func TestBuildRequiresResult(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)
}

func TestMailerSendsMultipartMessage(t *testing.T) {
	mailer := NewMailer(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "reports",
		Password: "secret",
		From:     "reports@example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	rep, err := Build(sampleResult())
	require.NoError(t, err)
	require.NoError(t, mailer.Send("user@example.com", rep))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "reports@example.com", gotFrom)
	assert.Equal(t, []string{"user@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Your AI Search Analysis Report for Acme")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "text/plain; charset=utf-8")
	assert.Contains(t, msg, "text/html; charset=utf-8")
	assert.True(t, strings.HasSuffix(msg, "--geolens-report-boundary--\r\n"))
}

func TestMailerRequiresConfiguration(t *testing.T) {
	mailer := NewMailer(config.SMTPConfig{})
	rep, err := Build(sampleResult())
	require.NoError(t, err)

	require.Error(t, mailer.Send("user@example.com", rep))
}
