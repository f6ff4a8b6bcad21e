package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/doeshing/reelai/internal/domain"
)

func TestRenderResult(t *testing.T) {
	result := domain.RecommendationResult{
		Results: []domain.Recommendation{
			{Title: "Arrival", Year: 2016, MediaType: domain.MediaMovie, Reason: "quiet, cerebral first contact"},
			{Title: "Dark", MediaType: domain.MediaTV},
		},
		Provider:   "openai",
		IsFallback: true,
		Prompt:     "Mind-Bending",
	}

	tests := []struct {
		name   string
		format string
		want   []string
	}{
		{
			name:   "text",
			format: OutputText,
			want: []string{
				"Mind-Bending",
				"Provider: openai (fallback)",
				" 1. Arrival (2016) [movie]",
				"    quiet, cerebral first contact",
				" 2. Dark [tv]",
			},
		},
		{
			name:   "json",
			format: OutputJSON,
			want:   []string{`"provider": "openai"`, `"isFallback": true`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := renderResult(&out, result, tt.format); err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("missing %q in:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRenderResultEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := renderResult(&out, domain.RecommendationResult{Provider: "heuristic"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), MsgNoResults) {
		t.Errorf("expected empty message, got %q", out.String())
	}
}

func TestRenderDoctorReport(t *testing.T) {
	var out bytes.Buffer
	renderDoctorReport(&out, domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Config", Status: domain.HealthOK, Details: "format 1"},
	}})
	if got := out.String(); got != "[OK] Config - format 1\n" {
		t.Errorf("unexpected report line %q", got)
	}
}
