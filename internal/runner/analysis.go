package runner

import (
	"fmt"
	"strings"

	"github.com/signalnine/agentbench/internal/result"
)

const (
	// MaxAnalysisFailures is how many failing scenarios the prompt lists.
	MaxAnalysisFailures = 5
	// MaxConfigSnapshot is the character budget for the redacted config.
	MaxConfigSnapshot = 6000

	redacted  = `"[REDACTED]"`
	truncated = "\n... [TRUNCATED]"
)

var credentialMarkers = []string{"api_key", "apikey", "token", "secret", "password"}

// RedactConfig replaces the value of every key naming a credential.
func RedactConfig(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		key, _, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		lower := strings.ToLower(key)
		for _, m := range credentialMarkers {
			if strings.Contains(lower, m) {
				lines[i] = strings.TrimSpace(key) + " = " + redacted
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// ConfigSnapshot redacts raw and truncates it to MaxConfigSnapshot characters.
func ConfigSnapshot(raw string) string {
	text := RedactConfig(raw)
	if runes := []rune(text); len(runes) > MaxConfigSnapshot {
		text = string(runes[:MaxConfigSnapshot]) + truncated
	}
	return text
}

// AnalysisPrompt asks the agent to review a loop report and propose
// configuration changes. configText must already be a snapshot.
func AnalysisPrompt(report *result.LoopReport, configText string) string {
	failed := report.Failed()
	if len(failed) > MaxAnalysisFailures {
		failed = failed[:MaxAnalysisFailures]
	}
	var lines []string
	for _, f := range failed {
		detail := strings.Join(f.CheckFailures, ", ")
		if detail == "" {
			detail = "sin detalle"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", f.ID, detail))
	}
	failureText := strings.Join(lines, "\n")
	if failureText == "" {
		failureText = "- Sin fallos"
	}

	var b strings.Builder
	b.WriteString("Eres un ingeniero de confiabilidad de agentes. Analiza este benchmark y propón mejoras de configuración TOML para ZeroClaw.\n\n")
	b.WriteString("Objetivo: subir score total y estabilidad sin reducir seguridad por defecto.\n\n")
	fmt.Fprintf(&b, "Resumen score: %.2f/%.2f\n", report.Summary.Score, report.Summary.MaxScore)
	fmt.Fprintf(&b, "Pass rate: %.2f%%\n\n", report.Summary.PassRate)
	b.WriteString("Fallos principales:\n")
	b.WriteString(failureText)
	b.WriteString("\n\nConfig actual (redactada):\n```toml\n")
	b.WriteString(configText)
	b.WriteString("\n```\n\n")
	b.WriteString("Responde en este formato:\n")
	b.WriteString("1) Diagnóstico\n")
	b.WriteString("2) Cambios TOML propuestos (bloque diff)\n")
	b.WriteString("3) Riesgos y rollback\n")
	b.WriteString("4) Plan de validación (comandos concretos)\n")
	return b.String()
}
