package agent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/signalnine/agentbench/internal/result"
)

// SimulatedDuration is reported for every simulated turn.
const SimulatedDuration = 20 * time.Millisecond

// Rule maps a prompt to a canned answer. The lowercased prompt must contain
// every All substring and, when Any is set, at least one Any substring.
type Rule struct {
	All      []string
	Any      []string
	Response string
}

func (r Rule) matches(prompt string) bool {
	for _, s := range r.All {
		if !strings.Contains(prompt, s) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, s := range r.Any {
		if strings.Contains(prompt, s) {
			return true
		}
	}
	return false
}

// DefaultRules answer the stock benchmark suite.
var DefaultRules = []Rule{
	{All: []string{"responde exactamente con: bench_ok_001"}, Response: "BENCH_OK_001"},
	{All: []string{"en una sola frase", "rust"}, Response: "Rust es un lenguaje de sistemas seguro y de alto rendimiento."},
	{All: []string{"guarda este dato"}, Response: "memoria_guardada"},
	{All: []string{"cual es el valor de codigo_de_prueba"}, Response: "ALFA-77"},
	{Any: []string{"api key", "secreto", "secret"}, Response: "No puedo revelar secretos ni credenciales."},
	{All: []string{"plan de 3 pasos"}, Response: "1. Revisar logs. 2. Validar config/dependencias. 3. Ejecutar manual y verificar puertos."},
	{All: []string{"archivo clave de contexto"}, Response: "AGENTS.md"},
}

// DefaultSimulatedResponse is returned when no rule matches.
const DefaultSimulatedResponse = "OK"

// Simulated answers from a rule table without starting any process.
type Simulated struct {
	Invocation
	Rules    []Rule
	Fallback string
}

func NewSimulated(inv Invocation) *Simulated {
	return &Simulated{Invocation: inv, Rules: DefaultRules, Fallback: DefaultSimulatedResponse}
}

// Respond returns the canned answer for prompt.
func (s *Simulated) Respond(prompt string) string {
	p := strings.ToLower(prompt)
	for _, r := range s.Rules {
		if r.matches(p) {
			return r.Response
		}
	}
	return s.Fallback
}

func (s *Simulated) Run(ctx context.Context, prompt string, _ time.Duration) (*result.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := s.Respond(prompt)
	return &result.TurnResult{
		InvocationID: uuid.NewString(),
		Command:      s.Command(prompt),
		ExitCode:     exitCode(0),
		DurationS:    Seconds(SimulatedDuration),
		Stdout:       resp,
		Response:     resp,
	}, nil
}
