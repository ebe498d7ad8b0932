package interpreter

import "github.com/codahale/metrics"

// Default counter names.
const (
	MetricTokens      = "srpn.tokens"
	MetricDiagnostics = "srpn.diagnostics"
	MetricDraws       = "srpn.random.draws"
	MetricInfix       = "srpn.infix"
	MetricArithExits  = "srpn.exits.arith"
)

// Counters names the counters a Calculator increments. A zero field is not
// counted.
type Counters struct {
	Tokens      metrics.Counter
	Diagnostics metrics.Counter
	Draws       metrics.Counter
	Infix       metrics.Counter
	ArithExits  metrics.Counter
}

// DefaultCounters returns the srpn.* counters reported by --stats.
func DefaultCounters() Counters {
	return Counters{
		Tokens:      MetricTokens,
		Diagnostics: MetricDiagnostics,
		Draws:       MetricDraws,
		Infix:       MetricInfix,
		ArithExits:  MetricArithExits,
	}
}

func count(c metrics.Counter) {
	if c != "" {
		c.Add()
	}
}
