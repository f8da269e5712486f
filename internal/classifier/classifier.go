// Package classifier maps a detection set to a discrete screen label per
// scenario, with primary/relaxed threshold pairs and patience-driven
// escalation to relaxed thresholds (spec §4.4).
package classifier

// #region imports
import (
	"log"

	"github.com/umaplay/career-agent/internal/domain"
)

// #endregion

// #region rule

// Rule maps presence of any class in Classes at the required confidence to
// Label. Rules are evaluated in slice order; the first match wins, so the
// caller's rule order is the scenario's tie-break priority.
type Rule struct {
	Label         domain.ScreenLabel
	Classes       []string
	PrimaryConf   float32
	RelaxedConf   float32
}

// #endregion

// #region classifier

// Classifier is a total function from a detection set to a ScreenLabel,
// falling back to Unknown, with an adaptive-patience relaxed-threshold
// retry after N consecutive Unknown results.
type Classifier struct {
	Rules             []Rule
	PatienceThreshold int

	consecutiveUnknown int
}

// New builds a Classifier for one scenario's rule table.
func New(rules []Rule, patienceThreshold int) *Classifier {
	return &Classifier{Rules: rules, PatienceThreshold: patienceThreshold}
}

// #endregion

// #region classify

// Classify evaluates the rule table against frame's detections. It always
// tries primary thresholds first; if that yields Unknown and patience has
// been exhausted, it re-evaluates with relaxed thresholds and logs the
// relaxed classification (confidences included) for operator curation.
func (c *Classifier) Classify(frame *domain.Frame) domain.ScreenLabel {
	if label, ok := c.evaluate(frame, false); ok {
		c.consecutiveUnknown = 0
		return label
	}

	if c.consecutiveUnknown+1 >= c.PatienceThreshold && c.PatienceThreshold > 0 {
		if label, ok := c.evaluate(frame, true); ok {
			log.Printf("[classifier] relaxed classification -> %s after %d consecutive unknowns (detections=%d)",
				label, c.consecutiveUnknown+1, len(frame.Detections))
			c.consecutiveUnknown = 0
			return label
		}
	}

	c.consecutiveUnknown++
	return domain.ScreenUnknown
}

func (c *Classifier) evaluate(frame *domain.Frame, relaxed bool) (domain.ScreenLabel, bool) {
	for _, rule := range c.Rules {
		threshold := rule.PrimaryConf
		if relaxed {
			threshold = rule.RelaxedConf
		}
		for _, d := range frame.ByClass(rule.Classes...) {
			if d.Confidence >= threshold {
				return rule.Label, true
			}
		}
	}
	return domain.ScreenUnknown, false
}

// Reset clears the patience counter, used when the agent backs out to a
// known-good screen and wants fresh patience accounting.
func (c *Classifier) Reset() {
	c.consecutiveUnknown = 0
}

// ConsecutiveUnknown reports the current unknown streak, for the agent
// loop's own stall-patience accounting.
func (c *Classifier) ConsecutiveUnknown() int {
	return c.consecutiveUnknown
}

// #endregion
