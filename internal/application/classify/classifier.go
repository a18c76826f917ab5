package classify

import (
	"context"
	"net/url"
	"strings"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/pkg/logger"
	"github.com/doeshing/qrshield/internal/ports"
)

// networkSchemes must carry a host to count as well-formed.
var networkSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ws": true, "wss": true,
}

// Classifier assigns a verdict to a decoded payload: URL gate, then blacklist, then oracle.
type Classifier struct {
	Rules   ports.KeywordMatcher
	Oracle  ports.ThreatOracle
	URLGate domain.URLGateSettings
	Logger  ports.Logger
}

// Classify returns the verdict for text scanned through flow. Oracle failures become
// VerdictLookupError and are not retried.
func (c *Classifier) Classify(ctx context.Context, text string, flow domain.Flow) domain.Verdict {
	log := c.logger()
	if c.URLGate.Enabled(flow) && !WellFormedURL(text) {
		log.Debug("payload is not a well-formed url", map[string]interface{}{"flow": string(flow)})
		return domain.VerdictSuspicious
	}
	if c.Rules != nil {
		if matches := c.Rules.Match(text); len(matches) > 0 {
			log.Debug("blacklist hit", map[string]interface{}{
				"keyword": matches[0].Keyword,
				"hits":    len(matches),
			})
			return domain.VerdictSuspicious
		}
	}
	return c.Lookup(ctx, text)
}

// Lookup asks the oracle alone, as the query surface does.
func (c *Classifier) Lookup(ctx context.Context, target string) domain.Verdict {
	if c.Oracle == nil {
		return domain.VerdictLookupError
	}
	matched, err := c.Oracle.Lookup(ctx, target)
	if err != nil {
		c.logger().Warn("threat lookup failed", map[string]interface{}{
			"oracle": c.Oracle.Name(),
			"error":  err.Error(),
		})
		return domain.VerdictLookupError
	}
	if matched {
		return domain.VerdictKnownFraud
	}
	return domain.VerdictSafe
}

// WellFormedURL reports whether text parses as an absolute URL. Network schemes also need a host.
func WellFormedURL(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	u, err := url.Parse(text)
	if err != nil || u.Scheme == "" {
		return false
	}
	if networkSchemes[u.Scheme] {
		return u.Host != ""
	}
	return u.Opaque != "" || u.Path != "" || u.Host != ""
}

func (c *Classifier) logger() ports.Logger {
	if c.Logger == nil {
		return logger.Nop{}
	}
	return c.Logger
}
