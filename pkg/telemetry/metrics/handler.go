package metrics

import (
	"bytes"
	"fmt"
	"strings"

	"mercator-hq/lantern/pkg/router"
	"mercator-hq/lantern/pkg/wire"

	"github.com/prometheus/common/expfmt"
)

// Handler returns a route handler serving every registered metric in the
// Prometheus text exposition format. The body is gzip encoded when the
// client accepts it.
//
// Example:
//
//	endpoint.GET("/metrics", collector.Handler())
func (c *Collector) Handler() router.Handler {
	format := expfmt.NewFormat(expfmt.TypeTextPlain)

	return func(ctx *wire.Context) error {
		families, err := c.registry.Gather()
		if err != nil && len(families) == 0 {
			return fmt.Errorf("failed to gather metrics: %w", err)
		}
		if err != nil {
			ctx.Logger().Warn("partial metrics gather", "error", err)
		}

		var buf bytes.Buffer
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
				return fmt.Errorf("failed to encode metric family %q: %w", mf.GetName(), err)
			}
		}

		if strings.Contains(ctx.Header("Accept-Encoding"), "gzip") {
			ctx.Response().SetGzip(true)
		}
		ctx.Status(wire.StatusOK).ContentType(string(format))
		ctx.SendBytes(buf.Bytes())
		return nil
	}
}
