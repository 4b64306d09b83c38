package scratch

import (
	"studioscrape/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/scratch")

// SetRestyInstrumentOutput dumps every http exchange of this client
// into `out`, used by the cli in verbose mode.
func (c *Client) SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.api, out)
	restyutil.InstrumentClient(c.site, out)
}
