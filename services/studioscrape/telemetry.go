package studioscrape

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("services/studioscrape")
