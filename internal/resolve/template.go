package resolve

import (
	"fmt"
	"regexp"

	"github.com/reoring/wirejson/internal/diag"
	"github.com/reoring/wirejson/internal/ir"
)

var markerPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

var (
	parseMarkers = map[string]bool{
		ir.MarkerReader:   true,
		ir.MarkerWireName: true,
		ir.MarkerObject:   true,
		ir.MarkerValue:    true,
	}
	serializeMarkers = map[string]bool{
		ir.MarkerWriter:   true,
		ir.MarkerWireName: true,
		ir.MarkerObject:   true,
		ir.MarkerValue:    true,
	}
)

// checkTemplate records an error for every marker in body that is unknown
// or belongs to the other direction.
func (r *Resolver) checkTemplate(body, direction, typ, field string) {
	allowed := parseMarkers
	if direction == "serialize" {
		allowed = serializeMarkers
	}
	for _, m := range markerPattern.FindAllStringSubmatch(body, -1) {
		name := m[1]
		switch {
		case allowed[name]:
		case parseMarkers[name] || serializeMarkers[name]:
			r.diags.AddError(diag.CodeTemplateMarkerDirection,
				fmt.Sprintf("marker ${%s} cannot be used in a %s template", name, direction), typ, field)
		default:
			r.diags.AddError(diag.CodeUnknownTemplateMarker,
				fmt.Sprintf("unknown marker ${%s} in %s template", name, direction), typ, field)
		}
	}
}
