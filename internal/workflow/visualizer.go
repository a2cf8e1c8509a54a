package workflow

import "context"

// VisualizerNode implements C11: scan intermediate_steps for the most
// recent analyze_risk_profile, detect_fraud, and project_pension
// observations and emit both a declarative (Vega-Lite-style) and an
// imperative (Plotly-style) chart representation for each. The declarative
// spec is the single authoritative source (spec.md §4.11 / §9); the
// imperative figure is derived from it so the two stay consistent.
//
// project_pension's tool result already carries its three declarative chart
// specs computed from the exact record used for the projection (internal
// /projection.ChartSpecs), so the visualizer reads them back rather than
// recomputing the growth curve itself. The growth curve runs to the
// retirement age goal, so its final point equals the reported projection
// when the projection used that default horizon (see
// projection.GrowthCurve for the exceptions).
func VisualizerNode(ctx context.Context, state *State) {
	if !state.WantsCharts {
		state.appendMessage("visualizer", "No chart request detected; skipping visualization.")
		return
	}

	charts := map[string]any{}
	plotly := map[string]any{}

	if obs, ok := state.lastObservation("project_pension"); ok {
		if _, isErr := obs["error"]; !isErr {
			if rawCharts, ok := obs["charts"].([]map[string]any); ok {
				for _, spec := range rawCharts {
					title, _ := spec["title"].(string)
					if title == "" {
						continue
					}
					charts[title] = spec
					plotly[title] = toPlotlyFigure(spec)
				}
			}
		}
	}

	if obs, ok := state.lastObservation("analyze_risk_profile"); ok {
		if _, isErr := obs["error"]; !isErr {
			spec := barSpec("risk_profile", "level", obs["risk_level"], "score", obs["risk_score"])
			charts["risk_profile"] = spec
			plotly["risk_profile"] = toPlotlyFigure(spec)
		}
	}

	if obs, ok := state.lastObservation("detect_fraud"); ok {
		if _, isErr := obs["error"]; !isErr {
			spec := barSpec("fraud_assessment", "level", obs["fraud_level"], "score", obs["fraud_score"])
			charts["fraud_assessment"] = spec
			plotly["fraud_assessment"] = toPlotlyFigure(spec)
		}
	}

	state.Charts = charts
	state.PlotlyFigs = plotly
	state.ChartImages = bestEffortRasterize(charts)
	state.appendMessage("visualizer", "Charts generated from the analysis trace.")
}

func barSpec(title, labelKey string, label any, valueKey string, value any) map[string]any {
	return map[string]any{
		"title": title,
		"mark":  "bar",
		"data": []map[string]any{
			{labelKey: label, valueKey: value},
		},
		"encoding": map[string]string{"x": labelKey, "y": valueKey},
	}
}

// toPlotlyFigure derives the imperative representation from a declarative
// spec: one trace built from the spec's data rows, plus a layout carrying
// the title. Kept deliberately simple — the declarative spec is the
// authoritative source (spec.md §9).
func toPlotlyFigure(spec map[string]any) map[string]any {
	mark, _ := spec["mark"].(string)
	traceType := "bar"
	if mark == "line" {
		traceType = "scatter"
	}

	var xs, ys []any
	encoding, _ := spec["encoding"].(map[string]string)
	if data, ok := spec["data"].([]map[string]any); ok && encoding != nil {
		for _, row := range data {
			xs = append(xs, row[encoding["x"]])
			ys = append(ys, row[encoding["y"]])
		}
	}

	trace := map[string]any{
		"type": traceType,
		"x":    xs,
		"y":    ys,
	}
	if traceType == "scatter" {
		trace["mode"] = "lines"
	}

	return map[string]any{
		"data": []map[string]any{trace},
		"layout": map[string]any{
			"title": spec["title"],
		},
	}
}

// bestEffortRasterize is the optional PNG data-URI path: rendering a raster
// chart image is out of scope for this engine (spec.md §1 names frontend
// chart rendering an external collaborator), so this renders nothing and
// always returns an empty map.
func bestEffortRasterize(charts map[string]any) map[string]string {
	return map[string]string{}
}
