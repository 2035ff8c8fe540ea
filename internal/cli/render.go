package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const observedLayout = "2006-01-02 15:04 MST"

// render writes rec as an aligned text block or as indented JSON.
func render(w io.Writer, format string, rec weather.Record) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Location:\t%s\n", rec.Location)
	fmt.Fprintf(tw, "Observed:\t%s\n", rec.ObservedAt.Local().Format(observedLayout))
	fmt.Fprintf(tw, "Temperature:\t%.1f °C\n", rec.TemperatureC)
	fmt.Fprintf(tw, "Humidity:\t%.0f %%\n", rec.HumidityPct)
	fmt.Fprintf(tw, "Pressure:\t%.0f hPa\n", rec.PressureHpa)
	fmt.Fprintf(tw, "Condition:\t%s\n", rec.Condition)
	fmt.Fprintf(tw, "Wind:\t%.1f km/h from %.0f°\n", rec.WindSpeedKph, rec.WindDirectionDeg)
	return tw.Flush()
}
