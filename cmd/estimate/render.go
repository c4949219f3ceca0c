package main

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"urbannest/internal/model"
)

// importanceScale turns importances into the integer bar lengths pterm draws
const importanceScale = 1000

func renderPrediction(resp *model.PredictionResponse) error {
	pterm.DefaultSection.Println(resp.Model.Name())
	pterm.Success.Printfln("Estimated price: %s (%.2f lakh)", resp.PriceFormatted, resp.Prediction)
	pterm.Info.Printfln("RMSE %s | R² %s", resp.Metrics.RMSEFormatted, resp.Metrics.R2Formatted)
	return renderImportances(resp)
}

func renderComparison(results []*model.PredictionResponse) error {
	pterm.DefaultSection.Println("Model comparison")
	data := pterm.TableData{{"Model", "Estimated price", "RMSE", "R²"}}
	for _, resp := range results {
		data = append(data, []string{
			resp.Model.Name(),
			resp.PriceFormatted,
			resp.Metrics.RMSEFormatted,
			resp.Metrics.R2Formatted,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return errors.Wrap(err, "failed to render comparison")
	}
	return nil
}

func renderImportances(resp *model.PredictionResponse) error {
	if !resp.Model.SupportsImportance() {
		pterm.Info.Printfln("%s does not report feature importances", resp.Model.Name())
		return nil
	}
	if len(resp.Importances) == 0 {
		return nil
	}

	pterm.DefaultSection.WithLevel(2).Printfln("Top %d features (%s)", len(resp.Importances), resp.Model.Name())
	data := pterm.TableData{{"#", "Feature", "Importance"}}
	bars := make(pterm.Bars, 0, len(resp.Importances))
	for i, imp := range resp.Importances {
		data = append(data, []string{fmt.Sprint(i + 1), imp.Feature, fmt.Sprintf("%.4f", imp.Importance)})
		bars = append(bars, pterm.Bar{
			Label: imp.Feature,
			Value: int(math.Round(imp.Importance * importanceScale)),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return errors.Wrap(err, "failed to render importances")
	}
	if err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render(); err != nil {
		return errors.Wrap(err, "failed to render importance chart")
	}
	return nil
}
