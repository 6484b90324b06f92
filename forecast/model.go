package forecast

import (
	"fmt"
	"io"
	"time"

	"github.com/aouyang1/go-inflation/forecast/util"
)

const (
	MethodHoltWinters = "holt_winters_damped"
	MethodLinear      = "linear_regression"
)

// LinearParams describes the fallback line over the training window
type LinearParams struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	Window    int     `json:"window"`
}

// Model is a serializable summary of the fit behind one region's forecast
type Model struct {
	Region       string             `json:"geo"`
	RegionName   string             `json:"country"`
	Method       string             `json:"method"`
	TrainEndTime time.Time          `json:"train_end_time"`
	Observations int                `json:"observations"`
	Interpolated int                `json:"interpolated"`
	HoltWinters  *HoltWintersParams `json:"holt_winters,omitempty"`
	Linear       *LinearParams      `json:"linear,omitempty"`
	ResidualStd  float64            `json:"residual_std"`
	Scores       *Scores            `json:"scores,omitempty"`
	// FallbackReason is set when the seasonal model was skipped or failed
	FallbackReason string `json:"fallback_reason,omitempty"`
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sForecast %s (%s):\n", prefix, util.IndentExpand(indent, 0), m.RegionName, m.Region); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sMethod: %s\n", prefix, util.IndentExpand(indent, 1), m.Method); err != nil {
		return err
	}
	if m.FallbackReason != "" {
		if _, err := fmt.Fprintf(w, "%s%sFallback: %s\n", prefix, util.IndentExpand(indent, 1), m.FallbackReason); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sTraining End Time: %s, Observations: %d, Interpolated: %d\n",
		prefix, util.IndentExpand(indent, 1),
		m.TrainEndTime.Format("2006-01"), m.Observations, m.Interpolated); err != nil {
		return err
	}

	switch {
	case m.HoltWinters != nil:
		if _, err := fmt.Fprintf(w, "%s%sAlpha: %.3f    Beta: %.3f    Gamma: %.3f    Phi: %.3f\n",
			prefix, util.IndentExpand(indent, 1),
			m.HoltWinters.Alpha, m.HoltWinters.Beta, m.HoltWinters.Gamma, m.HoltWinters.Phi); err != nil {
			return err
		}
	case m.Linear != nil:
		if _, err := fmt.Fprintf(w, "%s%sIntercept: %.3f    Slope: %.4f    Window: %d\n",
			prefix, util.IndentExpand(indent, 1),
			m.Linear.Intercept, m.Linear.Slope, m.Linear.Window); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s%sResidual Std: %.3f\n", prefix, util.IndentExpand(indent, 1), m.ResidualStd); err != nil {
		return err
	}

	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, util.IndentExpand(indent, 1)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			prefix, util.IndentExpand(indent, 2),
			m.Scores.MAPE,
			m.Scores.MSE,
			m.Scores.R2,
		); err != nil {
			return err
		}
	}
	return nil
}
