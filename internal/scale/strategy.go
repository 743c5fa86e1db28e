package scale

import (
	"fmt"
	"math"
)

// Strategy selects how a source image becomes its target.
type Strategy int

const (
	// StrategyCopy writes the image unchanged: both dimensions already fit.
	StrategyCopy Strategy = iota
	// StrategySmooth resamples by a real-valued factor.
	StrategySmooth
	// StrategySubsample keeps every stride-th pixel.
	StrategySubsample
)

// Plan is a chosen strategy plus its numeric parameter.
type Plan struct {
	Strategy Strategy
	Factor   float64 // set for StrategySmooth
	Stride   int     // set for StrategySubsample
}

func (p Plan) String() string {
	switch p.Strategy {
	case StrategySmooth:
		return fmt.Sprintf("smooth scale by %.3f", p.Factor)
	case StrategySubsample:
		return fmt.Sprintf("subsample with stride %d", p.Stride)
	default:
		return "copy unchanged"
	}
}

// ChoosePlan decides how to fit a width x height image inside a square
// bound. The smooth factor is the largest that keeps both dimensions within
// the bound; the stride is the smallest that does.
func ChoosePlan(width, height, bound int, smooth bool) Plan {
	if width <= bound && height <= bound {
		return Plan{Strategy: StrategyCopy}
	}
	if smooth {
		factor := math.Min(float64(bound)/float64(width), float64(bound)/float64(height))
		return Plan{Strategy: StrategySmooth, Factor: factor}
	}
	stride := int(math.Ceil(math.Max(
		float64(width)/float64(bound),
		float64(height)/float64(bound),
	)))
	return Plan{Strategy: StrategySubsample, Stride: stride}
}
