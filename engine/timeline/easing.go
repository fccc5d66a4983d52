package timeline

import "github.com/chewxy/math32"

// EasingFunc maps normalized progress t in [0, 1] to eased progress. Back and elastic curves
// overshoot the range between the endpoints.
type EasingFunc func(t float32) float32

// Easing names as persisted in keyframes.
const (
	EaseLinear       = "linear"
	EaseInQuad       = "easeInQuad"
	EaseOutQuad      = "easeOutQuad"
	EaseInOutQuad    = "easeInOutQuad"
	EaseInCubic      = "easeInCubic"
	EaseOutCubic     = "easeOutCubic"
	EaseInOutCubic   = "easeInOutCubic"
	EaseInQuart      = "easeInQuart"
	EaseOutQuart     = "easeOutQuart"
	EaseInOutQuart   = "easeInOutQuart"
	EaseInSine       = "easeInSine"
	EaseOutSine      = "easeOutSine"
	EaseInOutSine    = "easeInOutSine"
	EaseInExpo       = "easeInExpo"
	EaseOutExpo      = "easeOutExpo"
	EaseInOutExpo    = "easeInOutExpo"
	EaseInCirc       = "easeInCirc"
	EaseOutCirc      = "easeOutCirc"
	EaseInOutCirc    = "easeInOutCirc"
	EaseInBack       = "easeInBack"
	EaseOutBack      = "easeOutBack"
	EaseInOutBack    = "easeInOutBack"
	EaseInElastic    = "easeInElastic"
	EaseOutElastic   = "easeOutElastic"
	EaseInOutElastic = "easeInOutElastic"
	EaseInBounce     = "easeInBounce"
	EaseOutBounce    = "easeOutBounce"
	EaseInOutBounce  = "easeInOutBounce"
)

const (
	backC1    = 1.70158
	backC2    = backC1 * 1.525
	backC3    = backC1 + 1
	elasticC4 = 2 * math32.Pi / 3
	elasticC5 = 2 * math32.Pi / 4.5
	bounceN1  = 7.5625
	bounceD1  = 2.75
)

var easingOrder = []string{
	EaseLinear,
	EaseInQuad, EaseOutQuad, EaseInOutQuad,
	EaseInCubic, EaseOutCubic, EaseInOutCubic,
	EaseInQuart, EaseOutQuart, EaseInOutQuart,
	EaseInSine, EaseOutSine, EaseInOutSine,
	EaseInExpo, EaseOutExpo, EaseInOutExpo,
	EaseInCirc, EaseOutCirc, EaseInOutCirc,
	EaseInBack, EaseOutBack, EaseInOutBack,
	EaseInElastic, EaseOutElastic, EaseInOutElastic,
	EaseInBounce, EaseOutBounce, EaseInOutBounce,
}

var easings = map[string]EasingFunc{
	EaseLinear: func(t float32) float32 { return t },

	EaseInQuad:  func(t float32) float32 { return t * t },
	EaseOutQuad: func(t float32) float32 { return t * (2 - t) },
	EaseInOutQuad: func(t float32) float32 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	},

	EaseInCubic: func(t float32) float32 { return t * t * t },
	EaseOutCubic: func(t float32) float32 {
		u := t - 1
		return u*u*u + 1
	},
	EaseInOutCubic: func(t float32) float32 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return (t-1)*(2*t-2)*(2*t-2) + 1
	},

	EaseInQuart: func(t float32) float32 { return t * t * t * t },
	EaseOutQuart: func(t float32) float32 {
		u := t - 1
		return 1 - u*u*u*u
	},
	EaseInOutQuart: func(t float32) float32 {
		if t < 0.5 {
			return 8 * t * t * t * t
		}
		u := t - 1
		return 1 - 8*u*u*u*u
	},

	EaseInSine:    func(t float32) float32 { return 1 - math32.Cos(t*math32.Pi/2) },
	EaseOutSine:   func(t float32) float32 { return math32.Sin(t * math32.Pi / 2) },
	EaseInOutSine: func(t float32) float32 { return -(math32.Cos(math32.Pi*t) - 1) / 2 },

	EaseInExpo: func(t float32) float32 {
		if t == 0 {
			return 0
		}
		return math32.Pow(2, 10*(t-1))
	},
	EaseOutExpo: func(t float32) float32 {
		if t == 1 {
			return 1
		}
		return 1 - math32.Pow(2, -10*t)
	},
	EaseInOutExpo: func(t float32) float32 {
		switch {
		case t == 0:
			return 0
		case t == 1:
			return 1
		case t < 0.5:
			return math32.Pow(2, 20*t-10) / 2
		}
		return (2 - math32.Pow(2, -20*t+10)) / 2
	},

	EaseInCirc: func(t float32) float32 { return 1 - math32.Sqrt(1-t*t) },
	EaseOutCirc: func(t float32) float32 {
		u := t - 1
		return math32.Sqrt(1 - u*u)
	},
	EaseInOutCirc: func(t float32) float32 {
		if t < 0.5 {
			return (1 - math32.Sqrt(1-4*t*t)) / 2
		}
		u := -2*t + 2
		return (math32.Sqrt(1-u*u) + 1) / 2
	},

	EaseInBack: func(t float32) float32 { return backC3*t*t*t - backC1*t*t },
	EaseOutBack: func(t float32) float32 {
		u := t - 1
		return 1 + backC3*u*u*u + backC1*u*u
	},
	EaseInOutBack: func(t float32) float32 {
		if t < 0.5 {
			return (4 * t * t * ((backC2+1)*2*t - backC2)) / 2
		}
		u := 2*t - 2
		return (u*u*((backC2+1)*u+backC2) + 2) / 2
	},

	EaseInElastic: func(t float32) float32 {
		if t == 0 || t == 1 {
			return t
		}
		return -math32.Pow(2, 10*t-10) * math32.Sin((t*10-10.75)*elasticC4)
	},
	EaseOutElastic: func(t float32) float32 {
		if t == 0 || t == 1 {
			return t
		}
		return math32.Pow(2, -10*t)*math32.Sin((t*10-0.75)*elasticC4) + 1
	},
	EaseInOutElastic: func(t float32) float32 {
		switch {
		case t == 0 || t == 1:
			return t
		case t < 0.5:
			return -(math32.Pow(2, 20*t-10) * math32.Sin((20*t-11.125)*elasticC5)) / 2
		}
		return (math32.Pow(2, -20*t+10)*math32.Sin((20*t-11.125)*elasticC5))/2 + 1
	},

	EaseInBounce:  func(t float32) float32 { return 1 - bounceOut(1-t) },
	EaseOutBounce: bounceOut,
	EaseInOutBounce: func(t float32) float32 {
		if t < 0.5 {
			return (1 - bounceOut(1-2*t)) / 2
		}
		return (1 + bounceOut(2*t-1)) / 2
	},
}

func bounceOut(t float32) float32 {
	switch {
	case t < 1/bounceD1:
		return bounceN1 * t * t
	case t < 2/bounceD1:
		t -= 1.5 / bounceD1
		return bounceN1*t*t + 0.75
	case t < 2.5/bounceD1:
		t -= 2.25 / bounceD1
		return bounceN1*t*t + 0.9375
	}
	t -= 2.625 / bounceD1
	return bounceN1*t*t + 0.984375
}

// Easing returns the easing function registered under name. Unknown names resolve to linear.
//
// Parameters:
//   - name: the persisted easing name, e.g. "easeInOutCubic"
//
// Returns:
//   - EasingFunc: the easing function
func Easing(name string) EasingFunc {
	if f, ok := easings[name]; ok {
		return f
	}
	return easings[EaseLinear]
}

// IsEasing reports whether name is a registered easing.
func IsEasing(name string) bool {
	_, ok := easings[name]
	return ok
}

// EasingNames returns every registered easing name, linear first, then grouped by family.
func EasingNames() []string {
	out := make([]string, len(easingOrder))
	copy(out, easingOrder)
	return out
}
