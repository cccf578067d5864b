package strconvx

import "sensornode-go/x/mathx"

// MaxPrec is the largest number of fractional digits FormatFixed renders.
// Both builds clamp prec to [0, MaxPrec] so they agree on every input.
const MaxPrec = 9

func clampPrec(prec int) int { return mathx.Clamp(prec, 0, MaxPrec) }
