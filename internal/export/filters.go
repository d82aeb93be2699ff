package export

import (
	"fmt"
	"strings"

	"github.com/reelcut/reelcut-engine/internal/timeline"
)

// EffectFilter renders a clip's enabled effects as an ffmpeg filter chain.
// This is the one place effect kinds are interpreted; the engine itself
// only stores them.
func EffectFilter(effects []timeline.Effect) string {
	var filters []string
	for _, effect := range effects {
		if !effect.Enabled {
			continue
		}
		if f := renderEffect(effect); f != "" {
			filters = append(filters, f)
		}
	}
	return strings.Join(filters, ",")
}

func renderEffect(e timeline.Effect) string {
	param := func(name string) float64 { return e.Params[name] }

	switch e.Kind {
	case timeline.EffectBrightness:
		return fmt.Sprintf("eq=brightness=%g", param("value"))
	case timeline.EffectContrast:
		return fmt.Sprintf("eq=contrast=%g", param("value"))
	case timeline.EffectSaturation:
		return fmt.Sprintf("eq=saturation=%g", param("value"))
	case timeline.EffectBlur:
		return fmt.Sprintf("boxblur=%d:1", int(param("radius")*10))
	case timeline.EffectSharpen:
		return fmt.Sprintf("unsharp=5:5:%g", param("amount")*2)
	case timeline.EffectNormalize:
		return "loudnorm"
	case timeline.EffectFadeIn:
		return fmt.Sprintf("fade=t=in:st=0:d=%g", param("duration"))
	case timeline.EffectFadeOut:
		return fmt.Sprintf("fade=t=out:st=0:d=%g", param("duration"))
	default:
		// Unknown kinds are stored and serialized but never rendered.
		return ""
	}
}
