package animation

import "math"

const (
	DefaultFrames = 30
	DefaultFPS    = 30
)

// AngleStep is the rotation per frame in radians for a fan turning at rpm.
func AngleStep(rpm float64, fps int) float64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	rps := rpm / 60
	return 2 * math.Pi * rps / float64(fps)
}

// Sequence returns the blade angle of each frame, starting at zero.
func Sequence(rpm float64, frames, fps int) []float64 {
	if frames <= 0 {
		return nil
	}
	step := AngleStep(rpm, fps)
	angles := make([]float64, frames)
	angle := 0.0
	for i := range angles {
		angles[i] = angle
		angle += step
	}
	return angles
}

// BladeTips returns the endpoint of each blade for a hub at the origin.
func BladeTips(angle float64, blades int, length float64) [][2]float64 {
	if blades <= 0 {
		return nil
	}
	tips := make([][2]float64, blades)
	for i := range tips {
		a := angle + 2*math.Pi/float64(blades)*float64(i)
		tips[i] = [2]float64{length * math.Cos(a), length * math.Sin(a)}
	}
	return tips
}
