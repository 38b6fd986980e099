package tf

import "github.com/san-kum/ctrlab/internal/poly"

// PID returns the ideal PID controller transfer function
//
//	C(s) = Kp + Ki/s + Kd*s = (Kd*s^2 + Kp*s + Ki) / s
//
// Pure P or PI controllers fall out naturally with zero gains. An all-zero
// controller degenerates to 0/s.
func PID(kp, ki, kd float64) *TransferFunction {
	num, err := poly.New(ki, kp, kd)
	if err != nil {
		num = poly.Polynomial{0}
	}
	return &TransferFunction{
		Num: num,
		Den: poly.MustNew(0, 1),
	}
}
