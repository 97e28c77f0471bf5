package rtkernel

// quantile estimates a single quantile of a stream in constant space, with
// the P-square algorithm (Jain and Chlamtac, 1985). Five markers track the
// minimum, p/2, p, (1+p)/2 and the maximum.
type quantile struct {
	height  [5]float64
	pos     [5]float64
	desired [5]float64
	step    [5]float64
	p       float64
	n       int
}

func newQuantile(p float64) *quantile {
	return &quantile{
		p:    p,
		step: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (q *quantile) observe(x float64) {
	if q.n < 5 {
		// insertion sort of the first observations into the markers
		i := q.n
		for ; i > 0 && q.height[i-1] > x; i-- {
			q.height[i] = q.height[i-1]
		}
		q.height[i] = x
		q.n++
		if q.n == 5 {
			for j := range q.pos {
				q.pos[j] = float64(j)
			}
			q.desired = [5]float64{0, 2 * q.p, 4 * q.p, 2 + 2*q.p, 4}
		}
		return
	}
	q.n++

	var cell int
	switch {
	case x < q.height[0]:
		q.height[0] = x
	case x >= q.height[4]:
		q.height[4] = x
		cell = 3
	default:
		for cell = 0; cell < 3 && x >= q.height[cell+1]; cell++ {
		}
	}
	for j := cell + 1; j < 5; j++ {
		q.pos[j]++
	}
	for j := range q.desired {
		q.desired[j] += q.step[j]
	}

	for j := 1; j < 4; j++ {
		d := q.desired[j] - q.pos[j]
		if !(d >= 1 && q.pos[j+1]-q.pos[j] > 1) && !(d <= -1 && q.pos[j-1]-q.pos[j] < -1) {
			continue
		}
		s := 1.0
		if d < 0 {
			s = -1
		}
		h := q.parabolic(j, s)
		if h <= q.height[j-1] || h >= q.height[j+1] {
			h = q.linear(j, s)
		}
		q.height[j] = h
		q.pos[j] += s
	}
}

func (q *quantile) parabolic(j int, s float64) float64 {
	np, n, nn := q.pos[j-1], q.pos[j], q.pos[j+1]
	hp, h, hn := q.height[j-1], q.height[j], q.height[j+1]
	return h + s/(nn-np)*((n-np+s)*(hn-h)/(nn-n)+(nn-n-s)*(h-hp)/(n-np))
}

func (q *quantile) linear(j int, s float64) float64 {
	o := j + int(s)
	return q.height[j] + s*(q.height[o]-q.height[j])/(q.pos[o]-q.pos[j])
}

// value returns the estimate. Until five observations have been seen it is
// taken from the sorted observations directly.
func (q *quantile) value() float64 {
	switch {
	case q.n == 0:
		return 0
	case q.n < 5:
		i := int(q.p * float64(q.n-1))
		return q.height[i]
	default:
		return q.height[2]
	}
}
