package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// network is a single-layer LSTM followed by a linear head on the last hidden state.
// All parameters live in one flat slice so the optimizer can treat them uniformly.
type network struct {
	in, hidden, out int

	params []float64
	wx     []float64 // 4H x in, gate order i, f, g, o
	wh     []float64 // 4H x H
	b      []float64 // 4H
	wy     []float64 // out x H
	by     []float64 // out

	// matrix views share the backing arrays of the slices above
	wxM, whM, wyM *mat.Dense
	bV, byV       *mat.VecDense
}

func newNetwork(in, hidden, out int, rng *rand.Rand) *network {
	g := 4 * hidden
	sizes := []int{g * in, g * hidden, g, out * hidden, out}
	total := 0
	for _, s := range sizes {
		total += s
	}
	n := &network{in: in, hidden: hidden, out: out, params: make([]float64, total)}
	views := n.layout(n.params)
	n.wx, n.wh, n.b, n.wy, n.by = views[0], views[1], views[2], views[3], views[4]
	n.wxM = mat.NewDense(g, in, n.wx)
	n.whM = mat.NewDense(g, hidden, n.wh)
	n.wyM = mat.NewDense(out, hidden, n.wy)
	n.bV = mat.NewVecDense(g, n.b)
	n.byV = mat.NewVecDense(out, n.by)

	recurrent := 1 / math.Sqrt(float64(hidden))
	for i := range n.wx {
		n.wx[i] = uniform(rng, recurrent)
	}
	for i := range n.wh {
		n.wh[i] = uniform(rng, recurrent)
	}
	for i := range n.b {
		n.b[i] = uniform(rng, recurrent)
	}
	for i := range n.wy {
		n.wy[i] = uniform(rng, recurrent)
	}
	for i := range n.by {
		n.by[i] = uniform(rng, recurrent)
	}
	return n
}

// layout slices buf into the parameter groups.
func (n *network) layout(buf []float64) [5][]float64 {
	g := 4 * n.hidden
	sizes := []int{g * n.in, g * n.hidden, g, n.out * n.hidden, n.out}
	var views [5][]float64
	off := 0
	for i, s := range sizes {
		views[i] = buf[off : off+s]
		off += s
	}
	return views
}

func uniform(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}

// step is the cached state of one timestep.
type step struct {
	x, hPrev, cPrev []float64
	i, f, g, o      []float64
	c, tanhC, h     []float64
}

// trace is the cached forward pass used by backward.
type trace struct {
	steps  []step
	last   []float64 // last hidden state after dropout
	mask   []float64 // dropout scale per hidden unit, nil at inference
	logits []float64
}

func (n *network) forward(seq [][]float64, dropout float64, rng *rand.Rand) *trace {
	H := n.hidden
	h := make([]float64, H)
	c := make([]float64, H)
	tr := &trace{steps: make([]step, len(seq))}

	for t, x := range seq {
		st := step{
			x: x, hPrev: h, cPrev: c,
			i: make([]float64, H), f: make([]float64, H), g: make([]float64, H), o: make([]float64, H),
			c: make([]float64, H), tanhC: make([]float64, H), h: make([]float64, H),
		}
		var pre, rec mat.VecDense
		pre.MulVec(n.wxM, mat.NewVecDense(n.in, x))
		rec.MulVec(n.whM, mat.NewVecDense(H, h))
		pre.AddVec(&pre, &rec)
		pre.AddVec(&pre, n.bV)
		for u := 0; u < H; u++ {
			st.i[u] = sigmoid(pre.AtVec(u))
			st.f[u] = sigmoid(pre.AtVec(H + u))
			st.g[u] = math.Tanh(pre.AtVec(2*H + u))
			st.o[u] = sigmoid(pre.AtVec(3*H + u))
			st.c[u] = st.f[u]*c[u] + st.i[u]*st.g[u]
			st.tanhC[u] = math.Tanh(st.c[u])
			st.h[u] = st.o[u] * st.tanhC[u]
		}
		tr.steps[t] = st
		h, c = st.h, st.c
	}

	tr.last = make([]float64, H)
	copy(tr.last, h)
	if dropout > 0 && rng != nil {
		keep := 1 - dropout
		tr.mask = make([]float64, H)
		for u := range tr.mask {
			if rng.Float64() < keep {
				tr.mask[u] = 1 / keep
			}
			tr.last[u] *= tr.mask[u]
		}
	}

	var logits mat.VecDense
	logits.MulVec(n.wyM, mat.NewVecDense(H, tr.last))
	logits.AddVec(&logits, n.byV)
	tr.logits = mat.Col(nil, 0, &logits)
	return tr
}

// backward accumulates parameter gradients for dLogits into grad.
func (n *network) backward(tr *trace, dLogits []float64, grad []float64) {
	H := n.hidden
	views := n.layout(grad)
	gwx, gwh, gb, gwy, gby := views[0], views[1], views[2], views[3], views[4]

	gwxM := mat.NewDense(4*H, n.in, gwx)
	gwhM := mat.NewDense(4*H, H, gwh)
	gwyM := mat.NewDense(n.out, H, gwy)

	dLogitsV := mat.NewVecDense(n.out, dLogits)
	floats.Add(gby, dLogits)
	gwyM.RankOne(gwyM, 1, dLogitsV, mat.NewVecDense(H, tr.last))
	var dhV mat.VecDense
	dhV.MulVec(n.wyM.T(), dLogitsV)
	dh := mat.Col(nil, 0, &dhV)
	if tr.mask != nil {
		for k := range dh {
			dh[k] *= tr.mask[k]
		}
	}

	dc := make([]float64, H)
	da := make([]float64, 4*H)
	for t := len(tr.steps) - 1; t >= 0; t-- {
		st := tr.steps[t]
		for u := 0; u < H; u++ {
			do := dh[u] * st.tanhC[u]
			dcu := dc[u] + dh[u]*st.o[u]*(1-st.tanhC[u]*st.tanhC[u])
			di := dcu * st.g[u]
			dg := dcu * st.i[u]
			df := dcu * st.cPrev[u]
			dc[u] = dcu * st.f[u]
			da[u] = di * st.i[u] * (1 - st.i[u])
			da[H+u] = df * st.f[u] * (1 - st.f[u])
			da[2*H+u] = dg * (1 - st.g[u]*st.g[u])
			da[3*H+u] = do * st.o[u] * (1 - st.o[u])
		}
		daV := mat.NewVecDense(4*H, da)
		floats.Add(gb, da)
		gwxM.RankOne(gwxM, 1, daV, mat.NewVecDense(n.in, st.x))
		gwhM.RankOne(gwhM, 1, daV, mat.NewVecDense(H, st.hPrev))
		var dhPrev mat.VecDense
		dhPrev.MulVec(n.whM.T(), daV)
		dh = mat.Col(nil, 0, &dhPrev)
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	peak := math.Inf(-1)
	for _, z := range logits {
		peak = math.Max(peak, z)
	}
	total := 0.0
	for i, z := range logits {
		out[i] = math.Exp(z - peak)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
