package recolor

import (
	"image/color"
	"math"

	"nordify/palette"
)

// NeuQuant self-organising map, after Anthony Dekker, "Kohonen neural
// networks for optimal colour quantization" (1994). Training walks the
// samples with a fixed prime stride, so the result only depends on the
// input.

const (
	netSize = 256

	nCycles = 100

	initRadius      = netSize >> 3
	radiusBiasShift = 6
	radiusBias      = 1 << radiusBiasShift
	radiusDec       = 30

	initAlpha    = 1 << 10
	radBiasShift = 8
	radBias      = 1 << radBiasShift
	alphaRadBias = initAlpha << radBiasShift

	beta      = 1.0 / 1024.0
	betaGamma = 1.0
)

var primes = [...]int{499, 491, 487, 503}

type neuron struct {
	r, g, b float64
}

type neuQuant struct {
	network  [netSize]neuron
	freq     [netSize]float64
	bias     [netSize]float64
	radPower [initRadius]int
}

// trainPalette builds a netSize color palette from samples, visiting every
// sampleFac-th sample.
func trainPalette(samples []color.NRGBA, sampleFac int) palette.Dynamic {
	nq := &neuQuant{}
	for i := range nq.network {
		v := float64(i*256) / netSize
		nq.network[i] = neuron{v, v, v}
		nq.freq[i] = 1.0 / netSize
	}

	nq.learn(samples, sampleFac)

	pal := make(palette.Dynamic, netSize)
	for i, n := range nq.network {
		pal[i] = color.NRGBA{R: clampByte(n.r), G: clampByte(n.g), B: clampByte(n.b), A: 0xFF}
	}
	return pal
}

func (nq *neuQuant) learn(samples []color.NRGBA, sampleFac int) {
	total := len(samples)
	samplePixels := total / sampleFac
	if samplePixels == 0 {
		return
	}

	alphaDec := 30 + (sampleFac-1)/3
	delta := max(samplePixels/nCycles, 1)
	alpha := initAlpha
	biasRadius := initRadius * radiusBias
	rad := biasRadius >> radiusBiasShift
	if rad <= 1 {
		rad = 0
	}
	nq.updateRadPower(alpha, rad)

	step := primes[len(primes)-1]
	for _, p := range primes {
		if total%p != 0 {
			step = p
			break
		}
	}

	pos := 0
	for i := 1; i <= samplePixels; i++ {
		px := samples[pos]
		n := neuron{float64(px.R), float64(px.G), float64(px.B)}

		j := nq.contest(n)
		a := float64(alpha) / initAlpha
		nq.alterSingle(a, j, n)
		if rad > 0 {
			nq.alterNeighbours(rad, j, n)
		}

		pos = (pos + step) % total

		if i%delta == 0 {
			alpha -= alpha / alphaDec
			biasRadius -= biasRadius / radiusDec
			rad = biasRadius >> radiusBiasShift
			if rad <= 1 {
				rad = 0
			}
			nq.updateRadPower(alpha, rad)
		}
	}
}

func (nq *neuQuant) updateRadPower(alpha, rad int) {
	rad2 := rad * rad
	for i := range min(rad, initRadius) {
		nq.radPower[i] = alpha * (((rad2 - i*i) * radBias) / rad2)
	}
}

// contest returns the neuron closest to n once frequency bias is applied,
// moving the bias toward the unbiased winner.
func (nq *neuQuant) contest(n neuron) int {
	bestD, bestBiasD := math.MaxFloat64, math.MaxFloat64
	bestPos, bestBiasPos := 0, 0

	for i := range nq.network {
		c := &nq.network[i]
		dist := math.Abs(c.r-n.r) + math.Abs(c.g-n.g) + math.Abs(c.b-n.b)
		if dist < bestD {
			bestD, bestPos = dist, i
		}
		if biasDist := dist - nq.bias[i]; biasDist < bestBiasD {
			bestBiasD, bestBiasPos = biasDist, i
		}

		nq.freq[i] -= beta * nq.freq[i]
		nq.bias[i] += betaGamma * nq.freq[i]
	}

	nq.freq[bestPos] += beta
	nq.bias[bestPos] -= betaGamma
	return bestBiasPos
}

func (nq *neuQuant) alterSingle(a float64, i int, n neuron) {
	c := &nq.network[i]
	c.r -= a * (c.r - n.r)
	c.g -= a * (c.g - n.g)
	c.b -= a * (c.b - n.b)
}

func (nq *neuQuant) alterNeighbours(rad, i int, n neuron) {
	lo := max(i-rad, -1)
	hi := min(i+rad, netSize)

	j, k := i+1, i-1
	for q := 0; j < hi || k > lo; q++ {
		a := float64(nq.radPower[q]) / alphaRadBias
		if j < hi {
			nq.alterSingle(a, j, n)
			j++
		}
		if k > lo {
			nq.alterSingle(a, k, n)
			k--
		}
	}
}

func clampByte(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v))))
}
