package needs

// Batch holds many agents' needs as rows of a column-major table so decay
// and bonuses can sweep one need at a time.
type Batch struct {
	Rows      [][NumNeeds]float64
	DecayMult []float64
	Bonus     [][NumNeeds]float64
}

// NewBatch allocates a batch of n rows with unit decay multipliers.
func NewBatch(n int) *Batch {
	b := &Batch{
		Rows:      make([][NumNeeds]float64, n),
		DecayMult: make([]float64, n),
		Bonus:     make([][NumNeeds]float64, n),
	}
	for i := range b.DecayMult {
		b.DecayMult[i] = 1
	}
	return b
}

// Len returns the number of rows.
func (b *Batch) Len() int { return len(b.Rows) }

// ApplyDecay decays every row, column by column.
func (b *Batch) ApplyDecay(rates [NumNeeds]float64, dt float64) {
	for c := 0; c < NumNeeds; c++ {
		rate := rates[c]
		for r := range b.Rows {
			b.Rows[r][c] = decayed(b.Rows[r][c], rate, b.DecayMult[r], dt)
		}
	}
}

// ApplyBonuses adds each row's summed zone bonus vector.
func (b *Batch) ApplyBonuses(zoneMult, dt float64) {
	for c := 0; c < NumNeeds; c++ {
		for r := range b.Rows {
			b.Rows[r][c] = boosted(b.Rows[r][c], b.Bonus[r][c], zoneMult, dt)
		}
	}
}

// ApplyCrossEffects runs the inter-need penalties on every row.
func (b *Batch) ApplyCrossEffects(dt float64) {
	for r := range b.Rows {
		crossEffects(b.Rows[r][:], dt)
	}
}
