package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporter_UpdateIsMonotonic(t *testing.T) {
	r := NewReporter(1000, true, nil)
	var last int64
	for i := 0; i < 50; i++ {
		r.Update(20, "Empresas0.zip", 0, 4)
		current := r.Total()
		assert.GreaterOrEqual(t, current, last)
		last = current
	}
	assert.Equal(t, int64(1000), r.Total())
}

func TestReporter_TotalSumsAcrossCalls(t *testing.T) {
	r := NewReporter(300, true, nil)
	r.Update(100, "a.zip", 0, 4)
	r.Update(150, "b.zip", 0, 4)
	r.Update(50, "c.zip", 0, 4)
	assert.Equal(t, int64(300), r.Total())
}
