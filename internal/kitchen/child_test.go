package kitchen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFIFOPathsNaming(t *testing.T) {
	order, shared := FIFOPaths("/tmp/plazza-run", 7)
	assert.Equal(t, "/tmp/plazza-run/reception-to-kitchen-7", order)
	assert.Equal(t, "/tmp/plazza-run/kitchen-to-reception", shared)

	_, sharedAgain := FIFOPaths("/tmp/plazza-run", 9)
	assert.Equal(t, shared, sharedAgain, "the shared kitchen-to-reception pipe is the same for every kitchen id")
}
