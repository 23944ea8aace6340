package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(addrs ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		m[a] = struct{}{}
	}
	return m
}

func TestClusterSizeConstraint(t *testing.T) {
	c := NewClusterSizeConstraint(2)
	assert.False(t, c.LookupEnded(nodes()))
	assert.False(t, c.LookupEnded(nodes("10.0.0.1:54321")))
	assert.True(t, c.LookupEnded(nodes("10.0.0.1:54321", "10.0.0.2:54321")))
	assert.True(t, c.LookupEnded(nodes("a", "b", "c")))
}

func TestTimeoutConstraint(t *testing.T) {
	c := NewTimeoutConstraint(time.Hour)
	assert.False(t, c.LookupEnded(nodes("a")))

	expired := NewTimeoutConstraint(time.Nanosecond)
	time.Sleep(time.Millisecond)
	assert.True(t, expired.LookupEnded(nodes()))
}

func TestConstraintBuilder(t *testing.T) {
	t.Run("unconfigured builder falls back to default timeout", func(t *testing.T) {
		constraints := NewConstraintBuilder(nil).Build()
		require.Len(t, constraints, 1)
		_, ok := constraints[0].(*TimeoutConstraint)
		assert.True(t, ok)
	})

	t.Run("both settings yield both constraints", func(t *testing.T) {
		constraints := NewConstraintBuilder(nil).
			WithTimeout(time.Minute).
			WithClusterSize(3).
			Build()
		require.Len(t, constraints, 2)
	})

	t.Run("cluster size alone omits the default timeout", func(t *testing.T) {
		constraints := NewConstraintBuilder(nil).WithClusterSize(3).Build()
		require.Len(t, constraints, 1)
		_, ok := constraints[0].(*ClusterSizeConstraint)
		assert.True(t, ok)
	})
}
