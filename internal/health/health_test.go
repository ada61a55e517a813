package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAll_Empty(t *testing.T) {
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	assert.True(t, healthy)
	assert.Empty(t, statuses)
}

func TestCheckAll_AllHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("stores", func(ctx context.Context) Status {
		return Status{Name: "stores", Healthy: true}
	})
	r.Register("payments", func(ctx context.Context) Status {
		return Status{Name: "payments", Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	assert.True(t, healthy)
	assert.Len(t, statuses, 2)
}

func TestCheckAll_OneUnhealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("stores", func(ctx context.Context) Status {
		return Status{Name: "stores", Healthy: true}
	})
	r.Register("database", func(ctx context.Context) Status {
		return Status{Name: "database", Healthy: false, Detail: "connection refused"}
	})

	healthy, statuses := r.CheckAll(context.Background())
	assert.False(t, healthy)
	assert.Len(t, statuses, 2)
	assert.Equal(t, "connection refused", statuses[1].Detail)
}
