package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndpoint_Addr(t *testing.T) {
	ep := Endpoint{IP: "10.0.0.5", Port: "6379"}
	require.Equal(t, "10.0.0.5:6379", ep.Addr())
}

func TestEndpoint_IsDown(t *testing.T) {
	tests := []struct {
		name  string
		flags string
		down  bool
	}{
		{name: "healthy replica", flags: "slave", down: false},
		{name: "subjectively down", flags: "slave,s_down,disconnected", down: true},
		{name: "objectively down", flags: "slave,o_down", down: true},
		{name: "plain down", flags: "down", down: true},
		{name: "no flags", flags: "", down: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := Endpoint{IP: "10.0.0.5", Port: "6379", Flags: tt.flags}
			require.Equal(t, tt.down, ep.IsDown())
		})
	}
}

func TestTopology_HasPrimary(t *testing.T) {
	require.False(t, Topology{}.HasPrimary())

	topo := Topology{Primary: &Endpoint{IP: "10.0.0.5", Port: "6379"}}
	require.True(t, topo.HasPrimary())
}

func TestConnectionError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ConnectionError{
		Role:     RoleReplica,
		Endpoint: Endpoint{IP: "10.0.0.6", Port: "6380"},
		Cause:    cause,
	}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "replica")
	require.Contains(t, err.Error(), "10.0.0.6:6380")
}

func TestPartialTransactionError(t *testing.T) {
	err := &PartialTransactionError{
		Key:     "session:42",
		Results: []any{"OK", int64(0)},
	}

	require.ErrorIs(t, err, ErrPartialTransaction)
	require.Contains(t, err.Error(), "session:42")

	var pte *PartialTransactionError
	require.ErrorAs(t, error(err), &pte)
	require.Len(t, pte.Results, 2)
}

func TestRole_String(t *testing.T) {
	require.Equal(t, "primary", RolePrimary.String())
	require.Equal(t, "replica", RoleReplica.String())
	require.Equal(t, "pubsub", RolePubSub.String())
	require.Equal(t, "discovery", RoleDiscovery.String())
}
