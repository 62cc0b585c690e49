package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/giantninja/ninja-redis/discovery"
)

func TestParseReply_FlatPairs(t *testing.T) {
	raw := []any{
		"name", "mymaster",
		"ip", "10.0.0.5",
		"port", "6379",
		"num-slaves", int64(2),
	}

	reply := discovery.ParseReply(raw)

	require.Equal(t, "mymaster", reply.Str("name"))
	require.Equal(t, "10.0.0.5", reply.Str("ip"))
	require.Equal(t, "6379", reply.Str("port"))
	require.Equal(t, "2", reply.Str("num-slaves"))
}

func TestParseReply_NestedSequenceAtPosition(t *testing.T) {
	raw := []any{
		"name", "mymaster",
		[]any{"ip", "10.0.0.6", "port", "6380"},
	}

	reply := discovery.ParseReply(raw)

	require.Equal(t, "mymaster", reply.Str("name"))

	nested, ok := reply["2"].(discovery.Reply)
	require.True(t, ok, "nested sequence should be stored under its position index")
	require.Equal(t, "10.0.0.6", nested.Str("ip"))
	require.Equal(t, "6380", nested.Str("port"))
}

func TestParseReply_NestedValue(t *testing.T) {
	raw := []any{
		"config", []any{"quorum", "2", "parallel-syncs", "1"},
	}

	reply := discovery.ParseReply(raw)

	nested, ok := reply["config"].(discovery.Reply)
	require.True(t, ok)
	require.Equal(t, "2", nested.Str("quorum"))
	require.Equal(t, "1", nested.Str("parallel-syncs"))
}

func TestParseReply_DanglingKey(t *testing.T) {
	reply := discovery.ParseReply([]any{"name", "mymaster", "orphan"})

	require.Equal(t, "mymaster", reply.Str("name"))
	require.Contains(t, reply, "orphan")
	require.Nil(t, reply["orphan"])
}

func TestParseReply_Empty(t *testing.T) {
	require.Empty(t, discovery.ParseReply(nil))
	require.Empty(t, discovery.ParseReply([]any{}))
}

func TestReply_Str(t *testing.T) {
	reply := discovery.ParseReply([]any{
		"ip", "10.0.0.5",
		"config", []any{"quorum", "2"},
	})

	require.Equal(t, "10.0.0.5", reply.Str("ip"))
	require.Empty(t, reply.Str("missing"))
	require.Empty(t, reply.Str("config"), "nested records are not strings")
}

func TestParseReplyList(t *testing.T) {
	raw := []any{
		[]any{"ip", "10.0.0.6", "port", "6380", "flags", "slave"},
		[]any{"ip", "10.0.0.7", "port", "6380", "flags", "slave,s_down"},
		"stray scalar",
	}

	records := discovery.ParseReplyList(raw)

	require.Len(t, records, 2, "top-level scalars are skipped")
	require.Equal(t, "10.0.0.6", records[0].Str("ip"))
	require.Equal(t, "slave,s_down", records[1].Str("flags"))
}

func TestParseReplyList_ByteAndIntScalars(t *testing.T) {
	raw := []any{
		[]any{[]byte("ip"), []byte("10.0.0.6"), "port", int64(6380)},
	}

	records := discovery.ParseReplyList(raw)

	require.Len(t, records, 1)
	require.Equal(t, "10.0.0.6", records[0].Str("ip"))
	require.Equal(t, "6380", records[0].Str("port"))
}
