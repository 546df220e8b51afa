package uid

import (
	"errors"
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// ErrNodeOutOfRange is returned when an explicit node id does not fit the snowflake node bits.
var ErrNodeOutOfRange = errors.New("uid: snowflake node out of range")

// Snowflake generates ids with github.com/bwmarrin/snowflake.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator for the given node. A negative node derives
// one from the hostname so replicas do not collide by default.
func NewSnowflake(node int64) (*Snowflake, error) {
	maxNode := int64(-1 ^ (-1 << snowflake.NodeBits))
	if node < 0 {
		node = hostNode(maxNode)
	}
	if node > maxNode {
		return nil, ErrNodeOutOfRange
	}

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func hostNode(maxNode int64) int64 {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return int64(h.Sum32()) % (maxNode + 1)
}
