package uid

import (
	"crypto/sha256"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered unique int64 IDs.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from the
// machine identity, so two instances on different hosts do not collide.
func NewSnowflake() (*Snowflake, error) {
	src := "zkotp"
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			src = s
		}
	} else if h, err := os.Hostname(); err == nil && strings.TrimSpace(h) != "" {
		src = strings.TrimSpace(h)
	}

	sum := sha256.Sum256([]byte(src))
	nodeID := int64(sum[0])<<2 | int64(sum[1])>>6 // 10-bit node space

	node, err := snowflake.NewNode(nodeID % 1024)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique int64 ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
