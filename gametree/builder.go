package gametree

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

const (
	RootID = "root"

	MinUtility = -10
	MaxUtility = 10

	MinChildren = 2
	MaxChildren = 3
)

// Source is the random source used to shape a tree and pick leaf utilities.
// *frand.RNG satisfies it.
type Source interface {
	Intn(n int) int
}

type globalSource struct{}

func (globalSource) Intn(n int) int {
	return frand.Intn(n)
}

// DefaultSource is non-deterministic; every call to Build with it produces a
// new tree.
func DefaultSource() Source {
	return globalSource{}
}

// NewSeededSource returns a deterministic generator. Two sources created with
// the same seed produce the same sequence.
func NewSeededSource(seed int64) Source {
	key := make([]byte, 32)
	binary.LittleEndian.PutUint64(key, uint64(seed))
	return frand.NewCustom(key, 1024, 12)
}

// Build generates a tree of exactly the given depth. Roles alternate
// strictly, starting with rootRole. A nil src means DefaultSource.
func Build(depth int, rootRole Role, src Source) (*Node, error) {
	if depth < 0 {
		return nil, fmt.Errorf("%w: negative depth %d", ErrInvalidArgument, depth)
	}
	if rootRole != Max && rootRole != Min {
		return nil, fmt.Errorf("%w: unknown role %d", ErrInvalidArgument, rootRole)
	}
	if src == nil {
		src = DefaultSource()
	}
	root := build(depth, RootID, rootRole, src)
	log.Debug().Int("depth", depth).Str("root-role", rootRole.String()).
		Int("nodes", root.Size()).Msg("tree-built")
	return root, nil
}

func build(depth int, id string, role Role, src Source) *Node {
	if depth == 0 {
		return NewLeaf(id, role, MinUtility+src.Intn(MaxUtility-MinUtility+1))
	}
	numChildren := MinChildren + src.Intn(MaxChildren-MinChildren+1)
	children := make([]*Node, numChildren)
	for i := range children {
		children[i] = build(depth-1, childID(id, i), role.Opposite(), src)
	}
	return NewInternal(id, role, children...)
}
