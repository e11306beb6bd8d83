package filtergraph

import (
	"errors"
	"fmt"
	"strings"
)

// Graph models the two-stage assembly filter: every video input has its
// presentation timestamps reset to zero, the resets are concatenated in
// input order, and the audio input joins in a final concat that yields one
// synchronized video+audio pair. A single-input graph has the same shape as
// a multi-input one; only the fan-in of the video concat changes.
type Graph struct {
	nodes       []node
	videoInputs int
}

type nodeKind int

const (
	nodeResetPTS nodeKind = iota
	nodeConcatVideo
	nodeConcatAV
)

type node struct {
	kind  nodeKind
	input int // video input index, nodeResetPTS only
}

// New builds the node list for n video inputs. The audio stream is assumed
// to be the encoder input following the last video input (index n).
func New(videoInputs int) (Graph, error) {
	if videoInputs < 1 {
		return Graph{}, errors.New("filtergraph: need at least one video input")
	}
	nodes := make([]node, 0, videoInputs+2)
	for i := 0; i < videoInputs; i++ {
		nodes = append(nodes, node{kind: nodeResetPTS, input: i})
	}
	nodes = append(nodes, node{kind: nodeConcatVideo}, node{kind: nodeConcatAV})
	return Graph{nodes: nodes, videoInputs: videoInputs}, nil
}

// AudioInputIndex returns the encoder input index the audio file must be
// supplied at for the serialized graph to reference it.
func (g Graph) AudioInputIndex() int { return g.videoInputs }

// VideoLabel and AudioLabel name the final output streams for -map.
func (g Graph) VideoLabel() string { return "[outv]" }
func (g Graph) AudioLabel() string { return "[outa]" }

// FilterComplex serializes the graph to the encoder's filter expression
// syntax, stages joined by ';'.
func (g Graph) FilterComplex() string {
	stages := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		switch n.kind {
		case nodeResetPTS:
			stages = append(stages, fmt.Sprintf("[%d:v]setpts=PTS-STARTPTS[v%d]", n.input, n.input))
		case nodeConcatVideo:
			var in strings.Builder
			for i := 0; i < g.videoInputs; i++ {
				fmt.Fprintf(&in, "[v%d]", i)
			}
			stages = append(stages, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vcat]", in.String(), g.videoInputs))
		case nodeConcatAV:
			stages = append(stages, fmt.Sprintf("[vcat][%d:a]concat=n=1:v=1:a=1%s%s", g.videoInputs, g.VideoLabel(), g.AudioLabel()))
		}
	}
	return strings.Join(stages, ";")
}
