package pipeline

import (
	"fmt"
	"strings"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/registry"
)

// edge is a parked reference to a not-yet-built node: the source node index
// and whether it is the then edge (false means else).
type edge struct {
	node   int
	isThen bool
}

// builder holds the mutable state threaded through chain compilation.
type builder struct {
	registry      *registry.Registry
	nodes         []node
	seen          map[string]bool
	danglingNamed map[string][]edge
	danglingNone  []edge
}

// Build compiles an ordered collection of chains into a Workflow
// (SPEC_FULL.md §4.6). chains must be supplied in configuration source
// order: chain-to-chain fall-through and "next chain" absorption of
// unset else-edges both depend on that order.
func Build(chains []Chain, reg *registry.Registry) (*Workflow, error) {
	b := &builder{
		registry:      reg,
		seen:          make(map[string]bool),
		danglingNamed: make(map[string][]edge),
	}
	for _, chain := range chains {
		if err := b.buildChain(chain); err != nil {
			return nil, err
		}
	}
	if len(b.nodes) == 0 {
		return nil, domain.NewError(domain.ErrConfigValue, "a configuration must have at least one module")
	}
	if len(b.danglingNamed) > 0 {
		return nil, b.incompleteConfigError()
	}
	return &Workflow{nodes: b.nodes}, nil
}

func (b *builder) incompleteConfigError() error {
	var sb strings.Builder
	sb.WriteString("incomplete configuration:")
	for chainName, edges := range b.danglingNamed {
		sb.WriteString(fmt.Sprintf("\n\treference to unknown chain %q found at:", chainName))
		for _, e := range edges {
			dir := "else"
			if e.isThen {
				dir = "then"
			}
			sb.WriteString(fmt.Sprintf("\n\t  %s:%s", b.nodes[e.node].name, dir))
		}
	}
	return domain.NewError(domain.ErrConfigValue, sb.String())
}

func (b *builder) resolveDangling(edges []edge, target int) {
	for _, e := range edges {
		if e.isThen {
			b.nodes[e.node].thenDest = target
		} else {
			b.nodes[e.node].elseDest = target
		}
	}
}

func (b *builder) wantChain(nodeIdx int, isThen bool, chainName string) {
	b.danglingNamed[chainName] = append(b.danglingNamed[chainName], edge{nodeIdx, isThen})
}

func (b *builder) wantNextChain(nodeIdx int, isThen bool) {
	b.danglingNone = append(b.danglingNone, edge{nodeIdx, isThen})
}

// buildChain appends chain's steps as nodes, resolving dangling references
// that target it and parking any it introduces itself.
func (b *builder) buildChain(chain Chain) error {
	// Marking the chain as seen before processing its own steps (rather
	// than never, as in the reference implementation) is what makes
	// SPEC_FULL.md §8's A-references-B-references-A cycle actually
	// detectable: by the time a later chain's step references an earlier
	// one, that earlier chain is already in seen.
	b.seen[chain.Name] = true

	if named, ok := b.danglingNamed[chain.Name]; ok {
		b.resolveDangling(named, len(b.nodes))
		delete(b.danglingNamed, chain.Name)
	}
	if len(b.danglingNone) > 0 {
		b.resolveDangling(b.danglingNone, len(b.nodes))
		b.danglingNone = nil
	}

	for index, step := range chain.Steps {
		nextIdx := len(b.nodes)
		if index > 0 {
			b.nodes[nextIdx-1].thenDest = nextIdx
		}

		name := fmt.Sprintf("%s[%d]:%s", chain.Name, index, step.ModuleName())
		mod, err := b.construct(step, name)
		if err != nil {
			return err
		}

		thenDest := terminal
		thenWasUsed := false
		if step.Then != nil {
			if b.seen[*step.Then] {
				return domain.NewError(domain.ErrConfigValue,
					fmt.Sprintf("configuration loop at %s:then", name))
			}
			thenWasUsed = true
			b.wantChain(nextIdx, true, *step.Then)
		}

		elseDest := terminal
		if step.Else != nil {
			if b.seen[*step.Else] {
				return domain.NewError(domain.ErrConfigValue,
					fmt.Sprintf("configuration loop at %s:else", name))
			}
			b.wantChain(nextIdx, false, *step.Else)
		} else {
			b.wantNextChain(nextIdx, false)
		}

		b.nodes = append(b.nodes, node{
			name:     name,
			module:   mod,
			thenDest: thenDest,
			elseDest: elseDest,
		})

		if thenWasUsed {
			break
		}
	}
	return nil
}

func (b *builder) construct(step Step, name string) (registry.Module, error) {
	if step.Filter != "" {
		f, err := b.registry.NewFilter(step.Filter, step.Args)
		if err != nil {
			return registry.Module{}, domain.WrapError(domain.ErrConfig, "build "+name, err)
		}
		return registry.Module{Filter: f}, nil
	}
	a, err := b.registry.NewAction(step.Action, step.Args)
	if err != nil {
		return registry.Module{}, domain.WrapError(domain.ErrConfig, "build "+name, err)
	}
	return registry.Module{Action: a}, nil
}
